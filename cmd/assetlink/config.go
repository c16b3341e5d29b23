package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/missionrelease/assetlink/internal/config"
	"github.com/missionrelease/assetlink/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage assetlink configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file template",
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")
		if err := config.WriteTemplateFile(path, force); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s Wrote %s\n", ui.RenderPass(ui.IconPass), path)
		fmt.Println("Fill in jira.site, jira.email, jira.api_token and assets.workspace_id.")
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (token redacted)",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath)
		if err != nil {
			fatal("%v", err)
		}
		red := cfg.Redacted()

		if jsonOutput {
			outputJSON(red)
		} else {
			data, err := config.Marshal(red)
			if err != nil {
				fatal("%v", err)
			}
			if cfg.File != "" {
				fmt.Println(ui.RenderMuted("# " + cfg.File))
			}
			_, _ = os.Stdout.Write(data)
		}

		if err := cfg.Validate(); err != nil {
			warning(err.Error())
		}
	},
}

func init() {
	configInitCmd.Flags().String("path", config.FileName, "Where to write the template")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
