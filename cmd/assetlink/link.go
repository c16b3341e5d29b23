package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/missionrelease/assetlink/internal/jira"
	"github.com/missionrelease/assetlink/internal/linker"
	"github.com/missionrelease/assetlink/internal/types"
)

var linkCmd = &cobra.Command{
	Use:   "link KEY --selections FILE",
	Short: "Link an explicit list of assets and record them in the description",
	Long: `Link the assets listed in a TOML file to one issue, then append an asset
tree of the linked pairs to the issue description. Pairs the description
already lists are not appended twice.

Selections file:

  heading = "Assets"   # optional

  [[selection]]
  category = "CSS Loggers"
  name = "000003"

  [[selection]]
  category = "CSS Loggers"
  name = "000005"`,
	Args: cobra.ExactArgs(1),
	Run:  runLink,
}

func init() {
	linkCmd.Flags().StringP("selections", "s", "", "TOML file listing the assets to link (required)")
	linkCmd.Flags().Bool("no-description", false, "Do not append the asset tree to the description")
	linkCmd.Flags().Bool("dry-run", false, "Report planned changes without writing")
	_ = linkCmd.MarkFlagRequired("selections")

	rootCmd.AddCommand(linkCmd)
}

// selectionFile is the TOML layout read by link.
type selectionFile struct {
	Heading    string            `toml:"heading"`
	Selections []types.Selection `toml:"selection"`
}

// loadSelections reads a selections file, rejecting unknown keys.
func loadSelections(path string) (*selectionFile, error) {
	var sf selectionFile
	md, err := toml.DecodeFile(path, &sf)
	if err != nil {
		return nil, fmt.Errorf("read selections: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read selections: unknown key %q in %s", undecoded[0].String(), path)
	}
	if len(sf.Selections) == 0 {
		return nil, fmt.Errorf("read selections: %s lists no [[selection]] entries", path)
	}
	return &sf, nil
}

func runLink(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("selections")
	noDescription, _ := cmd.Flags().GetBool("no-description")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	key := jira.ExtractKey(args[0])
	if key == "" {
		fatal("cannot find an issue key in %q", args[0])
	}
	sf, err := loadSelections(path)
	if err != nil {
		fatal("%v", err)
	}

	cfg := loadConfig()
	jc, ac := newClients(cfg)
	engine := newEngine(jc, ac, dryRun)

	result, err := engine.LinkSelections(rootCtx, key, sf.Selections, linker.LinkOptions{
		Heading:         sf.Heading,
		SkipDescription: noDescription,
	})
	report(result, err)
}
