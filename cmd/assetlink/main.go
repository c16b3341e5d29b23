package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/missionrelease/assetlink/internal/debug"
	"github.com/missionrelease/assetlink/internal/telemetry"
	"github.com/missionrelease/assetlink/internal/ui"
)

var (
	configPath  string
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	rootCtx    = context.Background()
	rootCancel context.CancelFunc
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./assetlink.yaml, then ~/.config/assetlink/assetlink.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
}

var rootCmd = &cobra.Command{
	Use:   "assetlink",
	Short: "Link Assets catalog objects to Jira issues",
	Long: `assetlink reads the asset tree written in Jira issue descriptions and
attaches a remote link to each matching object in the Jira Service Management
Assets catalog. Runs are idempotent: links already on an issue are never
created again.

An asset tree is a two-level bullet list, categories first:

  - Displays
    - 11100411
  - PCM Devices
    - 217646000000000`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupSignalContext()
		applyVerbosityFlags()
		ui.ConfigureColor()
		if err := telemetry.Init(rootCtx, "assetlink", Version); err != nil {
			debug.Logf("telemetry: init failed: %v\n", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdown()
	},
}

// setupSignalContext creates a context that cancels on SIGINT/SIGTERM so a
// run stops between requests.
func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags propagates --verbose and --quiet to the debug package.
func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

// shutdown flushes telemetry and releases the signal context.
func shutdown() {
	telemetry.Shutdown(context.Background())
	if rootCancel != nil {
		rootCancel()
		rootCancel = nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
