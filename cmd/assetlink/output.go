package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/missionrelease/assetlink/internal/debug"
	"github.com/missionrelease/assetlink/internal/linker"
	"github.com/missionrelease/assetlink/internal/ui"
)

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		exit(1)
	}
}

// fatal prints an error to stderr and exits 1.
func fatal(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ui.FailLine("Error: "+fmt.Sprintf(format, args...)))
	exit(1)
}

// exit flushes telemetry before leaving; os.Exit skips PersistentPostRun.
func exit(code int) {
	shutdown()
	os.Exit(code)
}

// progress prints an engine message. JSON mode keeps stdout clean, so
// messages only appear on stderr with --verbose.
func progress(msg string) {
	if jsonOutput {
		debug.Logf("%s\n", msg)
		return
	}
	debug.PrintNormal("%s\n", ui.StatusLine(msg))
}

func warning(msg string) {
	debug.Warnf("%s\n", ui.WarnLine("Warning: "+msg))
}

// formatSummary renders the closing line of a run.
func formatSummary(s linker.Stats, dryRun bool) string {
	verb := "linked"
	if dryRun {
		verb = "to link"
	}
	parts := []string{fmt.Sprintf("%d %s", s.Linked, verb)}
	if s.Duplicates > 0 {
		parts = append(parts, fmt.Sprintf("%d already linked", s.Duplicates))
	}
	if s.Missing > 0 {
		parts = append(parts, fmt.Sprintf("%d not found", s.Missing))
	}
	if s.Empty > 0 {
		parts = append(parts, fmt.Sprintf("%d without assets", s.Empty))
	}
	if s.Filtered > 0 {
		parts = append(parts, fmt.Sprintf("%d filtered", s.Filtered))
	}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Errors))
	}
	return fmt.Sprintf("Scanned %d issue(s): %s", s.Scanned, strings.Join(parts, ", "))
}

// report prints the result of a run and exits non-zero when it failed.
func report(result *linker.RunResult, err error) {
	if jsonOutput {
		outputJSON(result)
		if err != nil || !result.Success {
			exit(1)
		}
		return
	}

	if err != nil {
		if result != nil {
			debug.PrintNormal("\n%s\n", ui.RenderMuted(formatSummary(result.Stats, result.DryRun)))
		}
		fatal("%v", err)
	}

	summary := formatSummary(result.Stats, result.DryRun)
	switch {
	case !result.Success:
		fmt.Println()
		fmt.Println(ui.FailLine(summary))
		exit(1)
	case result.DryRun:
		fmt.Println()
		fmt.Println(ui.RenderAccent(ui.IconInfo + " " + summary + " (dry run, no changes made)"))
	default:
		fmt.Println()
		fmt.Println(ui.RenderPass(ui.IconPass + " " + summary))
	}
}
