package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/missionrelease/assetlink/internal/atlassian"
	"github.com/missionrelease/assetlink/internal/config"
	"github.com/missionrelease/assetlink/internal/jira"
)

var issueCmd = &cobra.Command{
	Use:   "issue KEY",
	Short: "Link assets on a single issue",
	Long: `Run the linker for one issue, given by key or browse URL, without a search.
Issues outside the configured filter are still processed, with a warning.

Examples:
  assetlink issue PREC-123
  assetlink issue https://company.atlassian.net/browse/PREC-123 --dry-run`,
	Args: cobra.ExactArgs(1),
	Run:  runIssue,
}

func init() {
	issueCmd.Flags().Bool("dry-run", false, "Report planned links without creating them")
	rootCmd.AddCommand(issueCmd)
}

func runIssue(cmd *cobra.Command, args []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	key := jira.ExtractKey(args[0])
	if key == "" {
		fatal("cannot find an issue key in %q", args[0])
	}

	cfg := loadConfig()
	jc, ac := newClients(cfg)

	issue, err := jc.GetIssue(rootCtx, key)
	if err != nil {
		if atlassian.IsNotFound(err) {
			fatal("issue %s not found", key)
		}
		fatal("%v", err)
	}
	if msg := filterMismatch(issue, cfg.Filter); msg != "" {
		warning(msg)
	}

	engine := newEngine(jc, ac, dryRun)

	result, err := engine.ProcessIssue(rootCtx, key)
	report(result, err)
}

// filterMismatch describes how issue falls outside the configured filter, or
// returns "" when it matches.
func filterMismatch(issue *jira.Issue, f config.FilterConfig) string {
	filter, err := buildFilter(f, "", time.Now())
	if err != nil || filter.Matches(issue) {
		return ""
	}
	return issue.Key + ": outside the configured filter (" + filter.JQL() + ")"
}
