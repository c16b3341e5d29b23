package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/missionrelease/assetlink/internal/config"
	"github.com/missionrelease/assetlink/internal/jira"
	"github.com/missionrelease/assetlink/internal/linker"
	"github.com/missionrelease/assetlink/internal/scanner"
	"github.com/missionrelease/assetlink/internal/timeparsing"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Link assets on every issue matching the filter",
	Long: `Scan every issue matching the configured filter and attach a remote link
for each asset listed in its description.

The filter comes from the filter.* config keys; flags override them.

Examples:
  assetlink sync --dry-run
  assetlink sync --project PREC --issue-type "Mission Release" --exclude-status Done
  assetlink sync --since 7d --pace 500ms
  assetlink sync --continue-on-error --json`,
	Run: runSync,
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "Report planned links without creating them")
	syncCmd.Flags().Bool("continue-on-error", false, "Record a failing issue and keep going")
	syncCmd.Flags().Duration("pace", 0, "Minimum delay between issues (overrides sync.pace)")
	syncCmd.Flags().String("since", "", "Only issues updated since (e.g. 7d, 2024-03-01, \"last monday\")")
	syncCmd.Flags().String("project", "", "Project key (overrides filter.project)")
	syncCmd.Flags().StringSlice("issue-type", nil, "Issue type to include, repeatable (overrides filter.issue_types)")
	syncCmd.Flags().String("exclude-status", "", "Status to skip (overrides filter.exclude_status)")
	syncCmd.Flags().Int("page-size", 0, "Issues per search page, at most 100 (overrides filter.page_size)")

	rootCmd.AddCommand(syncCmd)
}

// applySyncFlags merges explicitly set flags over cfg.
func applySyncFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("project") {
		cfg.Filter.Project, _ = flags.GetString("project")
	}
	if flags.Changed("issue-type") {
		cfg.Filter.IssueTypes, _ = flags.GetStringSlice("issue-type")
	}
	if flags.Changed("exclude-status") {
		cfg.Filter.ExcludeStatus, _ = flags.GetString("exclude-status")
	}
	if flags.Changed("page-size") {
		cfg.Filter.PageSize, _ = flags.GetInt("page-size")
	}
	if flags.Changed("pace") {
		cfg.Sync.Pace, _ = flags.GetDuration("pace")
	}
}

// buildFilter turns the filter config and a --since expression into a
// scanner filter.
func buildFilter(f config.FilterConfig, since string, now time.Time) (scanner.Filter, error) {
	filter := scanner.Filter{
		Project:       f.Project,
		IssueTypes:    f.IssueTypes,
		ExcludeStatus: f.ExcludeStatus,
	}
	if since != "" {
		t, err := timeparsing.ParseSince(since, now)
		if err != nil {
			return scanner.Filter{}, fmt.Errorf("--since: %w", err)
		}
		filter.UpdatedSince = &t
	}
	return filter, nil
}

func runSync(cmd *cobra.Command, args []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	continueOnError, _ := cmd.Flags().GetBool("continue-on-error")
	since, _ := cmd.Flags().GetString("since")

	cfg := loadConfig()
	applySyncFlags(cmd, cfg)
	if cfg.Filter.PageSize <= 0 || cfg.Filter.PageSize > jira.MaxPageSize {
		fatal("--page-size must be between 1 and %d", jira.MaxPageSize)
	}

	filter, err := buildFilter(cfg.Filter, since, time.Now())
	if err != nil {
		fatal("%v", err)
	}
	if filter.Project == "" {
		warning("no project filter set; scanning every visible issue")
	}

	jc, ac := newClients(cfg)
	engine := newEngine(jc, ac, dryRun)
	engine.ContinueOnError = continueOnError
	engine.Pace = linker.PaceLimiter(cfg.Sync.Pace)

	scan := scanner.New(jc, filter, cfg.Filter.PageSize)
	scan.OnFiltered = func(issue *jira.Issue) {
		progress(fmt.Sprintf("%s: skip: outside filter (%s, %s)", issue.Key, issue.IssueTypeName(), issue.StatusName()))
	}

	if !jsonOutput {
		progress("searching: " + filter.JQL())
	}
	result, err := engine.Run(rootCtx, scan.All(rootCtx))
	if result != nil {
		result.Stats.Filtered = scan.Stats().Filtered
	}
	report(result, err)
}
