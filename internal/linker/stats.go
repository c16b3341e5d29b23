package linker

import "github.com/missionrelease/assetlink/internal/types"

// Stats accumulates counters for a run.
type Stats struct {
	Scanned    int `json:"scanned"`    // Issues pulled from the scanner
	Filtered   int `json:"filtered"`   // Issues dropped by the local filter re-check
	Parsed     int `json:"parsed"`     // Issues whose description yielded selections
	Linked     int `json:"linked"`     // Remote links created (or planned, in dry-run)
	Duplicates int `json:"duplicates"` // Links skipped because they already exist
	Missing    int `json:"missing"`    // Selections with no matching catalog object
	Empty      int `json:"empty"`      // Issues skipped with no selections
	Errors     int `json:"errors"`     // Issues that failed
}

// IssueResult reports what happened to one issue.
type IssueResult struct {
	Key        string             `json:"key"`
	URL        string             `json:"url,omitempty"`
	Selections []types.Selection  `json:"selections,omitempty"`
	Created    []types.RemoteLink `json:"created,omitempty"`
	Missing    []types.Selection  `json:"missing,omitempty"`
	Duplicates int                `json:"duplicates,omitempty"`
	Described  bool               `json:"described,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// RunResult is the outcome of a run.
type RunResult struct {
	Success bool          `json:"success"`
	DryRun  bool          `json:"dry_run,omitempty"`
	Stats   Stats         `json:"stats"`
	Issues  []IssueResult `json:"issues,omitempty"`
	Error   string        `json:"error,omitempty"`
}
