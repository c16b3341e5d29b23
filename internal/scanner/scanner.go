// Package scanner walks every issue matching a filter by following the
// search/jql cursor pagination.
package scanner

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/missionrelease/assetlink/internal/debug"
	"github.com/missionrelease/assetlink/internal/jira"
)

// Searcher fetches one page of a JQL search.
type Searcher interface {
	SearchPage(ctx context.Context, jql, token string, pageSize int) (*jira.SearchPage, error)
}

// Filter selects the issues to scan. Empty fields do not constrain.
type Filter struct {
	Project       string
	IssueTypes    []string
	ExcludeStatus string
	UpdatedSince  *time.Time
}

// JQL renders the filter as a JQL query ordered by key.
func (f Filter) JQL() string {
	var clauses []string
	if f.Project != "" {
		clauses = append(clauses, "project = "+jira.QuoteJQL(f.Project))
	}
	if len(f.IssueTypes) > 0 {
		quoted := make([]string, len(f.IssueTypes))
		for i, t := range f.IssueTypes {
			quoted[i] = jira.QuoteJQL(t)
		}
		clauses = append(clauses, "issuetype in ("+strings.Join(quoted, ", ")+")")
	}
	if f.ExcludeStatus != "" {
		clauses = append(clauses, "status != "+jira.QuoteJQL(f.ExcludeStatus))
	}
	if f.UpdatedSince != nil {
		clauses = append(clauses, "updated >= "+jira.QuoteJQL(jira.FormatJQLTime(*f.UpdatedSince)))
	}

	order := "ORDER BY key ASC"
	if len(clauses) == 0 {
		return order
	}
	return strings.Join(clauses, " AND ") + " " + order
}

// Matches re-checks an issue against the project, issue type and status
// constraints. Comparisons ignore case. The updated bound is left to the
// server.
func (f Filter) Matches(issue *jira.Issue) bool {
	if f.Project != "" && !strings.EqualFold(issue.ProjectKey(), f.Project) {
		return false
	}
	if len(f.IssueTypes) > 0 {
		found := false
		for _, t := range f.IssueTypes {
			if strings.EqualFold(issue.IssueTypeName(), t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ExcludeStatus != "" && strings.EqualFold(issue.StatusName(), f.ExcludeStatus) {
		return false
	}
	return true
}

// Stats counts the work of the latest scan.
type Stats struct {
	Pages    int `json:"pages"`
	Seen     int `json:"seen"`
	Filtered int `json:"filtered"`
}

// Scanner iterates the issues matching a Filter.
type Scanner struct {
	searcher Searcher
	filter   Filter
	pageSize int
	stats    Stats

	// OnFiltered is called for each issue dropped by the local re-check.
	OnFiltered func(issue *jira.Issue)
}

// New creates a scanner. pageSize is clamped to 1..jira.MaxPageSize.
func New(searcher Searcher, filter Filter, pageSize int) *Scanner {
	if pageSize <= 0 || pageSize > jira.MaxPageSize {
		pageSize = jira.MaxPageSize
	}
	return &Scanner{searcher: searcher, filter: filter, pageSize: pageSize}
}

// Stats returns the counters of the latest call to All.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// All yields every matching issue in page order, then in-page order. Each
// call starts again from the first page. A search failure is yielded once as
// the error and ends the sequence.
func (s *Scanner) All(ctx context.Context) iter.Seq2[jira.Issue, error] {
	return func(yield func(jira.Issue, error) bool) {
		s.stats = Stats{}
		jql := s.filter.JQL()
		token := ""

		for {
			if err := ctx.Err(); err != nil {
				yield(jira.Issue{}, err)
				return
			}

			page, err := s.searcher.SearchPage(ctx, jql, token, s.pageSize)
			if err != nil {
				yield(jira.Issue{}, err)
				return
			}
			s.stats.Pages++
			debug.Logf("scanner: page %d with %d issues\n", s.stats.Pages, len(page.Issues))

			if len(page.Issues) == 0 {
				return
			}

			for i := range page.Issues {
				issue := page.Issues[i]
				s.stats.Seen++
				if !s.filter.Matches(&issue) {
					s.stats.Filtered++
					if s.OnFiltered != nil {
						s.OnFiltered(&issue)
					}
					continue
				}
				if !yield(issue, nil) {
					return
				}
			}

			if page.NextPageToken == "" {
				return
			}
			if page.NextPageToken == token {
				yield(jira.Issue{}, fmt.Errorf("search pagination stalled at token %q", token))
				return
			}
			token = page.NextPageToken
		}
	}
}
