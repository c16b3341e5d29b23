package scanner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionrelease/assetlink/internal/jira"
)

// pagedSearcher serves fixed pages, linking them with "p<N>" tokens.
type pagedSearcher struct {
	pages  [][]jira.Issue
	calls  []string
	failAt int
}

func (p *pagedSearcher) SearchPage(_ context.Context, jql, token string, _ int) (*jira.SearchPage, error) {
	p.calls = append(p.calls, token)
	idx := 0
	if token != "" {
		_, _ = fmt.Sscanf(token, "p%d", &idx)
	}
	if p.failAt > 0 && idx == p.failAt {
		return nil, errors.New("search exploded")
	}
	if idx >= len(p.pages) {
		return &jira.SearchPage{}, nil
	}
	page := &jira.SearchPage{Issues: p.pages[idx]}
	if idx+1 < len(p.pages) {
		page.NextPageToken = fmt.Sprintf("p%d", idx+1)
	}
	return page, nil
}

func issue(key, project, issueType, status string) jira.Issue {
	return jira.Issue{Key: key, Fields: jira.IssueFields{
		Project:   &jira.ProjectField{Key: project},
		IssueType: &jira.IssueTypeField{Name: issueType},
		Status:    &jira.StatusField{Name: status},
	}}
}

func keys(t *testing.T, s *Scanner) []string {
	t.Helper()
	var out []string
	for is, err := range s.All(context.Background()) {
		require.NoError(t, err)
		out = append(out, is.Key)
	}
	return out
}

func TestFilterJQL(t *testing.T) {
	since := time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{
			name: "full",
			filter: Filter{
				Project:       "PREC",
				IssueTypes:    []string{"Mission Release", "Task"},
				ExcludeStatus: "Done",
			},
			want: `project = "PREC" AND issuetype in ("Mission Release", "Task") AND status != "Done" ORDER BY key ASC`,
		},
		{
			name:   "since",
			filter: Filter{Project: "PREC", UpdatedSince: &since},
			want:   `project = "PREC" AND updated >= "2024-03-05 09:07" ORDER BY key ASC`,
		},
		{
			name:   "empty",
			filter: Filter{},
			want:   "ORDER BY key ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.JQL())
		})
	}
}

func TestFilterMatches(t *testing.T) {
	f := Filter{Project: "PREC", IssueTypes: []string{"Mission Release"}, ExcludeStatus: "Done"}

	a := issue("PREC-1", "prec", "mission release", "Open")
	assert.True(t, f.Matches(&a))
	b := issue("PREC-2", "PREC", "Mission Release", "DONE")
	assert.False(t, f.Matches(&b))
	c := issue("OTHER-1", "OTHER", "Mission Release", "Open")
	assert.False(t, f.Matches(&c))
	d := issue("PREC-3", "PREC", "Bug", "Open")
	assert.False(t, f.Matches(&d))
}

func TestAllVisitsEveryPageOnceInOrder(t *testing.T) {
	s := &pagedSearcher{pages: [][]jira.Issue{
		{issue("P-1", "P", "Task", "Open"), issue("P-2", "P", "Task", "Open")},
		{issue("P-3", "P", "Task", "Open")},
		{issue("P-4", "P", "Task", "Open"), issue("P-5", "P", "Task", "Open")},
	}}
	sc := New(s, Filter{Project: "P"}, 2)

	assert.Equal(t, []string{"P-1", "P-2", "P-3", "P-4", "P-5"}, keys(t, sc))
	assert.Equal(t, []string{"", "p1", "p2"}, s.calls)
	assert.Equal(t, Stats{Pages: 3, Seen: 5}, sc.Stats())
}

func TestAllStopsOnEmptyPage(t *testing.T) {
	s := &pagedSearcher{pages: [][]jira.Issue{
		{issue("P-1", "P", "Task", "Open")},
		{},
		{issue("P-9", "P", "Task", "Open")},
	}}
	sc := New(s, Filter{}, 10)

	assert.Equal(t, []string{"P-1"}, keys(t, sc))
	assert.Len(t, s.calls, 2)
}

func TestAllIsRestartable(t *testing.T) {
	s := &pagedSearcher{pages: [][]jira.Issue{
		{issue("P-1", "P", "Task", "Open")},
		{issue("P-2", "P", "Task", "Open")},
	}}
	sc := New(s, Filter{}, 1)

	first := keys(t, sc)
	second := keys(t, sc)
	assert.Equal(t, first, second)
	assert.Equal(t, Stats{Pages: 2, Seen: 2}, sc.Stats())
}

func TestAllSkipsNonMatching(t *testing.T) {
	s := &pagedSearcher{pages: [][]jira.Issue{
		{issue("P-1", "P", "Task", "Open"), issue("P-2", "P", "Task", "Done")},
	}}
	sc := New(s, Filter{ExcludeStatus: "done"}, 10)
	var dropped []string
	sc.OnFiltered = func(is *jira.Issue) { dropped = append(dropped, is.Key) }

	assert.Equal(t, []string{"P-1"}, keys(t, sc))
	assert.Equal(t, []string{"P-2"}, dropped)
	assert.Equal(t, 1, sc.Stats().Filtered)
}

func TestAllYieldsSearchError(t *testing.T) {
	s := &pagedSearcher{
		pages:  [][]jira.Issue{{issue("P-1", "P", "Task", "Open")}, {issue("P-2", "P", "Task", "Open")}},
		failAt: 1,
	}
	sc := New(s, Filter{}, 1)

	var got []string
	var gotErr error
	for is, err := range sc.All(context.Background()) {
		if err != nil {
			gotErr = err
			continue
		}
		got = append(got, is.Key)
	}
	assert.Equal(t, []string{"P-1"}, got)
	assert.EqualError(t, gotErr, "search exploded")
}

func TestAllStopsWhenConsumerBreaks(t *testing.T) {
	s := &pagedSearcher{pages: [][]jira.Issue{
		{issue("P-1", "P", "Task", "Open"), issue("P-2", "P", "Task", "Open")},
		{issue("P-3", "P", "Task", "Open")},
	}}
	sc := New(s, Filter{}, 2)

	for range sc.All(context.Background()) {
		break
	}
	assert.Len(t, s.calls, 1)
}

func TestAllDetectsStalledToken(t *testing.T) {
	stuck := searcherFunc(func(_ context.Context, _, _ string, _ int) (*jira.SearchPage, error) {
		return &jira.SearchPage{Issues: []jira.Issue{issue("P-1", "P", "Task", "Open")}, NextPageToken: "same"}, nil
	})
	sc := New(stuck, Filter{}, 1)

	var errs int
	var seen int
	for _, err := range sc.All(context.Background()) {
		if err != nil {
			errs++
			continue
		}
		seen++
	}
	assert.Equal(t, 1, errs)
	assert.Equal(t, 2, seen)
}

func TestAllHonorsCancelledContext(t *testing.T) {
	s := &pagedSearcher{pages: [][]jira.Issue{{issue("P-1", "P", "Task", "Open")}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, err := range New(s, Filter{}, 1).All(ctx) {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Empty(t, s.calls)
}

type searcherFunc func(ctx context.Context, jql, token string, pageSize int) (*jira.SearchPage, error)

func (f searcherFunc) SearchPage(ctx context.Context, jql, token string, pageSize int) (*jira.SearchPage, error) {
	return f(ctx, jql, token, pageSize)
}
