package jira_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionrelease/assetlink/internal/atlassian"
	"github.com/missionrelease/assetlink/internal/description"
	"github.com/missionrelease/assetlink/internal/jira"
	"github.com/missionrelease/assetlink/internal/testutil"
	"github.com/missionrelease/assetlink/internal/types"
)

func newTestClient(t *testing.T) (*jira.Client, *testutil.AtlassianMock) {
	t.Helper()
	mock := testutil.NewAtlassianMock("ws-1")
	t.Cleanup(mock.Close)
	api := atlassian.NewClient(mock.URL(), "bot@example.com", "token", "jira", 0)
	return jira.NewClient(api), mock
}

func TestSearchPageFollowsToken(t *testing.T) {
	client, mock := newTestClient(t)
	for _, key := range []string{"PREC-1", "PREC-2", "PREC-3"} {
		mock.AddIssue(testutil.MockIssue{Key: key, Project: "PREC", IssueType: "Task", Status: "Open"})
	}
	ctx := context.Background()

	page, err := client.SearchPage(ctx, `project = "PREC"`, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Issues, 2)
	assert.Equal(t, "PREC-1", page.Issues[0].Key)
	assert.Equal(t, "Task", page.Issues[0].IssueTypeName())
	assert.Equal(t, "Open", page.Issues[0].StatusName())
	assert.Equal(t, "PREC", page.Issues[0].ProjectKey())
	require.NotEmpty(t, page.NextPageToken)

	page, err = client.SearchPage(ctx, `project = "PREC"`, page.NextPageToken, 2)
	require.NoError(t, err)
	require.Len(t, page.Issues, 1)
	assert.Equal(t, "PREC-3", page.Issues[0].Key)
	assert.Empty(t, page.NextPageToken)

	assert.Equal(t, []string{`project = "PREC"`, `project = "PREC"`}, mock.SearchJQL())
}

func TestSearchPageClampsPageSize(t *testing.T) {
	client, mock := newTestClient(t)

	_, err := client.SearchPage(context.Background(), "project = X", "", 500)
	require.NoError(t, err)

	reqs := mock.GetRequests()
	require.Len(t, reqs, 1)
	var body jira.SearchRequest
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, jira.MaxPageSize, body.MaxResults)
	assert.Contains(t, body.Fields, "description")
	assert.Empty(t, body.NextPageToken)
}

func TestGetDescriptionKinds(t *testing.T) {
	client, mock := newTestClient(t)
	mock.AddIssue(testutil.MockIssue{Key: "PREC-1", Description: "- Server\n  - web-01\n"})
	mock.AddIssue(testutil.MockIssue{Key: "PREC-2", Description: map[string]interface{}{
		"type": "doc", "version": 1, "content": []interface{}{},
	}})
	mock.AddIssue(testutil.MockIssue{Key: "PREC-3"})
	ctx := context.Background()

	d, err := client.GetDescription(ctx, "PREC-1")
	require.NoError(t, err)
	assert.Equal(t, description.PlainText, d.Kind)
	assert.Equal(t, []types.Selection{{Category: "Server", Name: "web-01"}}, description.Parse(d))

	d, err = client.GetDescription(ctx, "PREC-2")
	require.NoError(t, err)
	assert.Equal(t, description.Document, d.Kind)

	d, err = client.GetDescription(ctx, "PREC-3")
	require.NoError(t, err)
	assert.True(t, d.IsEmpty())
}

func TestGetIssueNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetIssue(context.Background(), "NOPE-1")
	require.Error(t, err)
	assert.True(t, atlassian.IsNotFound(err))
	assert.Contains(t, err.Error(), "get issue NOPE-1")
}

func TestRemoteLinksRoundTrip(t *testing.T) {
	client, mock := newTestClient(t)
	mock.AddLink("PREC-1", testutil.MockLink{Title: "Server - web-01", URL: "https://x/objects/1"})
	ctx := context.Background()

	links, err := client.ListRemoteLinks(ctx, "PREC-1")
	require.NoError(t, err)
	assert.Equal(t, []types.RemoteLink{{Title: "Server - web-01", URL: "https://x/objects/1"}}, links)

	require.NoError(t, client.CreateRemoteLink(ctx, "PREC-1", types.RemoteLink{Title: "Rack - R2", URL: "https://x/objects/2"}))
	assert.Len(t, mock.Links("PREC-1"), 2)
	assert.Equal(t, 1, mock.CountRequests(http.MethodPost, "/rest/api/3/issue/PREC-1/remotelink"))
}

func TestCreateRemoteLinkError(t *testing.T) {
	client, mock := newTestClient(t)
	mock.FailLinkCreation("PREC-1", http.StatusForbidden)

	err := client.CreateRemoteLink(context.Background(), "PREC-1", types.RemoteLink{Title: "t", URL: "u"})
	require.Error(t, err)
	var apiErr *atlassian.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestUpdateDescription(t *testing.T) {
	client, mock := newTestClient(t)
	mock.AddIssue(testutil.MockIssue{Key: "PREC-1"})

	doc := description.NewDocument()
	doc.Content = description.TreeNodes("Assets", []types.Selection{{Category: "Server", Name: "web-01"}})
	require.NoError(t, client.UpdateDescription(context.Background(), "PREC-1", doc))

	stored := description.FromRaw(mock.Description("PREC-1"))
	require.Equal(t, description.Document, stored.Kind)
	assert.Equal(t, []types.Selection{{Category: "Server", Name: "web-01"}}, description.Parse(stored))
}

func TestSiteTrimsSlash(t *testing.T) {
	api := atlassian.NewClient("https://company.atlassian.net/", "", "tok", "jira", 0)
	client := jira.NewClient(api)
	assert.Equal(t, "https://company.atlassian.net", client.Site())
	assert.Equal(t, "https://company.atlassian.net/browse/PREC-7", jira.BrowseURL(client.Site(), "PREC-7"))
}
