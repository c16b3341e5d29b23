package jira

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/missionrelease/assetlink/internal/atlassian"
	"github.com/missionrelease/assetlink/internal/description"
	"github.com/missionrelease/assetlink/internal/types"
)

// Client provides access to the Jira REST API v3 of one site.
type Client struct {
	api *atlassian.Client
}

// NewClient creates a Jira client on top of an authenticated site client.
func NewClient(api *atlassian.Client) *Client {
	return &Client{api: api}
}

// Site returns the base URL of the Jira site.
func (c *Client) Site() string {
	return c.api.Site
}

// SearchPage fetches one page of issues matching jql, continuing from token
// (empty for the first page).
func (c *Client) SearchPage(ctx context.Context, jql, token string, pageSize int) (*SearchPage, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	req := SearchRequest{
		JQL:           jql,
		MaxResults:    pageSize,
		Fields:        searchFields,
		NextPageToken: token,
	}

	var page SearchPage
	if err := c.api.PostJSON(ctx, "/rest/api/3/search/jql", req, &page); err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	return &page, nil
}

// GetIssue fetches a single issue by key (e.g., "PREC-123").
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	path := fmt.Sprintf("/rest/api/3/issue/%s?fields=%s", url.PathEscape(key), url.QueryEscape(strings.Join(searchFields, ",")))

	var issue Issue
	if err := c.api.GetJSON(ctx, path, &issue); err != nil {
		return nil, fmt.Errorf("get issue %s: %w", key, err)
	}
	return &issue, nil
}

// GetDescription reads an issue's description and tags its representation.
func (c *Client) GetDescription(ctx context.Context, key string) (description.Description, error) {
	path := fmt.Sprintf("/rest/api/3/issue/%s?fields=description", url.PathEscape(key))

	var issue Issue
	if err := c.api.GetJSON(ctx, path, &issue); err != nil {
		return description.Description{}, fmt.Errorf("get description %s: %w", key, err)
	}
	return description.FromRaw(issue.Fields.Description), nil
}

// UpdateDescription replaces an issue's description with an ADF document.
func (c *Client) UpdateDescription(ctx context.Context, key string, doc *description.Node) error {
	path := "/rest/api/3/issue/" + url.PathEscape(key)
	payload := map[string]interface{}{
		"fields": map[string]interface{}{"description": doc},
	}
	if err := c.api.PutJSON(ctx, path, payload); err != nil {
		return fmt.Errorf("update description %s: %w", key, err)
	}
	return nil
}

// ListRemoteLinks returns the remote links currently attached to an issue.
func (c *Client) ListRemoteLinks(ctx context.Context, key string) ([]types.RemoteLink, error) {
	path := fmt.Sprintf("/rest/api/3/issue/%s/remotelink", url.PathEscape(key))

	var records []RemoteLinkRecord
	if err := c.api.GetJSON(ctx, path, &records); err != nil {
		return nil, fmt.Errorf("list remote links %s: %w", key, err)
	}

	links := make([]types.RemoteLink, 0, len(records))
	for _, r := range records {
		links = append(links, types.RemoteLink{Title: r.Object.Title, URL: r.Object.URL})
	}
	return links, nil
}

// CreateRemoteLink attaches a web link to an issue.
func (c *Client) CreateRemoteLink(ctx context.Context, key string, link types.RemoteLink) error {
	path := fmt.Sprintf("/rest/api/3/issue/%s/remotelink", url.PathEscape(key))
	req := CreateRemoteLinkRequest{
		Object: RemoteLinkObject{URL: link.URL, Title: link.Title},
	}
	if err := c.api.PostJSON(ctx, path, req, nil); err != nil {
		return fmt.Errorf("create remote link %s: %w", key, err)
	}
	return nil
}
