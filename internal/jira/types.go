// Package jira provides the Jira Cloud REST client used by assetlink: JQL
// search with cursor pagination, description read/write, and remote links.
package jira

import (
	"encoding/json"

	"github.com/missionrelease/assetlink/internal/atlassian"
)

// APIError is the error returned for non-2xx Jira responses.
type APIError = atlassian.APIError

// MaxPageSize is the largest page the search/jql endpoint accepts.
const MaxPageSize = 100

// searchFields is the set of fields requested for every searched issue.
var searchFields = []string{"summary", "description", "status", "issuetype", "project"}

// Issue represents a Jira issue from the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self,omitempty"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the fields of a Jira issue that assetlink reads.
type IssueFields struct {
	Summary     string          `json:"summary,omitempty"`
	Description json.RawMessage `json:"description,omitempty"` // ADF document, plain string, or null
	Status      *StatusField    `json:"status,omitempty"`
	IssueType   *IssueTypeField `json:"issuetype,omitempty"`
	Project     *ProjectField   `json:"project,omitempty"`
}

// StatusField represents a Jira issue status.
type StatusField struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// IssueTypeField represents a Jira issue type.
type IssueTypeField struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ProjectField represents a Jira project.
type ProjectField struct {
	ID  string `json:"id,omitempty"`
	Key string `json:"key"`
}

// StatusName returns the status name or "" when the field is absent.
func (i *Issue) StatusName() string {
	if i.Fields.Status == nil {
		return ""
	}
	return i.Fields.Status.Name
}

// IssueTypeName returns the issue type name or "" when the field is absent.
func (i *Issue) IssueTypeName() string {
	if i.Fields.IssueType == nil {
		return ""
	}
	return i.Fields.IssueType.Name
}

// ProjectKey returns the project key or "" when the field is absent.
func (i *Issue) ProjectKey() string {
	if i.Fields.Project == nil {
		return ""
	}
	return i.Fields.Project.Key
}

// SearchRequest is the POST body for /rest/api/3/search/jql.
type SearchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults"`
	Fields        []string `json:"fields"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// SearchPage is one page of a JQL search. An empty NextPageToken means no
// further pages.
type SearchPage struct {
	Issues        []Issue `json:"issues"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
	IsLast        bool    `json:"isLast,omitempty"`
}

// RemoteLinkObject is the "object" of a remote link.
type RemoteLinkObject struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// RemoteLinkRecord is a remote link as listed by GET .../remotelink.
type RemoteLinkRecord struct {
	ID       int              `json:"id,omitempty"`
	GlobalID string           `json:"globalId,omitempty"`
	Object   RemoteLinkObject `json:"object"`
}

// CreateRemoteLinkRequest is the POST body for creating a remote link.
type CreateRemoteLinkRequest struct {
	Object RemoteLinkObject `json:"object"`
}
