// Package assets resolves (category, name) pairs against a Jira Service
// Management Assets workspace using AQL.
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/missionrelease/assetlink/internal/atlassian"
	"github.com/missionrelease/assetlink/internal/debug"
)

// ObjectID is an Assets object id. The API returns it as a string, some
// older workspaces as a number; both decode.
type ObjectID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ObjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ObjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("object id: %w", err)
	}
	*id = ObjectID(n.String())
	return nil
}

// ObjectType is the type of an Assets object.
type ObjectType struct {
	ID   ObjectID `json:"id,omitempty"`
	Name string   `json:"name"`
}

// Object is a catalog entry as returned by the AQL endpoint.
type Object struct {
	ID         ObjectID   `json:"id"`
	ObjectKey  string     `json:"objectKey"`
	Label      string     `json:"label"`
	ObjectType ObjectType `json:"objectType"`
}

// AQLRequest is the POST body of the object/aql endpoint.
type AQLRequest struct {
	QLQuery       string `json:"qlQuery"`
	Page          int    `json:"page"`
	ResultPerPage int    `json:"resultPerPage"`
}

// AQLResponse is one page of AQL results.
type AQLResponse struct {
	ObjectEntries    []Object `json:"objectEntries"`
	TotalFilterCount int      `json:"totalFilterCount,omitempty"`
}

// resolvePageSize is how many matches Resolve asks for. Two is enough to
// notice ambiguity.
const resolvePageSize = 2

// Client queries one Assets workspace.
type Client struct {
	api         *atlassian.Client
	workspaceID string
}

// NewClient creates an Assets client for workspaceID on top of a site client.
func NewClient(api *atlassian.Client, workspaceID string) *Client {
	return &Client{api: api, workspaceID: workspaceID}
}

// Query runs an AQL query and returns the first page of results.
func (c *Client) Query(ctx context.Context, aql string, perPage int) ([]Object, error) {
	if c.workspaceID == "" {
		return nil, fmt.Errorf("assets workspace id not configured")
	}
	path := fmt.Sprintf("/jsm/assets/workspace/%s/v1/object/aql", c.workspaceID)
	req := AQLRequest{QLQuery: aql, Page: 1, ResultPerPage: perPage}

	var resp AQLResponse
	if err := c.api.PostJSON(ctx, path, req, &resp); err != nil {
		return nil, fmt.Errorf("aql query: %w", err)
	}
	return resp.ObjectEntries, nil
}

// Resolve looks up the object of type category whose Name or Serial Number
// equals name. It returns (nil, nil) when nothing matches; when several
// objects match the first in catalog order wins.
func (c *Client) Resolve(ctx context.Context, category, name string) (*Object, error) {
	objects, err := c.Query(ctx, BuildAQL(category, name), resolvePageSize)
	if err != nil {
		return nil, fmt.Errorf("resolve %s / %s: %w", category, name, err)
	}
	if len(objects) == 0 {
		return nil, nil
	}
	if len(objects) > 1 {
		debug.Logf("assets: %d objects match %s / %s, using %s\n", len(objects), category, name, objects[0].ID)
	}
	obj := objects[0]
	return &obj, nil
}

// BuildAQL renders the lookup predicate for (category, name).
func BuildAQL(category, name string) string {
	n := quote(name)
	return fmt.Sprintf(`objectType = %s AND (Name = %s OR "Serial Number" = %s)`, quote(category), n, n)
}

var aqlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + aqlEscaper.Replace(s) + `"`
}

// ObjectURL returns the browser URL of an object on site.
func ObjectURL(site string, id ObjectID) string {
	return strings.TrimSuffix(site, "/") + "/jira/servicedesk/assets/objects/" + string(id)
}
