package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// MockIssue is an issue served by AtlassianMock. Description is marshalled
// as-is: a string for plain text, a map/struct for ADF, nil for none.
type MockIssue struct {
	Key         string
	Project     string
	IssueType   string
	Status      string
	Summary     string
	Description interface{}
}

// MockAsset is an Assets object served by the AQL endpoint.
type MockAsset struct {
	ID       string
	Category string
	Name     string
	Serial   string
}

// MockLink is a remote link stored by the mock.
type MockLink struct {
	Title string
	URL   string
}

// AtlassianMock serves the subset of the Jira and Assets APIs assetlink uses:
// search/jql with nextPageToken pagination, issue read/update, remote links,
// and AQL object search.
type AtlassianMock struct {
	*MockServer

	mu          sync.Mutex
	workspaceID string
	issues      []MockIssue
	assets      []MockAsset
	links       map[string][]MockLink
	linkErrors  map[string]int
	aqlErrors   map[string]int
	searchJQL   []string
	nextLinkID  int
}

// NewAtlassianMock creates a mock for the given Assets workspace id.
func NewAtlassianMock(workspaceID string) *AtlassianMock {
	m := &AtlassianMock{
		MockServer:  NewMockServer(),
		workspaceID: workspaceID,
		links:       make(map[string][]MockLink),
		linkErrors:  make(map[string]int),
		aqlErrors:   make(map[string]int),
		nextLinkID:  10000,
	}
	m.SetDefaultHandler(m.handle)
	return m
}

// AddIssue appends an issue; search returns issues in insertion order.
func (m *AtlassianMock) AddIssue(issue MockIssue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues = append(m.issues, issue)
}

// AddAsset appends an Assets object.
func (m *AtlassianMock) AddAsset(asset MockAsset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append(m.assets, asset)
}

// AddLink pre-populates a remote link on an issue.
func (m *AtlassianMock) AddLink(key string, link MockLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[key] = append(m.links[key], link)
}

// Links returns the remote links currently stored for key.
func (m *AtlassianMock) Links(key string) []MockLink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockLink(nil), m.links[key]...)
}

// Description returns the stored description of key as raw JSON.
func (m *AtlassianMock) Description(key string) json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, is := range m.issues {
		if is.Key == key {
			data, _ := json.Marshal(is.Description)
			return data
		}
	}
	return nil
}

// FailLinkCreation makes remote link creation on key fail with status.
func (m *AtlassianMock) FailLinkCreation(key string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkErrors[key] = status
}

// FailAQL makes catalog queries for objects of category fail with status.
func (m *AtlassianMock) FailAQL(category string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aqlErrors[category] = status
}

// SearchJQL returns the JQL strings received by the search endpoint.
func (m *AtlassianMock) SearchJQL() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searchJQL...)
}

func (m *AtlassianMock) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == "/rest/api/3/search/jql" && r.Method == http.MethodPost:
		m.handleSearch(w, r)
	case strings.HasPrefix(path, "/rest/api/3/issue/") && strings.HasSuffix(path, "/remotelink"):
		key := strings.TrimSuffix(strings.TrimPrefix(path, "/rest/api/3/issue/"), "/remotelink")
		if r.Method == http.MethodPost {
			m.handleCreateLink(w, r, key)
		} else {
			m.handleListLinks(w, key)
		}
	case strings.HasPrefix(path, "/rest/api/3/issue/"):
		key := strings.TrimPrefix(path, "/rest/api/3/issue/")
		if r.Method == http.MethodPut {
			m.handleUpdateIssue(w, r, key)
		} else {
			m.handleGetIssue(w, key)
		}
	case path == "/jsm/assets/workspace/"+m.workspaceID+"/v1/object/aql" && r.Method == http.MethodPost:
		m.handleAQL(w, r)
	default:
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

func (m *AtlassianMock) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JQL           string `json:"jql"`
		MaxResults    int    `json:"maxResults"`
		NextPageToken string `json:"nextPageToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchJQL = append(m.searchJQL, req.JQL)

	offset := 0
	if req.NextPageToken != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(req.NextPageToken, "offset:"))
		if err != nil {
			WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "bad token"})
			return
		}
		offset = n
	}
	size := req.MaxResults
	if size <= 0 {
		size = 50
	}

	end := offset + size
	if end > len(m.issues) {
		end = len(m.issues)
	}
	var issues []map[string]interface{}
	if offset < len(m.issues) {
		for _, is := range m.issues[offset:end] {
			issues = append(issues, issueJSON(is))
		}
	}

	resp := map[string]interface{}{"issues": issues}
	if end < len(m.issues) {
		resp["nextPageToken"] = fmt.Sprintf("offset:%d", end)
	} else {
		resp["isLast"] = true
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (m *AtlassianMock) handleGetIssue(w http.ResponseWriter, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, is := range m.issues {
		if is.Key == key {
			WriteJSON(w, http.StatusOK, issueJSON(is))
			return
		}
	}
	WriteJSON(w, http.StatusNotFound, map[string][]string{"errorMessages": {"Issue does not exist or you do not have permission to see it."}})
}

func (m *AtlassianMock) handleUpdateIssue(w http.ResponseWriter, r *http.Request, key string) {
	var req struct {
		Fields struct {
			Description json.RawMessage `json:"description"`
		} `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.issues {
		if m.issues[i].Key == key {
			m.issues[i].Description = req.Fields.Description
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Issue not found"})
}

func (m *AtlassianMock) handleListLinks(w http.ResponseWriter, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []map[string]interface{}{}
	for i, l := range m.links[key] {
		out = append(out, map[string]interface{}{
			"id":     i + 1,
			"object": map[string]string{"url": l.URL, "title": l.Title},
		})
	}
	WriteJSON(w, http.StatusOK, out)
}

func (m *AtlassianMock) handleCreateLink(w http.ResponseWriter, r *http.Request, key string) {
	var req struct {
		Object struct {
			URL   string `json:"url"`
			Title string `json:"title"`
		} `json:"object"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if status, ok := m.linkErrors[key]; ok {
		WriteJSON(w, status, map[string][]string{"errorMessages": {"remote link rejected"}})
		return
	}
	m.links[key] = append(m.links[key], MockLink{Title: req.Object.Title, URL: req.Object.URL})
	m.nextLinkID++
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   m.nextLinkID,
		"self": m.Server.URL + "/rest/api/3/issue/" + key + "/remotelink/" + strconv.Itoa(m.nextLinkID),
	})
}

// aqlRe matches the query the assets resolver builds.
var aqlRe = regexp.MustCompile(`^objectType = "((?:[^"\\]|\\.)*)" AND \(Name = "((?:[^"\\]|\\.)*)" OR "Serial Number" = "((?:[^"\\]|\\.)*)"\)$`)

func unquoteAQL(s string) string {
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s)
}

func (m *AtlassianMock) handleAQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QLQuery       string `json:"qlQuery"`
		Page          int    `json:"page"`
		ResultPerPage int    `json:"resultPerPage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	match := aqlRe.FindStringSubmatch(req.QLQuery)
	if match == nil {
		WriteJSON(w, http.StatusBadRequest, map[string][]string{"errorMessages": {"unsupported AQL: " + req.QLQuery}})
		return
	}
	category, name, serial := unquoteAQL(match[1]), unquoteAQL(match[2]), unquoteAQL(match[3])

	m.mu.Lock()
	defer m.mu.Unlock()
	if status, ok := m.aqlErrors[category]; ok {
		WriteJSON(w, status, map[string][]string{"errorMessages": {"catalog unavailable"}})
		return
	}
	entries := []map[string]interface{}{}
	for _, a := range m.assets {
		if a.Category != category || (a.Name != name && a.Serial != serial) {
			continue
		}
		entries = append(entries, map[string]interface{}{
			"id":         a.ID,
			"objectKey":  "CMDB-" + a.ID,
			"label":      a.Name,
			"objectType": map[string]string{"name": a.Category},
		})
	}
	total := len(entries)
	if req.ResultPerPage > 0 && len(entries) > req.ResultPerPage {
		entries = entries[:req.ResultPerPage]
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"objectEntries":    entries,
		"totalFilterCount": total,
	})
}

func issueJSON(is MockIssue) map[string]interface{} {
	return map[string]interface{}{
		"id":  "1" + strings.TrimLeft(is.Key, "ABCDEFGHIJKLMNOPQRSTUVWXYZ-"),
		"key": is.Key,
		"fields": map[string]interface{}{
			"summary":     is.Summary,
			"description": is.Description,
			"status":      map[string]string{"name": is.Status},
			"issuetype":   map[string]string{"name": is.IssueType},
			"project":     map[string]string{"key": is.Project},
		},
	}
}
