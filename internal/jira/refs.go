package jira

import (
	"strings"
	"time"
)

// BrowseURL builds the browse URL of an issue key on a site,
// e.g. "https://company.atlassian.net/browse/PREC-123".
func BrowseURL(site, key string) string {
	return strings.TrimSuffix(site, "/") + "/browse/" + key
}

// ExtractKey extracts the issue key from a browse URL, dropping any query or
// fragment. A bare key is returned unchanged.
func ExtractKey(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i != -1 {
		ref = ref[:i]
	}
	idx := strings.LastIndex(ref, "/browse/")
	if idx == -1 {
		if strings.Contains(ref, "/") {
			return ""
		}
		return ref
	}
	return ref[idx+len("/browse/"):]
}

// QuoteJQL renders s as a double-quoted JQL string literal.
func QuoteJQL(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// FormatJQLTime formats t in the "yyyy-MM-dd HH:mm" form JQL date clauses accept.
func FormatJQLTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
