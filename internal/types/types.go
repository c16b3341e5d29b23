// Package types defines the core value types shared by the assetlink pipeline.
package types

import "strings"

// Selection is one (category, name) pair extracted from an issue description.
// Category is the asset object type; Name is the asset's Name or Serial Number.
type Selection struct {
	Category string `json:"category" toml:"category"`
	Name     string `json:"name" toml:"name"`
}

// NewSelection builds a Selection with both fields trimmed of surrounding whitespace.
func NewSelection(category, name string) Selection {
	return Selection{
		Category: strings.TrimSpace(category),
		Name:     strings.TrimSpace(name),
	}
}

// String renders the selection as "Category / Name" for progress output.
func (s Selection) String() string {
	return s.Category + " / " + s.Name
}

// Valid reports whether both fields are non-empty.
func (s Selection) Valid() bool {
	return s.Category != "" && s.Name != ""
}

// RemoteLink is a titled hyperlink attached to an issue.
type RemoteLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// GroupByCategory groups selection names by category, preserving first-seen
// category order and in-category name order.
func GroupByCategory(sels []Selection) ([]string, map[string][]string) {
	var order []string
	grouped := make(map[string][]string)
	for _, s := range sels {
		if _, ok := grouped[s.Category]; !ok {
			order = append(order, s.Category)
		}
		grouped[s.Category] = append(grouped[s.Category], s.Name)
	}
	return order, grouped
}
