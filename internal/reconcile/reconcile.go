// Package reconcile decides which remote links an issue still needs.
//
// A link is identified by its exact (title, url) pair. Links are derived as
// pure functions of the selection and the catalog object id, so running the
// pipeline again over unchanged data plans nothing.
package reconcile

import (
	"github.com/missionrelease/assetlink/internal/assets"
	"github.com/missionrelease/assetlink/internal/types"
)

// LinkSet is the set of (title, url) pairs already present on an issue.
type LinkSet struct {
	seen map[types.RemoteLink]struct{}
}

// NewLinkSet builds a set from existing links.
func NewLinkSet(links []types.RemoteLink) *LinkSet {
	s := &LinkSet{seen: make(map[types.RemoteLink]struct{}, len(links))}
	for _, l := range links {
		s.seen[l] = struct{}{}
	}
	return s
}

// Has reports whether link is in the set.
func (s *LinkSet) Has(link types.RemoteLink) bool {
	_, ok := s.seen[link]
	return ok
}

// Add inserts link and reports whether it was new.
func (s *LinkSet) Add(link types.RemoteLink) bool {
	if s.Has(link) {
		return false
	}
	s.seen[link] = struct{}{}
	return true
}

// Len returns the number of links in the set.
func (s *LinkSet) Len() int {
	return len(s.seen)
}

// Title returns the remote link title for a selection.
func Title(sel types.Selection) string {
	return sel.Category + " - " + sel.Name
}

// Derive builds the remote link for sel resolved to objectID on site.
func Derive(sel types.Selection, objectID assets.ObjectID, site string) types.RemoteLink {
	return types.RemoteLink{
		Title: Title(sel),
		URL:   assets.ObjectURL(site, objectID),
	}
}

// Plan returns the candidates not yet in existing, in input order. Each
// planned link is added to existing so repeats within candidates appear once.
func Plan(existing *LinkSet, candidates []types.RemoteLink) []types.RemoteLink {
	var out []types.RemoteLink
	for _, c := range candidates {
		if existing.Add(c) {
			out = append(out, c)
		}
	}
	return out
}
