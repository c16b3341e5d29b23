// Package description extracts asset selections from Jira issue descriptions.
//
// A description arrives either as an Atlassian Document Format tree or as plain
// text. The kind is decided once, by FromRaw, where the description is fetched;
// Parse then dispatches on that tag to ParseDocument or ParseText.
//
// Parsing is soft-fail: malformed or empty input yields no selections and never
// an error. Descriptions are free-form user content and a best-effort
// extraction is all the pipeline needs.
package description

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/missionrelease/assetlink/internal/types"
)

// Kind tags which representation a Description holds.
type Kind int

const (
	Empty Kind = iota
	Document
	PlainText
)

func (k Kind) String() string {
	switch k {
	case Document:
		return "document"
	case PlainText:
		return "text"
	default:
		return "empty"
	}
}

// Description is an issue description tagged with its representation.
// Doc is set for Document, Text for PlainText. A Document whose payload could
// not be decoded keeps its tag with a nil Doc.
type Description struct {
	Kind Kind
	Doc  *Node
	Text string
}

// FromText wraps plain text, tagging blank text as Empty.
func FromText(s string) Description {
	if strings.TrimSpace(s) == "" {
		return Description{Kind: Empty}
	}
	return Description{Kind: PlainText, Text: s}
}

// FromDocument wraps an ADF document.
func FromDocument(doc *Node) Description {
	if doc == nil {
		return Description{Kind: Empty}
	}
	return Description{Kind: Document, Doc: doc}
}

// FromRaw classifies a raw "description" field value as returned by the Jira
// REST API: null or missing is Empty, a JSON string is PlainText, a JSON object
// is Document. Anything else is treated as plain text.
func FromRaw(raw json.RawMessage) Description {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Description{Kind: Empty}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Description{Kind: Empty}
		}
		return FromText(s)
	case '{':
		var doc Node
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Description{Kind: Document}
		}
		return FromDocument(&doc)
	default:
		return FromText(string(trimmed))
	}
}

// Parse returns the selections in d in document order. Duplicates are kept.
func Parse(d Description) []types.Selection {
	switch d.Kind {
	case Document:
		return ParseDocument(d.Doc)
	case PlainText:
		return ParseText(d.Text)
	default:
		return nil
	}
}

// IsEmpty reports whether d carries no content.
func (d Description) IsEmpty() bool {
	return d.Kind == Empty
}
