package description

import (
	"encoding/json"
	"strings"
)

// ADF node type names used by the parser and renderer.
const (
	NodeDoc         = "doc"
	NodeParagraph   = "paragraph"
	NodeHeading     = "heading"
	NodeText        = "text"
	NodeHardBreak   = "hardBreak"
	NodeBulletList  = "bulletList"
	NodeOrderedList = "orderedList"
	NodeListItem    = "listItem"
)

// Node is a node in an Atlassian Document Format tree. A document is the Node
// whose Type is "doc"; Version is only set on the root.
type Node struct {
	Version int            `json:"version,omitempty"`
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Mark represents formatting marks on text.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// NewDocument returns an empty version 1 ADF document.
func NewDocument() *Node {
	return &Node{Version: 1, Type: NodeDoc, Content: []Node{}}
}

// IsList reports whether n is a bullet or ordered list.
func (n Node) IsList() bool {
	return n.Type == NodeBulletList || n.Type == NodeOrderedList
}

// JSON encodes the node. Encoding a Node cannot fail, so errors are not returned.
func (n *Node) JSON() json.RawMessage {
	data, _ := json.Marshal(n)
	return data
}

// inlineText concatenates every text node below n.
func inlineText(n Node) string {
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

func collectText(n Node, b *strings.Builder) {
	switch n.Type {
	case NodeText:
		b.WriteString(n.Text)
		return
	case NodeHardBreak:
		b.WriteByte(' ')
		return
	}
	for _, c := range n.Content {
		collectText(c, b)
	}
}

// leadingText returns the text of the first non-list block inside a list item.
func leadingText(item Node) string {
	for _, c := range item.Content {
		if c.IsList() {
			continue
		}
		return strings.TrimSpace(inlineText(c))
	}
	return ""
}
