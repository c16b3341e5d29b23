package description

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/missionrelease/assetlink/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(text string, children ...Node) Node {
	n := listItem(text)
	n.Content = append(n.Content, children...)
	return n
}

func bullets(items ...Node) Node {
	return Node{Type: NodeBulletList, Content: items}
}

func TestParseDocumentNestedLists(t *testing.T) {
	doc := &Node{Type: NodeDoc, Content: []Node{
		paragraph("Release checklist"),
		bullets(
			item("Displays", bullets(item("11100411"), item("11100412"))),
			item("PCM Devices", bullets(item("217646000000000"))),
		),
	}}

	got := ParseDocument(doc)
	assert.Equal(t, []types.Selection{
		{Category: "Displays", Name: "11100411"},
		{Category: "Displays", Name: "11100412"},
		{Category: "PCM Devices", Name: "217646000000000"},
	}, got)
}

func TestParseDocumentItemWithoutNestedListContributesNothing(t *testing.T) {
	doc := &Node{Type: NodeDoc, Content: []Node{
		bullets(
			item("Orphan"),
			item("Displays", bullets(item("1"))),
		),
	}}
	assert.Equal(t, []types.Selection{{Category: "Displays", Name: "1"}}, ParseDocument(doc))
}

func TestParseDocumentMultipleNestedLists(t *testing.T) {
	ordered := Node{Type: NodeOrderedList, Content: []Node{item("B")}}
	doc := &Node{Type: NodeDoc, Content: []Node{
		bullets(item("Loggers", bullets(item("A")), ordered)),
	}}
	assert.Equal(t, []types.Selection{
		{Category: "Loggers", Name: "A"},
		{Category: "Loggers", Name: "B"},
	}, ParseDocument(doc))
}

func TestParseDocumentKeepsDuplicatesAndDropsBlankNames(t *testing.T) {
	doc := &Node{Type: NodeDoc, Content: []Node{
		bullets(item("Displays", bullets(item("1"), item("  "), item("1")))),
	}}
	assert.Equal(t, []types.Selection{
		{Category: "Displays", Name: "1"},
		{Category: "Displays", Name: "1"},
	}, ParseDocument(doc))
}

func TestParseDocumentJoinsInlineText(t *testing.T) {
	raw := `{"type":"doc","version":1,"content":[{"type":"bulletList","content":[
		{"type":"listItem","content":[
			{"type":"paragraph","content":[{"type":"text","text":"DeweSoft "},{"type":"text","text":"Computers","marks":[{"type":"strong"}]}]},
			{"type":"bulletList","content":[{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":" DB22020784 "}]}]}]}
		]}
	]}]}`
	d := FromRaw(json.RawMessage(raw))
	require.Equal(t, Document, d.Kind)
	assert.Equal(t, []types.Selection{{Category: "DeweSoft Computers", Name: "DB22020784"}}, Parse(d))
}

func TestParseDocumentCountMatchesNestedItems(t *testing.T) {
	sizes := []int{3, 1, 4, 2}
	var top []Node
	var want []types.Selection
	for i, k := range sizes {
		cat := fmt.Sprintf("Category %d", i)
		var names []Node
		for j := 0; j < k; j++ {
			name := fmt.Sprintf("%d-%d", i, j)
			names = append(names, item(name))
			want = append(want, types.Selection{Category: cat, Name: name})
		}
		top = append(top, item(cat, bullets(names...)))
	}
	doc := &Node{Type: NodeDoc, Content: []Node{bullets(top...)}}

	got := ParseDocument(doc)
	assert.Len(t, got, 10)
	assert.Equal(t, want, got)
}

func TestParseDocumentNil(t *testing.T) {
	assert.Empty(t, ParseDocument(nil))
	assert.Empty(t, ParseDocument(&Node{Type: NodeDoc}))
}
