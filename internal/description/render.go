package description

import (
	"errors"
	"strings"

	"github.com/missionrelease/assetlink/internal/types"
)

// DefaultHeading titles the asset tree appended to descriptions.
const DefaultHeading = "Assets"

// ErrUndecodable is returned when a document-tagged description could not be
// decoded, so it cannot be rewritten without losing content.
var ErrUndecodable = errors.New("description document could not be decoded")

// Outline renders selections as the indented bullet text ParseText reads: a
// column-zero bullet per category followed by its names indented two spaces.
func Outline(sels []types.Selection) string {
	order, grouped := types.GroupByCategory(sels)
	var b strings.Builder
	for _, cat := range order {
		b.WriteString("- " + cat + "\n")
		for _, name := range grouped[cat] {
			b.WriteString("  - " + name + "\n")
		}
	}
	return b.String()
}

// TreeNodes builds a level 2 heading followed by a two-level bullet list of
// the selections grouped by category. ParseDocument reads the list back into
// the same pairs.
func TreeNodes(heading string, sels []types.Selection) []Node {
	order, grouped := types.GroupByCategory(sels)

	list := Node{Type: NodeBulletList}
	for _, cat := range order {
		names := Node{Type: NodeBulletList}
		for _, name := range grouped[cat] {
			names.Content = append(names.Content, listItem(name))
		}
		item := listItem(cat)
		item.Content = append(item.Content, names)
		list.Content = append(list.Content, item)
	}

	return []Node{
		{
			Type:    NodeHeading,
			Attrs:   map[string]any{"level": 2},
			Content: []Node{{Type: NodeText, Text: heading}},
		},
		list,
	}
}

// AppendTree returns a copy of d as an ADF document with the asset tree
// appended. Plain text is converted by textBlocks, so the selections it lists
// still parse from the result.
func AppendTree(d Description, heading string, sels []types.Selection) (*Node, error) {
	doc := NewDocument()
	switch d.Kind {
	case Document:
		if d.Doc == nil {
			return nil, ErrUndecodable
		}
		doc.Content = append(doc.Content, d.Doc.Content...)
	case PlainText:
		doc.Content = append(doc.Content, textBlocks(d.Text)...)
	}
	doc.Content = append(doc.Content, TreeNodes(heading, sels)...)
	return doc, nil
}

func listItem(text string) Node {
	return Node{
		Type:    NodeListItem,
		Content: []Node{paragraph(text)},
	}
}

func paragraph(text string) Node {
	p := Node{Type: NodeParagraph, Content: []Node{}}
	if text != "" {
		p.Content = append(p.Content, Node{Type: NodeText, Text: text})
	}
	return p
}

// textBlocks converts plain text into ADF blocks. Bullet lines become a two
// level bullet list shaped the way ParseDocument reads it; other lines become
// paragraphs. Blank and indented lines do not end an open list, and an
// indented bullet that follows a paragraph reopens its category's list.
func textBlocks(text string) []Node {
	var (
		out      []Node
		list     *Node
		category string
	)
	closeList := func() {
		if list != nil {
			out = append(out, *list)
			list = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			if list == nil {
				out = append(out, paragraph(""))
			}
			continue
		}

		if m := categoryLineRe.FindStringSubmatch(line); m != nil {
			category = strings.TrimSpace(m[1])
			if list == nil {
				list = &Node{Type: NodeBulletList}
			}
			list.Content = append(list.Content, listItem(category))
			continue
		}

		if m := nameLineRe.FindStringSubmatch(line); m != nil && category != "" {
			if list == nil {
				list = &Node{Type: NodeBulletList, Content: []Node{listItem(category)}}
			}
			addName(&list.Content[len(list.Content)-1], strings.TrimSpace(m[1]))
			continue
		}

		if list != nil && (line[0] == ' ' || line[0] == '\t') {
			item := &list.Content[len(list.Content)-1]
			item.Content = append(item.Content, paragraph(strings.TrimSpace(line)))
			continue
		}
		closeList()
		out = append(out, paragraph(line))
	}
	closeList()
	return out
}

// addName appends name to the nested list ending item, starting one if the
// item's last block is not a list.
func addName(item *Node, name string) {
	if n := len(item.Content); n > 0 && item.Content[n-1].IsList() {
		item.Content[n-1].Content = append(item.Content[n-1].Content, listItem(name))
		return
	}
	item.Content = append(item.Content, Node{Type: NodeBulletList, Content: []Node{listItem(name)}})
}
