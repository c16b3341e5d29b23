package description

import "github.com/missionrelease/assetlink/internal/types"

// ParseDocument walks the top-level lists of an ADF document. Each top-level
// list item's leading text is a category; every list nested directly beneath
// that item contributes one name per nested item. Items without a nested list
// contribute nothing.
func ParseDocument(doc *Node) []types.Selection {
	if doc == nil {
		return nil
	}

	var out []types.Selection
	for _, block := range doc.Content {
		if !block.IsList() {
			continue
		}
		for _, item := range block.Content {
			if item.Type != NodeListItem {
				continue
			}
			category := leadingText(item)
			if category == "" {
				continue
			}
			for _, child := range item.Content {
				if !child.IsList() {
					continue
				}
				for _, sub := range child.Content {
					if sub.Type != NodeListItem {
						continue
					}
					sel := types.NewSelection(category, leadingText(sub))
					if sel.Name == "" {
						continue
					}
					out = append(out, sel)
				}
			}
		}
	}
	return out
}
