package description

import (
	"regexp"
	"strings"

	"github.com/missionrelease/assetlink/internal/types"
)

var (
	// categoryLineRe matches a bullet in column zero: "- Displays" or "* Displays".
	categoryLineRe = regexp.MustCompile(`^[-*][ \t]+(.*)$`)
	// nameLineRe matches a bullet indented by at least two spaces or a tab.
	nameLineRe = regexp.MustCompile(`^(?: {2,}|\t+)[-*][ \t]+(.*)$`)
)

// ParseText scans indented bullet text. A column-zero bullet sets the current
// category; an indented bullet adds a name under it. Indented bullets seen
// before any category are dropped, as are blank and non-bullet lines.
func ParseText(s string) []types.Selection {
	var (
		out      []types.Selection
		category string
	)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := categoryLineRe.FindStringSubmatch(line); m != nil {
			category = strings.TrimSpace(m[1])
			continue
		}

		m := nameLineRe.FindStringSubmatch(line)
		if m == nil || category == "" {
			continue
		}
		sel := types.NewSelection(category, m[1])
		if sel.Name == "" {
			continue
		}
		out = append(out, sel)
	}
	return out
}
