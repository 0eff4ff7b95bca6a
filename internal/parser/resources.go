package parser

import (
	"regexp"
	"strings"
)

var (
	mdLinkRe   = regexp.MustCompile(`^\[([^\]]+)\]\(([^)\s]*)\)\s*(.*)$`)
	autoLinkRe = regexp.MustCompile(`^<([^>\s]+)>\s*(.*)$`)
	emphasisRe = regexp.MustCompile(`^[*_]+|[*_]+$`)
)

// ResourceEntry is one list item of a resource index.
type ResourceEntry struct {
	Line     int
	Category string
	Title    string
	URL      string
}

// ParseResources reads list items of a resource document. Headings define
// categories. An item is "[Title](url)", "<url>", or plain text (a book
// title without a link). Empty items are returned as malformed lines.
func ParseResources(data []byte) (entries []ResourceEntry, malformed []int) {
	_, body, _ := splitFrontmatter(data)
	offset := frontmatterLines(data, body)

	category := DefaultSection
	walkLines(body, func(n int, line string, inFence bool) bool {
		if inFence {
			return true
		}
		if _, text, ok := heading(line); ok {
			category = text
			return true
		}
		m := listItemRe.FindStringSubmatch(line)
		if m == nil {
			return true
		}
		e := ResourceEntry{Line: n + offset, Category: category}
		item := strings.TrimSpace(m[1])
		switch {
		case mdLinkRe.MatchString(item):
			lm := mdLinkRe.FindStringSubmatch(item)
			e.Title, e.URL = strings.TrimSpace(lm[1]), lm[2]
		case autoLinkRe.MatchString(item):
			am := autoLinkRe.FindStringSubmatch(item)
			e.URL = am[1]
			e.Title = strings.TrimSpace(strings.TrimLeft(am[2], "-–— "))
			if e.Title == "" {
				e.Title = e.URL
			}
		default:
			e.Title = strings.TrimSpace(emphasisRe.ReplaceAllString(item, ""))
		}
		if e.Title == "" {
			malformed = append(malformed, e.Line)
			return true
		}
		entries = append(entries, e)
		return true
	})
	return entries, malformed
}
