package parser

import (
	"regexp"
	"strings"
)

var (
	listItemRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.*)$`)
	markerRe   = regexp.MustCompile(`^\[([ xX])\]\s*(.*)$`)
)

// DefaultSection names items that appear before any heading.
const DefaultSection = "General"

// ChecklistLine is one item line of a checklist document.
type ChecklistLine struct {
	Line    int
	Section string
	Label   string
	Done    bool
}

// ParseChecklist reads checklist items from Markdown. Items are list lines
// carrying a "[ ]" or "[x]" marker; the section is the nearest preceding
// heading. List lines without a marker (or with an empty label) are
// returned as malformed line numbers. Prose, blank lines, headings and
// anything inside code fences are ignored.
func ParseChecklist(data []byte) (items []ChecklistLine, malformed []int) {
	_, body, _ := splitFrontmatter(data)
	offset := frontmatterLines(data, body)

	section := DefaultSection
	walkLines(body, func(n int, line string, inFence bool) bool {
		if inFence {
			return true
		}
		if _, text, ok := heading(line); ok {
			section = text
			return true
		}
		m := listItemRe.FindStringSubmatch(line)
		if m == nil {
			return true
		}
		mk := markerRe.FindStringSubmatch(m[1])
		if mk == nil || strings.TrimSpace(mk[2]) == "" {
			malformed = append(malformed, n+offset)
			return true
		}
		items = append(items, ChecklistLine{
			Line:    n + offset,
			Section: section,
			Label:   strings.TrimSpace(mk[2]),
			Done:    mk[1] != " ",
		})
		return true
	})
	return items, malformed
}

// SetChecked rewrites the marker on the given 1-based line. Only the marker
// character changes; ok is false when the line is not an item ParseChecklist
// would report, which excludes fenced code and empty labels.
func SetChecked(data []byte, line int, done bool) (out []byte, ok bool) {
	items, _ := ParseChecklist(data)
	found := false
	for _, it := range items {
		if it.Line == line {
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}
	lines := strings.Split(string(data), "\n")
	if line < 1 || line > len(lines) {
		return nil, false
	}
	cur := lines[line-1]
	m := listItemRe.FindStringSubmatchIndex(cur)
	if m == nil {
		return nil, false
	}
	rest := cur[m[2]:]
	if !markerRe.MatchString(rest) {
		return nil, false
	}
	mark := " "
	if done {
		mark = "x"
	}
	// rest starts with "[", the marker character follows it.
	pos := m[2] + 1
	lines[line-1] = cur[:pos] + mark + cur[pos+1:]
	return []byte(strings.Join(lines, "\n")), true
}

// frontmatterLines returns how many lines precede body in data.
func frontmatterLines(data []byte, body string) int {
	norm := strings.ReplaceAll(string(data), "\r\n", "\n")
	if body == norm {
		return 0
	}
	return strings.Count(norm[:len(norm)-len(body)], "\n")
}
