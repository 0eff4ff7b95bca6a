package checklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/starford/coursebook/internal/models"
)

const barWidth = 20

// RenderText writes the checklist as a plain-text table of contents with a
// completion bar and percentage per section.
func RenderText(w io.Writer, c *models.Checklist) error {
	if c == nil || len(c.Sections) == 0 {
		_, err := fmt.Fprintln(w, "No checklist items.")
		return err
	}
	width := 0
	for _, s := range c.Sections {
		width = max(width, len([]rune(s.Name)))
	}
	for i, s := range c.Sections {
		if _, err := fmt.Fprintf(w, "%2d. %-*s %s %3d/%-3d %5.1f%%\n",
			i+1, width, s.Name, bar(s.Progress), s.Done, s.Total, s.Percent()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "    %-*s %s %3d/%-3d %5.1f%%\n",
		width, "Total", bar(c.Overall), c.Overall.Done, c.Overall.Total, c.Overall.Percent())
	return err
}

func bar(p models.Progress) string {
	filled := int(p.Fraction() * barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}
