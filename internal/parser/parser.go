// Package parser extracts front matter, titles, fenced code, checklist items
// and resource links from Markdown content.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	headingRe = regexp.MustCompile(`^\s{0,3}(#{1,6})\s+(.*?)\s*#*\s*$`)
	fenceRe   = regexp.MustCompile("^\\s{0,3}(```+|~~~+)\\s*([^`\\s]*)")
	slugRe    = regexp.MustCompile(`[^a-z0-9]+`)
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Tags        []string
	Title       string
}

// Parse extracts frontmatter, body, tags and title from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Tags:        extractTags(fm),
		Title:       deriveTitle(fm, body),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found, or the block is never
// closed, the entire content is body. A closed block that is not valid YAML
// is an error; the returned body is then the entire content.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(data, "\n")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter: everything is body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data), fmt.Errorf("front matter: %w", err)
	}

	return fm, body, nil
}

// extractTags collects the frontmatter "tags" list, deduplicated.
func extractTags(fm map[string]interface{}) []string {
	raw, ok := fm["tags"]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	var out []string
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading outside code fences, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if t, ok := fm["title"]; ok {
		if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	var title string
	walkLines(body, func(_ int, line string, inFence bool) bool {
		if inFence {
			return true
		}
		if level, text, ok := heading(line); ok && level == 1 {
			title = text
			return false
		}
		return true
	})
	return title
}

// heading reports whether line is an ATX heading and returns its level and text.
func heading(line string) (int, string, bool) {
	m := headingRe.FindStringSubmatch(line)
	if m == nil || m[2] == "" {
		return 0, "", false
	}
	return len(m[1]), m[2], true
}

// walkLines calls fn for every line with its 1-based number and whether the
// line sits inside a fenced code block. Fence delimiter lines count as
// inside. Returning false stops the walk.
func walkLines(text string, fn func(n int, line string, inFence bool) bool) {
	var fence string
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if m := fenceRe.FindStringSubmatch(line); m != nil {
			switch {
			case fence == "":
				fence = m[1]
				if !fn(i+1, line, true) {
					return
				}
				continue
			case strings.HasPrefix(strings.TrimSpace(line), fence) && m[2] == "":
				fence = ""
				if !fn(i+1, line, true) {
					return
				}
				continue
			}
		}
		if !fn(i+1, line, fence != "") {
			return
		}
	}
}

// Slug turns a heading into an HTML anchor.
func Slug(s string) string {
	s = slugRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
