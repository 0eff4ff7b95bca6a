package parser

import "strings"

// CodeBlock is one fenced code block.
type CodeBlock struct {
	Info string // info string after the opening fence, e.g. "go" or "output"
	Code string
}

// FencedBlocks returns the fenced code blocks of body in document order.
// An unterminated block runs to the end of the text.
func FencedBlocks(body string) []CodeBlock {
	var (
		out   []CodeBlock
		fence string
		cur   CodeBlock
		lines []string
	)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		m := fenceRe.FindStringSubmatch(line)
		switch {
		case fence == "" && m != nil:
			fence = m[1]
			cur = CodeBlock{Info: strings.ToLower(m[2])}
			lines = lines[:0]
		case fence != "" && m != nil && m[2] == "" && strings.HasPrefix(strings.TrimSpace(line), fence):
			cur.Code = strings.Join(lines, "\n")
			out = append(out, cur)
			fence = ""
		case fence != "":
			lines = append(lines, line)
		}
	}
	if fence != "" {
		cur.Code = strings.Join(lines, "\n")
		out = append(out, cur)
	}
	return out
}

// ExampleBlocks picks the code and expected output out of a Markdown
// example: the first block not tagged "output" is the code, the first block
// tagged "output" is the expected output.
func ExampleBlocks(body string) (code, lang, output string, ok bool) {
	var haveCode, haveOutput bool
	for _, b := range FencedBlocks(body) {
		if b.Info == "output" {
			if !haveOutput {
				output, haveOutput = b.Code, true
			}
			continue
		}
		if !haveCode {
			code, lang, haveCode = b.Code, b.Info, true
		}
	}
	return code, lang, output, haveCode
}
