package parser

import (
	"strings"
	"testing"
)

const sampleChecklist = `# Progress

- [x] Install the toolchain

## Basics
- [x] Variables
- [ ] Control flow
* [X] Functions
- forgot the marker
1. [ ] Closures

Some prose that is not an item.

` + "```" + `
- [ ] inside a fence
` + "```" + `
`

func TestParseChecklist_Sections(t *testing.T) {
	items, malformed := ParseChecklist([]byte(sampleChecklist))
	if len(items) != 5 {
		t.Fatalf("len(items) = %d, want 5: %+v", len(items), items)
	}
	if items[0].Section != "Progress" || !items[0].Done || items[0].Label != "Install the toolchain" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[2].Section != "Basics" || items[2].Done || items[2].Label != "Control flow" {
		t.Errorf("item 2 = %+v", items[2])
	}
	if !items[3].Done {
		t.Errorf("uppercase X should count as done: %+v", items[3])
	}
	if items[4].Label != "Closures" {
		t.Errorf("numbered items should parse: %+v", items[4])
	}
	if len(malformed) != 1 || malformed[0] != 9 {
		t.Errorf("malformed = %v, want [9]", malformed)
	}
}

func TestParseChecklist_DefaultSection(t *testing.T) {
	items, _ := ParseChecklist([]byte("- [ ] before any heading\n"))
	if len(items) != 1 || items[0].Section != DefaultSection {
		t.Errorf("items = %+v", items)
	}
}

func TestParseChecklist_LineNumbersAfterFrontmatter(t *testing.T) {
	data := []byte("---\nlearner: sam\n---\n\n- [x] one\n")
	items, _ := ParseChecklist(data)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d", len(items))
	}
	if items[0].Line != 5 {
		t.Errorf("line = %d, want 5", items[0].Line)
	}
}

func TestParseChecklist_EmptyLabelMalformed(t *testing.T) {
	_, malformed := ParseChecklist([]byte("- [x]\n- [ ]   \n"))
	if len(malformed) != 2 {
		t.Errorf("malformed = %v, want 2 entries", malformed)
	}
}

func TestSetChecked(t *testing.T) {
	data := []byte("# P\n- [ ] one\n  * [x] two\n")
	out, ok := SetChecked(data, 2, true)
	if !ok {
		t.Fatal("expected line 2 to be an item")
	}
	out, ok = SetChecked(out, 3, false)
	if !ok {
		t.Fatal("expected line 3 to be an item")
	}
	want := "# P\n- [x] one\n  * [ ] two\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSetChecked_NotAnItem(t *testing.T) {
	data := []byte("# P\n- plain\n")
	for _, line := range []int{0, 1, 2, 99} {
		if _, ok := SetChecked(data, line, true); ok {
			t.Errorf("line %d should not be toggleable", line)
		}
	}
}

func TestSetChecked_IgnoresFencedLines(t *testing.T) {
	data := []byte("## A\n- [ ] real\n```md\n- [ ] sample inside fence\n```\n")
	if _, ok := SetChecked(data, 4, true); ok {
		t.Error("a list line inside a code fence is not an item")
	}
	out, ok := SetChecked(data, 2, true)
	if !ok {
		t.Fatal("line 2 should be an item")
	}
	if !strings.Contains(string(out), "- [ ] sample inside fence") {
		t.Errorf("fenced sample was modified: %q", out)
	}
}

func TestSetChecked_EmptyLabel(t *testing.T) {
	if _, ok := SetChecked([]byte("- [ ]\n"), 1, true); ok {
		t.Error("an item without a label is malformed, not toggleable")
	}
}

func TestSetChecked_RoundTripsThroughParse(t *testing.T) {
	out, ok := SetChecked([]byte(sampleChecklist), 6, false)
	if !ok {
		t.Fatal("line 6 should be an item")
	}
	items, _ := ParseChecklist(out)
	for _, it := range items {
		if it.Line == 6 && it.Done {
			t.Error("item should be unchecked after SetChecked")
		}
	}
	if strings.Count(string(out), "\n") != strings.Count(sampleChecklist, "\n") {
		t.Error("line count changed")
	}
}
