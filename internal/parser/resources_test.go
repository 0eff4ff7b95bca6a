package parser

import "testing"

func TestParseResources(t *testing.T) {
	data := []byte(`# Resources

## Documentation
- [Tour](https://go.dev/tour/) interactive
- <https://pkg.go.dev> — package docs

## Books
- *The Go Programming Language*
-
`)
	entries, malformed := ParseResources(data)
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3: %+v", len(entries), entries)
	}
	if entries[0] != (ResourceEntry{Line: 4, Category: "Documentation", Title: "Tour", URL: "https://go.dev/tour/"}) {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].URL != "https://pkg.go.dev" || entries[1].Title != "package docs" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
	if entries[2].Category != "Books" || entries[2].Title != "The Go Programming Language" || entries[2].URL != "" {
		t.Errorf("entry 2 = %+v", entries[2])
	}
	if len(malformed) != 0 {
		t.Errorf("malformed = %v", malformed)
	}
}

func TestParseResources_AutolinkWithoutTitle(t *testing.T) {
	entries, _ := ParseResources([]byte("- <https://example.org>\n"))
	if len(entries) != 1 || entries[0].Title != "https://example.org" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseResources_EmptyLinkTitle(t *testing.T) {
	entries, malformed := ParseResources([]byte("- **\n"))
	if len(entries) != 0 || len(malformed) != 1 {
		t.Errorf("entries = %+v malformed = %v", entries, malformed)
	}
}
