// Package testutil provides shared test helpers for setting up corpora and databases.
package testutil

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/coursebook/internal/index"
	"github.com/starford/coursebook/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "coursebook-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteFiles writes files (relative path → content) under root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// SampleFiles is a three-module corpus with a ten-item checklist, five of
// them checked, and a small resource index.
func SampleFiles() map[string]string {
	var cl strings.Builder
	cl.WriteString("# Progress\n\n## Basics\n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&cl, "- [x] Lesson %d\n", i)
	}
	cl.WriteString("\n## Concurrency\n")
	for i := 6; i <= 10; i++ {
		fmt.Fprintf(&cl, "- [ ] Lesson %d\n", i)
	}

	return map[string]string{
		"README.md": "# Learning Go\n\nA self-paced course.\n",
		"01-introduction/theory.md": "---\ntitle: Introduction\nlevel: beginner\ntags: [setup]\n---\n" +
			"# Introduction\n\nInstall the toolchain and say hello.\n",
		"01-introduction/examples/hello.go":  "package main\n\nimport \"fmt\"\n\nfunc main() { fmt.Println(\"hello\") }\n",
		"01-introduction/examples/hello.out": "hello\n",
		"01-introduction/exercises/greet.md": "# Greet\n\nPrint your name.\n",
		"01-introduction/solutions/greet.go": "package main\n\nfunc main() { println(\"gopher\") }\n",
		"02-basics/theory.md": "---\nlevel: beginner\n---\n" +
			"# Basics\n\nVariables, types and control flow.\n",
		"02-basics/examples/loop.md": "# Loop\n\n```go\nfor i := 0; i < 3; i++ { fmt.Println(i) }\n```\n\n```output\n0\n1\n2\n```\n",
		"03-concurrency/theory.md": "---\ntitle: Concurrency\nlevel: advanced\n---\n" +
			"Goroutines and channels. uniqueword\n",
		"03-concurrency/exercises/pipeline.md": "---\ntitle: Pipeline\nsolution: pipeline.go\n---\nBuild a three-stage pipeline.\n",
		"03-concurrency/solutions/pipeline.go": "package main\n",
		"assets/logo.txt":                      "not a module",
		"checklist.md":                         cl.String(),
		"resources.md":                         "# Resources\n\n## Docs\n- [Go Tour](https://go.dev/tour/)\n\n## Books\n- *The Go Programming Language*\n",
	}
}

// SampleCorpus writes SampleFiles into a temp directory and returns its
// path together with a storage.Provider over it.
func SampleCorpus(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, SampleFiles())
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// Logger returns a logger that only records errors, into a discarded buffer.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}
