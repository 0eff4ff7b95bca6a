package index

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/coursebook/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "coursebook-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleCorpus() *models.Corpus {
	return &models.Corpus{Modules: []models.Module{
		{
			ID: "intro", Ordinal: 1, Title: "Intro", Level: models.LevelBeginner, Dir: "01-intro",
			Theory:   "Install the toolchain.",
			Checksum: "c1",
			Examples: []models.Example{{Name: "hello.go", Path: "01-intro/examples/hello.go", Code: "fmt.Println(\"hello\")"}},
		},
		{
			ID: "concurrency", Ordinal: 2, Title: "Concurrency", Level: models.LevelAdvanced, Dir: "02-concurrency",
			Theory:    "Goroutines and channels.",
			Tags:      []string{"goroutines"},
			Checksum:  "c2",
			Exercises: []models.Exercise{{Name: "pipeline.md", Path: "02-concurrency/exercises/pipeline.md", Title: "Pipeline", Prompt: "Build a pipeline."}},
			Solutions: []models.Solution{{Name: "pipeline.go", Path: "02-concurrency/solutions/pipeline.go", Code: "package main // fanout"}},
		},
	}}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM modules`).Scan(&count); err != nil {
		t.Fatalf("modules table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := ModuleRow{ID: "intro", Ordinal: 1, Title: "Intro", Checksum: "abc123", Tags: []string{"go"}, UpdatedAt: time.Now()}
	if err := db.UpsertModule(row, []Document{{Path: "01-intro", Kind: KindTheory, Body: "hello"}}); err != nil {
		t.Fatalf("UpsertModule: %v", err)
	}
	cs, err := db.GetChecksum("intro")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestUpsertReplacesDocuments(t *testing.T) {
	db := testDB(t)
	row := ModuleRow{ID: "m", Ordinal: 1, Checksum: "1"}
	_ = db.UpsertModule(row, []Document{{Path: "m/examples/old.go", Kind: KindExample, Body: "oldword"}})
	row.Checksum = "2"
	_ = db.UpsertModule(row, []Document{{Path: "m/examples/new.go", Kind: KindExample, Body: "newword"}})

	var count int
	_ = db.conn.QueryRow(`SELECT count(*) FROM documents WHERE module_id = 'm'`).Scan(&count)
	if count != 1 {
		t.Errorf("documents = %d, want 1", count)
	}
	results, _ := db.Search("oldword", 10)
	if len(results) != 0 {
		t.Errorf("stale document still searchable: %+v", results)
	}
}

func TestDeleteModule(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertModule(ModuleRow{ID: "del", Ordinal: 1, Checksum: "x"}, []Document{{Path: "del", Kind: KindTheory, Body: "vanishing"}})

	if err := db.DeleteModule("del"); err != nil {
		t.Fatalf("DeleteModule: %v", err)
	}
	cs, _ := db.GetChecksum("del")
	if cs != "" {
		t.Errorf("deleted module still has checksum %q", cs)
	}
	results, _ := db.Search("vanishing", 10)
	if len(results) != 0 {
		t.Errorf("deleted module still searchable: %+v", results)
	}
}

func TestDeleteModule_ReportsFailure(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertModule(ModuleRow{ID: "keep", Ordinal: 1, Checksum: "k1"}, nil); err != nil {
		t.Fatalf("UpsertModule: %v", err)
	}
	if _, err := db.conn.Exec(`DROP TABLE documents`); err != nil {
		t.Fatalf("drop documents: %v", err)
	}

	if err := db.DeleteModule("keep"); err == nil {
		t.Fatal("expected an error when documents cannot be deleted")
	}
	cs, err := db.GetChecksum("keep")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "k1" {
		t.Errorf("module row should survive a failed delete, checksum = %q", cs)
	}
}

func TestGetChecksum_ClosedDB(t *testing.T) {
	db := testDB(t)
	db.Close()
	if _, err := db.GetChecksum("any"); err == nil {
		t.Error("expected an error from a closed database")
	}
}

func TestListModules_Ordered(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertModule(ModuleRow{ID: "b", Ordinal: 2, Tags: []string{"x"}}, nil)
	_ = db.UpsertModule(ModuleRow{ID: "a", Ordinal: 1}, nil)

	rows, err := db.ListModules()
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "a" || rows[1].ID != "b" {
		t.Fatalf("rows = %+v", rows)
	}
	if len(rows[1].Tags) != 1 || rows[1].Tags[0] != "x" {
		t.Errorf("tags = %v", rows[1].Tags)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	if err := Sync(db, sampleCorpus(), quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	results, err := db.Search("fanout", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v, want 1 hit", results)
	}
	r := results[0]
	if r.ModuleID != "concurrency" || r.Kind != KindSolution || r.Path != "02-concurrency/solutions/pipeline.go" {
		t.Errorf("hit = %+v", r)
	}
}

func TestSync_UpsertsChangedAndRemovesStale(t *testing.T) {
	db := testDB(t)
	c := sampleCorpus()
	if err := Sync(db, c, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	sums, _ := db.AllChecksums()
	if len(sums) != 2 || sums["intro"] != "c1" || sums["concurrency"] != "c2" {
		t.Fatalf("checksums = %v", sums)
	}

	c.Modules = c.Modules[:1]
	c.Modules[0].Checksum = "c1b"
	c.Modules[0].Theory = "Rewritten theory."
	if err := Sync(db, c, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	sums, _ = db.AllChecksums()
	if len(sums) != 1 || sums["intro"] != "c1b" {
		t.Errorf("checksums = %v", sums)
	}
	results, _ := db.Search("Rewritten", 10)
	if len(results) != 1 || results[0].Kind != KindTheory {
		t.Errorf("results = %+v", results)
	}
}
