package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/coursebook/internal/models"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu      sync.Mutex
	changed [][]string
}

func (r *recorder) record(_ *models.Corpus, changed []string) {
	r.mu.Lock()
	r.changed = append(r.changed, changed)
	r.mu.Unlock()
}

func (r *recorder) saw(p string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, batch := range r.changed {
		for _, c := range batch {
			if c == p {
				return true
			}
		}
	}
	return false
}

func TestWatcher_ReloadsAndSyncs(t *testing.T) {
	root := t.TempDir()
	db := testDB(t)

	var reloads atomic.Int32
	reload := func() (*models.Corpus, error) {
		reloads.Add(1)
		return sampleCorpus(), nil
	}
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, root, reload, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "checklist.md"), []byte("- [ ] one\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.saw("checklist.md")
	}, "expected change callback for checklist.md")

	cs, _ := db.GetChecksum("intro")
	if cs != "c1" {
		t.Errorf("index not synced after reload, checksum = %q", cs)
	}
}

func TestWatcher_Debounces(t *testing.T) {
	root := t.TempDir()
	var reloads atomic.Int32
	reload := func() (*models.Corpus, error) {
		reloads.Add(1)
		return &models.Corpus{}, nil
	}
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, nil, root, reload, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		_ = os.WriteFile(filepath.Join(root, "theory.md"), []byte{byte('a' + i)}, 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.saw("theory.md")
	}, "expected change callback")
	time.Sleep(3 * Debounce)
	if n := reloads.Load(); n != 1 {
		t.Errorf("reloads = %d, want 1", n)
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	reload := func() (*models.Corpus, error) { return &models.Corpus{}, nil }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, nil, root, reload, quietLogger(), rec.record)
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(root, "04-generics")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "theory.md"), []byte("# Generics"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.saw("04-generics/theory.md")
	}, "file in new dir not seen by watcher")
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	cases := map[string]bool{
		".coursebook-tmp-123": true,
		".git/HEAD":           true,
		"01-intro/theory.md~": true,
		"01-intro/theory.md":  false,
		"checklist.md":        false,
		".":                   true,
	}
	for p, want := range cases {
		if got := ignored(p); got != want {
			t.Errorf("ignored(%q) = %v, want %v", p, got, want)
		}
	}
}
