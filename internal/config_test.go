package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if !cfg.Index.Enabled() {
		t.Error("default config should enable the index")
	}
}

func TestCorpusConfig_Options(t *testing.T) {
	cfg := NewDefaultConfig()
	opts := cfg.Corpus.Options()
	if opts.TheoryFile != "theory.md" || opts.ChecklistFile != "checklist.md" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestLoaderOptions_IgnoresOutputInsideRoot(t *testing.T) {
	root := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Corpus.Root = root
	cfg.Site.Output = filepath.Join(root, "public", "html")
	cfg.Index.Path = "data/index.db"

	opts := cfg.LoaderOptions()
	if !contains(opts.Ignore, "public") {
		t.Errorf("output dir should be ignored: %v", opts.Ignore)
	}
	if !contains(opts.Ignore, "data") {
		t.Errorf("index dir should be ignored: %v", opts.Ignore)
	}
	if contains(cfg.Corpus.Ignore, "public") {
		t.Error("LoaderOptions must not modify the configured ignore list")
	}
}

func TestLoaderOptions_OutputOutsideRoot(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Corpus.Root = t.TempDir()
	cfg.Site.Output = t.TempDir()
	cfg.Index.Path = ""

	if got, want := len(cfg.LoaderOptions().Ignore), len(cfg.Corpus.Ignore); got != want {
		t.Errorf("ignore list grew to %d entries, want %d", got, want)
	}
}

func TestIndexPath_RelativeToRoot(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Corpus.Root = "/srv/course"
	if got, want := cfg.IndexPath(), filepath.Join("/srv/course", ".coursebook", "index.db"); got != want {
		t.Errorf("IndexPath() = %q, want %q", got, want)
	}
	cfg.Index.Path = "/var/lib/coursebook.db"
	if got := cfg.IndexPath(); got != "/var/lib/coursebook.db" {
		t.Errorf("absolute path changed: %q", got)
	}
	cfg.Index.Path = ""
	if got := cfg.IndexPath(); got != "" {
		t.Errorf("disabled index should have no path, got %q", got)
	}
}

func TestCorpusConfig_RootRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Corpus.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty corpus root should fail validation")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("out-of-range port should fail validation")
	}
	cfg.App.HTTP.Port = 9090
	if got := cfg.App.HTTP.Address(); got != ":9090" {
		t.Errorf("address = %q", got)
	}
}

func TestIndexConfig_Disabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Index.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty index path is allowed: %v", err)
	}
	if cfg.Index.Enabled() {
		t.Error("empty path should disable the index")
	}
}
