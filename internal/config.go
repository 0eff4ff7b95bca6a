package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/coursebook/internal/loader"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Corpus CorpusConfig      `yaml:"corpus"`
	Site   SiteConfig        `yaml:"site"`
	Index  IndexConfig       `yaml:"index"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Corpus.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// LoaderOptions returns the loader options for the corpus, additionally
// ignoring the site output and index directories when they live inside the
// corpus root.
func (c *Config) LoaderOptions() loader.Options {
	opts := c.Corpus.Options()
	opts.Ignore = append([]string(nil), opts.Ignore...)
	candidates := []string{c.Site.Output}
	if p := c.IndexPath(); p != "" {
		candidates = append(candidates, filepath.Dir(p))
	}
	for _, p := range candidates {
		if dir := topDirWithin(c.Corpus.Root, p); dir != "" {
			opts.Ignore = append(opts.Ignore, dir)
		}
	}
	return opts
}

// IndexPath returns the index database path. A relative path is resolved
// against the corpus root. Empty means no index.
func (c *Config) IndexPath() string {
	if !c.Index.Enabled() || filepath.IsAbs(c.Index.Path) {
		return c.Index.Path
	}
	return filepath.Join(c.Corpus.Root, c.Index.Path)
}

// topDirWithin returns the first path element of p relative to root, or ""
// when p is root itself or lies outside it.
func topDirWithin(root, p string) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return ""
	}
	absP, err := filepath.Abs(p)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absRoot, absP)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CorpusConfig locates the corpus and names its well-known files.
type CorpusConfig struct {
	Root          string   `yaml:"root"`
	TheoryFile    string   `yaml:"theory_file"`
	ReadmeFile    string   `yaml:"readme_file"`
	ChecklistFile string   `yaml:"checklist_file"`
	ResourcesFile string   `yaml:"resources_file"`
	Ignore        []string `yaml:"ignore"`
}

// Validate validates the corpus configuration.
func (c *CorpusConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.TheoryFile, validation.Required),
		validation.Field(&c.ChecklistFile, validation.Required),
		validation.Field(&c.ResourcesFile, validation.Required),
	)
}

// Options converts the configuration into loader options.
func (c *CorpusConfig) Options() loader.Options {
	return loader.Options{
		TheoryFile:    c.TheoryFile,
		ReadmeFile:    c.ReadmeFile,
		ChecklistFile: c.ChecklistFile,
		ResourcesFile: c.ResourcesFile,
		Ignore:        c.Ignore,
	}
}

// SiteConfig holds static site configuration.
type SiteConfig struct {
	Title  string `yaml:"title"`
	Output string `yaml:"output"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Output, validation.Required),
	)
}

// IndexConfig holds the search index location. A relative path is taken
// from the corpus root. An empty path disables the index and search falls
// back to scanning the in-memory corpus.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether a search index should be opened.
func (c *IndexConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local preview.
//   - "token": Bearer token authentication on /api; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	opts := loader.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Corpus: CorpusConfig{
			Root:          ".",
			TheoryFile:    opts.TheoryFile,
			ReadmeFile:    opts.ReadmeFile,
			ChecklistFile: opts.ChecklistFile,
			ResourcesFile: opts.ResourcesFile,
			Ignore:        opts.Ignore,
		},
		Site: SiteConfig{
			Title:  "Coursebook",
			Output: "./site",
		},
		Index: IndexConfig{
			Path: ".coursebook/index.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
