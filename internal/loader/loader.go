// Package loader reads a course corpus from disk into an ordered sequence of
// modules, collecting structural defects as warnings instead of failing.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/checklist"
	"github.com/starford/coursebook/internal/checksum"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/parser"
	"github.com/starford/coursebook/internal/storage"
)

// Warning kinds.
const (
	KindMalformedModule   = "MalformedModule"
	KindDuplicateOrdinal  = "DuplicateOrdinal"
	KindMalformedResource = "MalformedResource"
	KindMissingSolution   = "MissingSolution"
	KindMalformedLine     = "MalformedChecklistLine"
)

// Sub-directories of a module.
const (
	ExamplesDir  = "examples"
	ExercisesDir = "exercises"
	SolutionsDir = "solutions"
)

var (
	dirPrefixRe = regexp.MustCompile(`^(\d+)[-_. ]+(.+)$`)
	moduleIDRe  = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// Options names the corpus files and the directories to skip.
type Options struct {
	TheoryFile    string
	ReadmeFile    string
	ChecklistFile string
	ResourcesFile string
	Ignore        []string
}

// DefaultOptions returns the conventional corpus layout.
func DefaultOptions() Options {
	return Options{
		TheoryFile:    "theory.md",
		ReadmeFile:    "README.md",
		ChecklistFile: "checklist.md",
		ResourcesFile: "resources.md",
		Ignore:        []string{"assets", "images", "static", "node_modules"},
	}
}

// LoadDir loads the corpus rooted at root.
func LoadDir(root string, opts Options, logger *slog.Logger) (*models.Corpus, error) {
	store, err := storage.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	corpus, err := Load(store, opts, logger)
	if err != nil {
		return nil, err
	}
	corpus.Root = store.Root()
	return corpus, nil
}

// Load scans every module candidate under the store root. Modules whose
// theory document is missing or whose front matter is invalid are excluded,
// as are later claimants of an ordinal already taken; each exclusion is
// recorded as a warning. The returned modules are sorted by ordinal. An
// error is returned only when the root itself cannot be listed.
func Load(store storage.Provider, opts Options, logger *slog.Logger) (*models.Corpus, error) {
	dirs, err := store.Dirs("")
	if err != nil {
		return nil, fmt.Errorf("loader: list root: %w", err)
	}

	corpus := &models.Corpus{
		Modules:  []models.Module{},
		Warnings: []models.Warning{},
	}
	warn := func(p string, err error) {
		logger.Warn("loader: corpus defect", slog.String("path", p), slog.String("error", err.Error()))
		corpus.Warnings = append(corpus.Warnings, models.Warning{
			Kind:    kindOf(err),
			Path:    p,
			Message: err.Error(),
		})
	}

	ordinals := make(map[int]string)
	ids := make(map[string]string)
	for _, dir := range dirs {
		if skipDir(dir, opts.Ignore) {
			continue
		}
		m, err := loadModule(store, dir, opts, warn)
		if err != nil {
			warn(dir, err)
			continue
		}
		if holder, taken := ordinals[m.Ordinal]; taken {
			warn(dir, fmt.Errorf("%w: %s: ordinal %d already claimed by %s",
				apperr.ErrDuplicateOrdinal, dir, m.Ordinal, holder))
			continue
		}
		if holder, taken := ids[m.ID]; taken {
			warn(dir, fmt.Errorf("%w: %s: id %q already used by %s",
				apperr.ErrMalformedModule, dir, m.ID, holder))
			continue
		}
		ordinals[m.Ordinal] = dir
		ids[m.ID] = dir
		corpus.Modules = append(corpus.Modules, *m)
		logger.Debug("loader: module loaded", slog.String("dir", dir), slog.Int("ordinal", m.Ordinal))
	}
	sort.Slice(corpus.Modules, func(i, j int) bool {
		return corpus.Modules[i].Ordinal < corpus.Modules[j].Ordinal
	})

	if data, ok := readOptional(store, opts.ReadmeFile, logger); ok {
		if res, err := parser.Parse(data); err == nil {
			corpus.Readme = res.Body
		} else {
			logger.Warn("loader: readme front matter ignored",
				slog.String("path", opts.ReadmeFile), slog.String("error", err.Error()))
			corpus.Readme = string(data)
		}
	}

	if data, ok := readOptional(store, opts.ChecklistFile, logger); ok {
		corpus.Checklist = checklist.Summarize(opts.ChecklistFile, data, logger)
		for _, n := range corpus.Checklist.Malformed {
			p := fmt.Sprintf("%s:%d", opts.ChecklistFile, n)
			corpus.Warnings = append(corpus.Warnings, models.Warning{
				Kind:    KindMalformedLine,
				Path:    p,
				Message: fmt.Errorf("%w: %s: missing [ ] marker or label", apperr.ErrMalformedLine, p).Error(),
			})
		}
	}

	if data, ok := readOptional(store, opts.ResourcesFile, logger); ok {
		corpus.Resources = loadResources(opts.ResourcesFile, data, warn)
	}

	logger.Info("loader: corpus loaded",
		slog.Int("modules", len(corpus.Modules)),
		slog.Int("warnings", len(corpus.Warnings)))
	return corpus, nil
}

// readOptional reads a corpus-level document that may be absent. A file
// that exists but cannot be read is logged and treated as absent.
func readOptional(store storage.Provider, p string, logger *slog.Logger) ([]byte, bool) {
	if p == "" || !store.Exists(p) {
		return nil, false
	}
	data, err := store.Read(p)
	if err != nil {
		logger.Warn("loader: read failed", slog.String("path", p), slog.String("error", err.Error()))
		return nil, false
	}
	return data, true
}

// HasStructuralDefects reports whether any warning is a MalformedModule or
// DuplicateOrdinal defect.
func HasStructuralDefects(c *models.Corpus) bool {
	for _, w := range c.Warnings {
		if w.Kind == KindMalformedModule || w.Kind == KindDuplicateOrdinal {
			return true
		}
	}
	return false
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, apperr.ErrDuplicateOrdinal):
		return KindDuplicateOrdinal
	case errors.Is(err, apperr.ErrMalformedResource):
		return KindMalformedResource
	case errors.Is(err, apperr.ErrMissingSolution):
		return KindMissingSolution
	case errors.Is(err, apperr.ErrMalformedLine):
		return KindMalformedLine
	default:
		return KindMalformedModule
	}
}

func skipDir(name string, ignore []string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	for _, ig := range ignore {
		if name == ig {
			return true
		}
	}
	return false
}

// loadModule reads one module directory. A returned error is always an
// ErrMalformedModule defect; missing solutions are reported through warn.
func loadModule(store storage.Provider, dir string, opts Options, warn func(string, error)) (*models.Module, error) {
	theoryPath := path.Join(dir, opts.TheoryFile)
	if !store.Exists(theoryPath) {
		return nil, fmt.Errorf("%w: %s: theory document %s missing", apperr.ErrMalformedModule, dir, opts.TheoryFile)
	}
	data, err := store.Read(theoryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read %s: %v", apperr.ErrMalformedModule, dir, opts.TheoryFile, err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrMalformedModule, dir, err)
	}

	prefix, rest := splitDirName(dir)

	ordinal, err := ordinalOf(res.Frontmatter, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrMalformedModule, dir, err)
	}

	id := parser.Slug(rest)
	if s, ok := res.Frontmatter["id"].(string); ok && strings.TrimSpace(s) != "" {
		id = strings.TrimSpace(s)
	}

	level := models.LevelBeginner
	if raw, ok := res.Frontmatter["level"]; ok {
		level = models.Level(strings.ToLower(strings.TrimSpace(fmt.Sprint(raw))))
	}

	title := res.Title
	if title == "" {
		title = id
	}

	m := &models.Module{
		ID:          id,
		Title:       title,
		Ordinal:     ordinal,
		Level:       level,
		Dir:         dir,
		Tags:        res.Tags,
		Frontmatter: res.Frontmatter,
		Theory:      res.Body,
		Examples:    []models.Example{},
		Exercises:   []models.Exercise{},
		Solutions:   []models.Solution{},
	}
	if err := validateModule(m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrMalformedModule, dir, err)
	}

	files := map[string]string{theoryPath: checksum.Sum(data)}
	if err := loadExamples(store, m, files); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrMalformedModule, dir, err)
	}
	if err := loadSolutions(store, m, files); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrMalformedModule, dir, err)
	}
	if err := loadExercises(store, m, files, warn); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrMalformedModule, dir, err)
	}
	m.Checksum = checksum.SumFiles(files)
	return m, nil
}

func validateModule(m *models.Module) error {
	levels := make([]interface{}, len(models.Levels))
	for i, l := range models.Levels {
		levels[i] = l
	}
	return validation.ValidateStruct(m,
		validation.Field(&m.ID, validation.Required, validation.Match(moduleIDRe).Error("must be lowercase letters, digits and dashes")),
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.Ordinal, validation.Required, validation.Min(1)),
		validation.Field(&m.Level, validation.Required, validation.In(levels...)),
	)
}

// splitDirName splits "03-concurrency" into ("03", "concurrency").
func splitDirName(dir string) (prefix, rest string) {
	if m := dirPrefixRe.FindStringSubmatch(dir); m != nil {
		return m[1], m[2]
	}
	return "", dir
}

// ordinalOf reads the "ordinal" front matter key, falling back to the
// numeric prefix of the directory name.
func ordinalOf(fm map[string]interface{}, prefix string) (int, error) {
	raw, ok := fm["ordinal"]
	if !ok {
		if prefix == "" {
			return 0, errors.New("ordinal: not set in front matter and directory has no numeric prefix")
		}
		return strconv.Atoi(prefix)
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("ordinal: %v is not an integer", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("ordinal: %q is not an integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("ordinal: %v is not an integer", raw)
	}
}
