package loader

import (
	"fmt"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/parser"
	"github.com/starford/coursebook/internal/storage"
)

// Expected-output files sit next to an example and share its stem.
var outputExts = []string{".out", ".expected"}

var languages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".rs":   "rust",
	".rb":   "ruby",
	".java": "java",
	".kt":   "kotlin",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cs":   "csharp",
	".sh":   "bash",
	".sql":  "sql",
	".md":   "markdown",
	".txt":  "text",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
}

func languageOf(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if lang, ok := languages[ext]; ok {
		return lang
	}
	return strings.TrimPrefix(ext, ".")
}

func stem(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func isOutputFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, o := range outputExts {
		if ext == o {
			return true
		}
	}
	return false
}

func visible(name string) bool {
	return !strings.HasPrefix(name, ".")
}

func loadExamples(store storage.Provider, m *models.Module, files map[string]string) error {
	metas, err := store.Files(path.Join(m.Dir, ExamplesDir))
	if err != nil {
		return err
	}
	outputs := make(map[string]string)
	for _, f := range metas {
		if visible(f.Name) && isOutputFile(f.Name) {
			data, err := store.Read(f.Path)
			if err != nil {
				return err
			}
			files[f.Path] = f.Checksum
			if _, seen := outputs[stem(f.Name)]; !seen {
				outputs[stem(f.Name)] = string(data)
			}
		}
	}
	for _, f := range metas {
		if !visible(f.Name) || isOutputFile(f.Name) {
			continue
		}
		data, err := store.Read(f.Path)
		if err != nil {
			return err
		}
		files[f.Path] = f.Checksum
		ex := models.Example{
			Name:           f.Name,
			Path:           f.Path,
			Language:       languageOf(f.Name),
			Code:           string(data),
			ExpectedOutput: outputs[stem(f.Name)],
		}
		if ex.Language == "markdown" {
			res, err := parser.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}
			ex.Code = res.Body
			if code, lang, out, ok := parser.ExampleBlocks(res.Body); ok {
				ex.Code, ex.Language = code, lang
				if out != "" {
					ex.ExpectedOutput = out
				}
			}
		}
		m.Examples = append(m.Examples, ex)
	}
	return nil
}

func loadSolutions(store storage.Provider, m *models.Module, files map[string]string) error {
	metas, err := store.Files(path.Join(m.Dir, SolutionsDir))
	if err != nil {
		return err
	}
	for _, f := range metas {
		if !visible(f.Name) {
			continue
		}
		data, err := store.Read(f.Path)
		if err != nil {
			return err
		}
		files[f.Path] = f.Checksum
		sol := models.Solution{
			Name:     f.Name,
			Path:     f.Path,
			Language: languageOf(f.Name),
			Code:     string(data),
		}
		if sol.Language == "markdown" {
			res, err := parser.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}
			sol.Code = res.Body
		}
		m.Solutions = append(m.Solutions, sol)
	}
	return nil
}

// loadExercises reads prompts and pairs each with a solution: the one named
// by the "solution" front matter key, otherwise the first solution sharing
// the exercise's file stem. Must run after loadSolutions.
func loadExercises(store storage.Provider, m *models.Module, files map[string]string, warn func(string, error)) error {
	metas, err := store.Files(path.Join(m.Dir, ExercisesDir))
	if err != nil {
		return err
	}
	byName := make(map[string]struct{}, len(m.Solutions))
	byStem := make(map[string]string, len(m.Solutions))
	for _, s := range m.Solutions {
		byName[s.Name] = struct{}{}
		if _, seen := byStem[stem(s.Name)]; !seen {
			byStem[stem(s.Name)] = s.Name
		}
	}

	for _, f := range metas {
		if !visible(f.Name) {
			continue
		}
		data, err := store.Read(f.Path)
		if err != nil {
			return err
		}
		files[f.Path] = f.Checksum
		res, err := parser.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
		ex := models.Exercise{
			Name:   f.Name,
			Path:   f.Path,
			Title:  res.Title,
			Prompt: res.Body,
		}
		if ex.Title == "" {
			ex.Title = stem(f.Name)
		}
		if named, ok := res.Frontmatter["solution"].(string); ok && named != "" {
			named = path.Base(named)
			if _, exists := byName[named]; exists {
				ex.Solution = named
			} else {
				warn(f.Path, fmt.Errorf("%w: %s: solution %q not found in %s",
					apperr.ErrMissingSolution, f.Path, named, SolutionsDir))
			}
		} else {
			ex.Solution = byStem[stem(f.Name)]
		}
		m.Exercises = append(m.Exercises, ex)
	}
	return nil
}

var httpURL = validation.NewStringRule(func(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}, "must be an http or https URL")

// loadResources parses the resource index. Entries with an invalid URL and
// empty list items are skipped with a MalformedResource warning.
func loadResources(p string, data []byte, warn func(string, error)) []models.ResourceLink {
	entries, malformed := parser.ParseResources(data)
	for _, n := range malformed {
		loc := fmt.Sprintf("%s:%d", p, n)
		warn(loc, fmt.Errorf("%w: %s: empty entry", apperr.ErrMalformedResource, loc))
	}
	out := []models.ResourceLink{}
	for _, e := range entries {
		if e.URL != "" {
			if err := validation.Validate(e.URL, is.URL, httpURL); err != nil {
				loc := fmt.Sprintf("%s:%d", p, e.Line)
				warn(loc, fmt.Errorf("%w: %s: url %q: %v", apperr.ErrMalformedResource, loc, e.URL, err))
				continue
			}
		}
		out = append(out, models.ResourceLink{
			Title:    e.Title,
			URL:      e.URL,
			Category: e.Category,
		})
	}
	return out
}
