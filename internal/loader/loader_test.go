package loader

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/storage"
	"github.com/starford/coursebook/internal/testutil"
)

func loadFiles(t *testing.T, files map[string]string) *models.Corpus {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFiles(t, root, files)
	c, err := LoadDir(root, DefaultOptions(), testutil.Logger())
	require.NoError(t, err)
	return c
}

func moduleIDs(c *models.Corpus) []string {
	ids := make([]string, len(c.Modules))
	for i, m := range c.Modules {
		ids[i] = m.ID
	}
	return ids
}

func TestLoad_SampleCorpus(t *testing.T) {
	root, _ := testutil.SampleCorpus(t)
	c, err := LoadDir(root, DefaultOptions(), testutil.Logger())
	require.NoError(t, err)

	require.Len(t, c.Modules, 3)
	assert.Equal(t, []string{"introduction", "basics", "concurrency"}, moduleIDs(c))
	for i, m := range c.Modules {
		assert.Equal(t, i+1, m.Ordinal)
	}
	assert.Empty(t, c.Warnings)
	assert.False(t, HasStructuralDefects(c))

	require.NotNil(t, c.Checklist)
	assert.Equal(t, models.Progress{Done: 5, Total: 10}, c.Checklist.Overall)
	assert.Equal(t, 50.0, c.Checklist.Overall.Percent())

	assert.Contains(t, c.Readme, "A self-paced course.")
	require.Len(t, c.Resources, 2)
	assert.Equal(t, "Docs", c.Resources[0].Category)
	assert.Equal(t, "", c.Resources[1].URL)
}

func TestLoad_ModuleContents(t *testing.T) {
	root, _ := testutil.SampleCorpus(t)
	c, err := LoadDir(root, DefaultOptions(), testutil.Logger())
	require.NoError(t, err)

	intro, ok := c.Module("introduction")
	require.True(t, ok)
	assert.Equal(t, "Introduction", intro.Title)
	assert.Equal(t, models.LevelBeginner, intro.Level)
	assert.Equal(t, []string{"setup"}, intro.Tags)
	require.Len(t, intro.Examples, 1)
	assert.Equal(t, "go", intro.Examples[0].Language)
	assert.Equal(t, "hello\n", intro.Examples[0].ExpectedOutput)
	require.Len(t, intro.Exercises, 1)
	assert.Equal(t, "Greet", intro.Exercises[0].Title)
	assert.Equal(t, "greet.go", intro.Exercises[0].Solution)
	assert.NotEmpty(t, intro.Checksum)

	basics, ok := c.Module("basics")
	require.True(t, ok)
	assert.Equal(t, "Basics", basics.Title, "title falls back to the H1")
	require.Len(t, basics.Examples, 1)
	assert.Equal(t, "go", basics.Examples[0].Language)
	assert.Equal(t, "0\n1\n2", basics.Examples[0].ExpectedOutput)

	conc, ok := c.Module("concurrency")
	require.True(t, ok)
	assert.Equal(t, models.LevelAdvanced, conc.Level)
	assert.Equal(t, "pipeline.go", conc.Exercises[0].Solution)
}

func TestLoad_MissingTheoryExcluded(t *testing.T) {
	files := testutil.SampleFiles()
	delete(files, "02-basics/theory.md")
	c := loadFiles(t, files)

	assert.Equal(t, []string{"introduction", "concurrency"}, moduleIDs(c))
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, KindMalformedModule, c.Warnings[0].Kind)
	assert.Equal(t, "02-basics", c.Warnings[0].Path)
	assert.Contains(t, c.Warnings[0].Message, "theory document theory.md missing")
	assert.True(t, HasStructuralDefects(c))
}

func TestLoad_DuplicateOrdinal(t *testing.T) {
	files := testutil.SampleFiles()
	files["02-generics/theory.md"] = "# Generics\n"
	c := loadFiles(t, files)

	// "02-basics" sorts before "02-generics" and keeps the position.
	assert.Equal(t, []string{"introduction", "basics", "concurrency"}, moduleIDs(c))
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, KindDuplicateOrdinal, c.Warnings[0].Kind)
	assert.Equal(t, "02-generics", c.Warnings[0].Path)
	assert.Contains(t, c.Warnings[0].Message, "already claimed by 02-basics")
}

func TestLoad_FrontmatterOrdinalOverridesPrefix(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"a-first/theory.md":  "---\nordinal: 2\n---\n# A\n",
		"b-second/theory.md": "---\nordinal: \"1\"\n---\n# B\n",
	})
	assert.Equal(t, []string{"b-second", "a-first"}, moduleIDs(c))
}

func TestLoad_InvalidFrontmatter(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"noprefix/theory.md":    "# No ordinal anywhere\n",
		"01-level/theory.md":    "---\nlevel: expert\n---\n# Bad level\n",
		"02-zero/theory.md":     "---\nordinal: -3\n---\n# Negative\n",
		"03-badid/theory.md":    "---\nid: Has Spaces\n---\n# Bad id\n",
		"04-fraction/theory.md": "---\nordinal: 4.5\n---\n# Fraction\n",
		"05-ok/theory.md":       "# Fine\n",
	})

	assert.Equal(t, []string{"ok"}, moduleIDs(c))
	require.Len(t, c.Warnings, 5)
	for _, w := range c.Warnings {
		assert.Equal(t, KindMalformedModule, w.Kind, w.Message)
	}
}

func TestLoad_BrokenFrontmatterYAML(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"01-intro/theory.md": "# One\n",
		"05-late/theory.md":  "---\nordinal: 2\nlevel: advanced\ntitle: \"never closed\n---\n# Late\n",
	})

	assert.Equal(t, []string{"intro"}, moduleIDs(c))
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, KindMalformedModule, c.Warnings[0].Kind)
	assert.Equal(t, "05-late", c.Warnings[0].Path)
	assert.Contains(t, c.Warnings[0].Message, "front matter")
}

func TestLoad_BrokenExerciseFrontmatter(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"01-intro/theory.md":      "# One\n",
		"01-intro/exercises/a.md": "---\nsolution: [unclosed\n---\nDo it.\n",
		"02-basics/theory.md":     "# Two\n",
	})

	assert.Equal(t, []string{"basics"}, moduleIDs(c))
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, KindMalformedModule, c.Warnings[0].Kind)
	assert.Contains(t, c.Warnings[0].Message, "01-intro/exercises/a.md")
}

func TestLoad_TitleFallsBackToID(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"01-setup_notes/theory.md": "---\nid: getting-started\n---\nNo heading here.\n",
		"02-plain/theory.md":       "Prose only.\n",
	})
	require.Len(t, c.Modules, 2)
	assert.Equal(t, "getting-started", c.Modules[0].Title)
	assert.Equal(t, "plain", c.Modules[1].Title)
}

func TestLoad_DuplicateID(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"01-intro/theory.md": "# One\n",
		"02-intro/theory.md": "# Two\n",
	})
	assert.Equal(t, []string{"intro"}, moduleIDs(c))
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, KindMalformedModule, c.Warnings[0].Kind)
}

func TestLoad_SkipsIgnoredAndHiddenDirs(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"01-intro/theory.md": "# One\n",
		".git/config":        "x",
		"_drafts/theory.md":  "# Draft\n",
		"images/a.txt":       "x",
	})
	assert.Equal(t, []string{"intro"}, moduleIDs(c))
	assert.Empty(t, c.Warnings)
}

func TestLoad_MissingNamedSolution(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"01-intro/theory.md":        "# One\n",
		"01-intro/exercises/ex1.md": "---\nsolution: nope.go\n---\nDo it.\n",
	})
	require.Len(t, c.Modules, 1)
	require.Len(t, c.Modules[0].Exercises, 1)
	assert.Empty(t, c.Modules[0].Exercises[0].Solution)
	require.Len(t, c.Warnings, 1)
	assert.Equal(t, KindMissingSolution, c.Warnings[0].Kind)
	assert.False(t, HasStructuralDefects(c))
}

func TestLoad_MalformedChecklistAndResources(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"01-intro/theory.md": "# One\n",
		"checklist.md":       "- [x] one\n- two\n",
		"resources.md":       "- [Bad](ftp://example.org)\n- [Good](https://example.org)\n",
	})
	require.NotNil(t, c.Checklist)
	assert.Equal(t, 1, c.Checklist.Overall.Total)
	require.Len(t, c.Resources, 1)
	assert.Equal(t, "Good", c.Resources[0].Title)

	kinds := map[string]int{}
	for _, w := range c.Warnings {
		kinds[w.Kind]++
	}
	assert.Equal(t, map[string]int{KindMalformedLine: 1, KindMalformedResource: 1}, kinds)
	assert.False(t, HasStructuralDefects(c))
}

func TestLoad_Deterministic(t *testing.T) {
	root, _ := testutil.SampleCorpus(t)
	first, err := LoadDir(root, DefaultOptions(), testutil.Logger())
	require.NoError(t, err)
	second, err := LoadDir(root, DefaultOptions(), testutil.Logger())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestLoad_OrdinalsUniqueAndAscending(t *testing.T) {
	c := loadFiles(t, map[string]string{
		"10-ten/theory.md":   "# Ten\n",
		"2-two/theory.md":    "# Two\n",
		"07-seven/theory.md": "# Seven\n",
		"7-again/theory.md":  "# Again\n",
	})
	seen := map[int]bool{}
	for i, m := range c.Modules {
		assert.False(t, seen[m.Ordinal], "duplicate ordinal %d", m.Ordinal)
		seen[m.Ordinal] = true
		if i > 0 {
			assert.Less(t, c.Modules[i-1].Ordinal, m.Ordinal)
		}
	}
	assert.Len(t, c.Modules, 3)
}

func TestLoad_RootMissing(t *testing.T) {
	_, err := LoadDir(t.TempDir()+"/nope", DefaultOptions(), testutil.Logger())
	assert.Error(t, err)
}

func TestLoad_ThroughProvider(t *testing.T) {
	_, store := testutil.SampleCorpus(t)
	var p storage.Provider = store
	c, err := Load(p, DefaultOptions(), testutil.Logger())
	require.NoError(t, err)
	assert.Len(t, c.Modules, 3)
	assert.Empty(t, c.Root, "Load over a bare provider leaves Root unset")
}
