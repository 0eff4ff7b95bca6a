package loader

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/coursebook/internal/testutil"
)

func TestReport_Clean(t *testing.T) {
	root, _ := testutil.SampleCorpus(t)
	c, err := LoadDir(root, DefaultOptions(), testutil.Logger())
	require.NoError(t, err)

	r := NewReport(c)
	assert.Equal(t, 3, r.Modules)
	assert.Equal(t, map[string]int{"beginner": 2, "advanced": 1}, r.Levels)
	assert.False(t, r.Structural)
	require.NotNil(t, r.Progress)
	assert.Equal(t, 5, r.Progress.Done)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Equal(t, "ok: 3 modules, 0 warnings\n", buf.String())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"warnings":[]`)
}

func TestReport_Structural(t *testing.T) {
	files := testutil.SampleFiles()
	files["02-generics/theory.md"] = "# Generics\n"
	delete(files, "03-concurrency/theory.md")
	c := loadFiles(t, files)

	r := NewReport(c)
	assert.True(t, r.Structural)
	assert.Equal(t, map[string]int{KindDuplicateOrdinal: 1, KindMalformedModule: 1}, r.Counts)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "FAILED: 2 modules, 2 warnings, DuplicateOrdinal=1, MalformedModule=1")
	assert.Contains(t, out, "already claimed by 02-basics")
}
