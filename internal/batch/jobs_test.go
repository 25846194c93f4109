package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobs(t *testing.T) {
	content := `
defaults:
  scale: 2
  fix_navigation: true

jobs:
  - input: a.fvttadv
    output: out/a.fvttadv
  - input: /abs/b.fvttadv
    output: b-scaled.fvttadv
    scale: 1.1
    fix_navigation: false
    scale_drawing_size: true
`
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	tasks, err := ParseJobs(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, filepath.Join(dir, "a.fvttadv"), tasks[0].Input)
	assert.Equal(t, filepath.Join(dir, "out", "a.fvttadv"), tasks[0].Output)
	assert.Equal(t, "2", tasks[0].Scale.String())
	assert.False(t, tasks[0].Options.Encode.NavigationFromDescription)
	assert.False(t, tasks[0].Options.Scale.ScaleDrawingSize)

	assert.Equal(t, "/abs/b.fvttadv", tasks[1].Input)
	assert.Equal(t, "1.1", tasks[1].Scale.String())
	assert.True(t, tasks[1].Options.Encode.NavigationFromDescription)
	assert.True(t, tasks[1].Options.Scale.ScaleDrawingSize)
}

func TestParseJobsFromReaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty file", "", "empty"},
		{"no jobs", "defaults:\n  scale: 2\njobs: []\n", "no jobs"},
		{"missing output", "jobs:\n  - input: a.zip\n    scale: 2\n", "input and output are required"},
		{"no scale anywhere", "jobs:\n  - input: a.zip\n    output: b.zip\n", "no default scale"},
		{"scale out of range", "jobs:\n  - input: a.zip\n    output: b.zip\n    scale: 15\n", "outside"},
		{"scale not a number", "defaults:\n  scale: big\njobs: []\n", "not a number"},
		{"scale is a list", "defaults:\n  scale: [1]\njobs: []\n", "must be a number"},
		{"unknown key", "jobs:\n  - input: a.zip\n    output: b.zip\n    ratio: 2\n", "ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobsFromReader(strings.NewReader(tt.content), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveKeepsRelativePathsWithoutBaseDir(t *testing.T) {
	tasks, err := ParseJobsFromReader(strings.NewReader("defaults:\n  scale: 0.5\njobs:\n  - input: a.zip\n    output: b.zip\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "a.zip", tasks[0].Input)
	assert.Equal(t, "b.zip", tasks[0].Output)
	assert.True(t, tasks[0].Options.Encode.NavigationFromDescription)
}
