package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
	"github.com/adventure-scaler/scaler/internal/testutil"
)

func parse(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("scaler", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return ParseConfig(fs, args)
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Config
		wantErr string
	}{
		{
			name: "positional",
			args: []string{"in.fvttadv", "out.fvttadv", "2"},
			want: Config{Input: "in.fvttadv", Output: "out.fvttadv", Scale: "2", LogLevel: "info"},
		},
		{
			name: "flags before positional",
			args: []string{"-fix-navigation", "-scale-drawing-size", "-log-level", "debug", "in.zip", "out.zip", "0.5"},
			want: Config{Input: "in.zip", Output: "out.zip", Scale: "0.5", FixNavigation: true, ScaleDrawingSize: true, LogLevel: "debug"},
		},
		{
			name: "batch",
			args: []string{"-batch", "jobs.yaml"},
			want: Config{BatchFile: "jobs.yaml", LogLevel: "info"},
		},
		{name: "missing ratio", args: []string{"in.zip", "out.zip"}, wantErr: "got 2 argument(s)"},
		{name: "batch with positional", args: []string{"-batch", "jobs.yaml", "in.zip"}, wantErr: "not allowed"},
		{name: "blank input", args: []string{" ", "out.zip", "2"}, wantErr: "input is required"},
		{name: "unknown flag", args: []string{"-verbose", "in.zip", "out.zip", "2"}, wantErr: "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse(t, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteArchive(t, dir, "cave.fvttadv",
		testutil.Entry{Name: "adventure.json", Data: []byte(`{}`)},
		testutil.Entry{Name: "scene/s1.json", Data: testutil.PopulatedScene("s1").JSON(t)},
	)
	out := filepath.Join(dir, "cave-2x.fvttadv")

	var buf bytes.Buffer
	err := Run(context.Background(), Config{Input: in, Output: out, Scale: "2", LogLevel: "error"}, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "scaled 1 scene(s) by 2, copied 1 other entries")
	assert.Contains(t, buf.String(), "scene/s1.json  2000x1600 grid 200")
	assert.FileExists(t, out)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteArchive(t, dir, "cave.zip", testutil.Entry{Name: "scene/s1.json", Data: testutil.PopulatedScene("s1").JSON(t)})

	t.Run("ratio out of range touches nothing", func(t *testing.T) {
		out := filepath.Join(dir, "out-15.zip")
		err := Run(context.Background(), Config{Input: in, Output: out, Scale: "15.0", LogLevel: "error"}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidScale))
		assert.NoFileExists(t, out)
	})

	t.Run("missing input", func(t *testing.T) {
		err := Run(context.Background(), Config{Input: filepath.Join(dir, "nope.zip"), Output: filepath.Join(dir, "o.zip"), Scale: "2", LogLevel: "error"}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("bad log level", func(t *testing.T) {
		err := Run(context.Background(), Config{Input: in, Output: filepath.Join(dir, "o.zip"), Scale: "2", LogLevel: "chatty"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log level")
	})
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArchive(t, dir, "a.zip", testutil.Entry{Name: "scene/a.json", Data: testutil.Scene("a", 100, 100, 10, 0, 0).JSON(t)})
	testutil.WriteArchive(t, dir, "b.zip", testutil.Entry{Name: "scene/b.json", Data: testutil.Scene("b", 100, 100, 10, 0, 0).JSON(t)})

	jobs := `
defaults:
  scale: 2
jobs:
  - input: a.zip
    output: a-out.zip
  - input: b.zip
    output: b-out.zip
    scale: 0.5
`
	jobFile := filepath.Join(dir, "jobs.yaml")
	require.NoError(t, os.WriteFile(jobFile, []byte(jobs), 0644))

	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), Config{BatchFile: jobFile, LogLevel: "error"}, &buf))

	assert.Contains(t, buf.String(), filepath.Join(dir, "a-out.zip")+": scaled 1 scene(s) by 2")
	assert.Contains(t, buf.String(), filepath.Join(dir, "b-out.zip")+": scaled 1 scene(s) by 0.5")
	assert.Contains(t, buf.String(), "scene/b.json  50x50 grid 5")
}
