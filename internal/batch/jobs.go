// Package batch runs several adventure scaling jobs described in a YAML file.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/adventure-scaler/scaler/internal/adventure"
)

// Ratio is a scale ratio read exactly as written in the job file.
type Ratio struct {
	Value decimal.Decimal
	set   bool
}

// UnmarshalYAML parses the scalar text rather than a float so 1.1 stays 1.1.
func (r *Ratio) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: scale must be a number", value.Line)
	}
	d, err := adventure.ParseRatio(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	r.Value = d
	r.set = true
	return nil
}

// IsSet reports whether the ratio was present in the file.
func (r Ratio) IsSet() bool {
	return r.set
}

// Defaults apply to every job that does not override them.
type Defaults struct {
	Scale            Ratio `yaml:"scale"`
	FixNavigation    bool  `yaml:"fix_navigation"`
	ScaleDrawingSize bool  `yaml:"scale_drawing_size"`
}

// Job is one input archive to scale.
type Job struct {
	Input            string `yaml:"input"`
	Output           string `yaml:"output"`
	Scale            Ratio  `yaml:"scale"`
	FixNavigation    *bool  `yaml:"fix_navigation"`
	ScaleDrawingSize *bool  `yaml:"scale_drawing_size"`
}

// JobFile is the decoded YAML document.
type JobFile struct {
	Defaults Defaults `yaml:"defaults"`
	Jobs     []Job    `yaml:"jobs"`
}

// Task is a fully resolved job ready to run.
type Task struct {
	Input   string
	Output  string
	Scale   decimal.Decimal
	Options adventure.Options
}

// ParseJobs reads a job file. Relative archive paths are resolved against
// the directory holding the file.
func ParseJobs(filePath string) ([]Task, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseJobsFromReader(file, filepath.Dir(filePath))
}

// ParseJobsFromReader reads a job file from r, resolving relative paths
// against baseDir.
func ParseJobsFromReader(r io.Reader, baseDir string) ([]Task, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var jf JobFile
	if err := dec.Decode(&jf); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("job file is empty")
		}
		return nil, fmt.Errorf("decoding job file: %w", err)
	}

	return jf.Resolve(baseDir)
}

// Resolve applies defaults and validates every job.
func (jf *JobFile) Resolve(baseDir string) ([]Task, error) {
	if len(jf.Jobs) == 0 {
		return nil, fmt.Errorf("job file lists no jobs")
	}

	tasks := make([]Task, 0, len(jf.Jobs))
	for i, job := range jf.Jobs {
		if job.Input == "" || job.Output == "" {
			return nil, fmt.Errorf("job %d: input and output are required", i+1)
		}

		scale := jf.Defaults.Scale
		if job.Scale.IsSet() {
			scale = job.Scale
		}
		if !scale.IsSet() {
			return nil, fmt.Errorf("job %d: no scale given and no default scale", i+1)
		}

		fixNav := jf.Defaults.FixNavigation
		if job.FixNavigation != nil {
			fixNav = *job.FixNavigation
		}
		drawingSize := jf.Defaults.ScaleDrawingSize
		if job.ScaleDrawingSize != nil {
			drawingSize = *job.ScaleDrawingSize
		}

		opts := adventure.DefaultOptions()
		opts.Encode.NavigationFromDescription = !fixNav
		opts.Scale.ScaleDrawingSize = drawingSize

		tasks = append(tasks, Task{
			Input:   resolvePath(baseDir, job.Input),
			Output:  resolvePath(baseDir, job.Output),
			Scale:   scale.Value,
			Options: opts,
		})
	}
	return tasks, nil
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}
