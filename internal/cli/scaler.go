// Package cli implements the scaler command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/adventure-scaler/scaler/internal/adventure"
	"github.com/adventure-scaler/scaler/internal/batch"
	"github.com/adventure-scaler/scaler/internal/config"
)

// Config holds the parsed command line.
type Config struct {
	Input            string
	Output           string
	Scale            string
	BatchFile        string
	FixNavigation    bool
	ScaleDrawingSize bool
	LogLevel         string
}

// ParseConfig parses flags and positional arguments:
//
//	scaler [flags] <input> <output> <ratio>
//	scaler [flags] -batch jobs.yaml
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{LogLevel: "info"}

	fs.StringVar(&cfg.BatchFile, "batch", "", "YAML file listing several scaling jobs")
	fs.BoolVar(&cfg.FixNavigation, "fix-navigation", false, "keep each scene's navigation value instead of writing its description there")
	fs.BoolVar(&cfg.ScaleDrawingSize, "scale-drawing-size", false, "scale drawing width and height along with their position")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <input> <output> <ratio>\n\n", fs.Name())
		fmt.Fprintln(fs.Output(), "Rescales every scene in an adventure archive by ratio (0.1 to 10).")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if cfg.BatchFile != "" {
		if len(rest) != 0 {
			return Config{}, errors.New("positional arguments are not allowed with -batch")
		}
		return cfg, nil
	}

	if len(rest) != 3 {
		return Config{}, fmt.Errorf("expected <input> <output> <ratio>, got %d argument(s)", len(rest))
	}
	cfg.Input = rest[0]
	cfg.Output = rest[1]
	cfg.Scale = rest[2]

	if strings.TrimSpace(cfg.Input) == "" {
		return Config{}, errors.New("input is required")
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return Config{}, errors.New("output is required")
	}
	return cfg, nil
}

// Run executes the scaling described by cfg and reports to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	log, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	if cfg.BatchFile != "" {
		return runBatch(ctx, cfg, out, log)
	}

	ratio, err := adventure.ParseRatio(cfg.Scale)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Input); err != nil {
		return fmt.Errorf("input %s: %w", cfg.Input, err)
	}

	opts := adventure.DefaultOptions()
	opts.Encode.NavigationFromDescription = !cfg.FixNavigation
	opts.Scale.ScaleDrawingSize = cfg.ScaleDrawingSize

	result, err := adventure.NewScaler(opts, log).PerformScaling(ctx, cfg.Input, cfg.Output, ratio)
	if err != nil {
		return err
	}
	report(out, cfg.Output, result)
	return nil
}

func runBatch(ctx context.Context, cfg Config, out io.Writer, log logrus.FieldLogger) error {
	tasks, err := batch.ParseJobs(cfg.BatchFile)
	if err != nil {
		return err
	}

	log.WithField("jobs", len(tasks)).Info("running batch")
	results, err := batch.Run(ctx, tasks, log)
	for i, result := range results {
		report(out, tasks[i].Output, result)
	}
	return err
}

func report(out io.Writer, output string, result *adventure.Result) {
	fmt.Fprintf(out, "%s: scaled %d scene(s) by %s, copied %d other entries\n",
		output, len(result.Scenes), result.Ratio, result.PassThrough)
	for _, s := range result.Scenes {
		fmt.Fprintf(out, "  %s  %dx%d grid %d  tokens=%d walls=%d lights=%d sounds=%d notes=%d drawings=%d\n",
			s.Entry, s.Width, s.Height, s.Grid,
			s.Counts.Tokens, s.Counts.Walls, s.Counts.Lights, s.Counts.Sounds, s.Counts.Notes, s.Counts.Drawings)
	}
}
