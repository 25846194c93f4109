package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/adventure-scaler/scaler/internal/cli"
	"github.com/adventure-scaler/scaler/internal/config"
)

func main() {
	if err := run(); err != nil {
		config.Exitf("Error: %v", err)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := cli.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}
	if level := os.Getenv(config.EnvPrefix + "LOG_LEVEL"); level != "" && !isFlagSet("log-level") {
		cfg.LogLevel = level
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, cfg, os.Stdout)
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
