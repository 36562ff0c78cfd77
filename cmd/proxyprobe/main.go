package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/hamed0406/proxyprobe/internal/config"
	"github.com/hamed0406/proxyprobe/internal/logging"
	"github.com/hamed0406/proxyprobe/internal/runner"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "proxies.yaml", "path to the proxy configuration YAML file")
	output := flag.String("output", "", "optional path for CSV output (defaults to value in config)")
	logDir := flag.String("log-dir", "", "directory for the structured run log (defaults to value in config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Configuration file not found: %s\n", *configPath)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}

	dir := cfg.LogDir
	if *logDir != "" {
		dir = *logDir
	}
	logger, err := logging.NewLogger(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer logger.Sync()

	outputPath := config.ResolveOutputPath(*configPath, cfg, *output)

	r := runner.NewRunner(logger, os.Stdout)
	if err := r.Run(context.Background(), cfg, outputPath); err != nil {
		if errors.Is(err, runner.ErrNoAccounts) {
			fmt.Fprintln(os.Stderr, "No accounts defined in configuration. Nothing to probe.")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
