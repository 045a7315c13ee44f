package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/handiism/yamusic-downloader/internal/config"
	"github.com/handiism/yamusic-downloader/internal/download"
	"github.com/handiism/yamusic-downloader/internal/logging"
	"github.com/handiism/yamusic-downloader/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file (default: user config dir)")
	verboseFlag := flag.Bool("verbose", false, "Show verbose output and debug logging")
	flag.Parse()

	if err := run(*configFlag, *verboseFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, verbose bool) error {
	if configPath == "" {
		var err error
		if configPath, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The alt screen owns the terminal, so logs go next to the config file.
	logger, closeLog, err := logging.NewFile(filepath.Join(filepath.Dir(configPath), "yamusic-tui.log"), verbose)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = closeLog() }()

	manager := download.NewManager(*settings, configPath, config.DefaultRuntime(), download.WithLogger(logger))
	return tui.Run(manager, verbose)
}
