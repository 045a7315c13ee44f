package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/handiism/yamusic-downloader/internal/config"
	"github.com/handiism/yamusic-downloader/internal/download"
	"github.com/handiism/yamusic-downloader/internal/logging"
	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/progress"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Command line flags
	var (
		tokenFlag    = flag.String("token", "", "Yandex Music OAuth token (overrides config)")
		outputFlag   = flag.String("output", "", "Output directory (overrides config)")
		patternFlag  = flag.String("pattern", "", "Path pattern, e.g. {artist}/{album}/{track_number} - {title}")
		configFlag   = flag.String("config", "", "Path to config file (default: user config dir)")
		urlFlag      = flag.String("url", "", "Track, album or playlist URL to download")
		searchFlag   = flag.String("search", "", "Search query; pick results with -select or interactively")
		selectFlag   = flag.String("select", "", "Comma-separated 1-based search result numbers, or \"all\"")
		qualityFlag  = flag.String("quality", "NORMAL", "Quality: LOW, NORMAL or LOSSLESS")
		lyricsFlag   = flag.String("lyrics", "TEXT", "Lyrics: NONE, TEXT or LRC")
		coverFlag    = flag.Bool("embed-cover", true, "Embed cover art")
		skipFlag     = flag.Bool("skip-existing", true, "Skip tracks whose file already exists")
		workersFlag  = flag.Int("workers", 1, "Number of tracks downloaded at once")
		retriesFlag  = flag.Int("retries", 3, "Download attempts per track")
		playlistFlag = flag.String("playlist", "", "Write a playlist for the batch: m3u, pls, wpl or zpl")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	rawURL := *urlFlag
	if rawURL == "" && flag.NArg() > 0 {
		rawURL = flag.Arg(0)
	}
	if rawURL == "" && *searchFlag == "" {
		fmt.Println("Yandex Music Downloader")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  yamusic-dl -url <URL> [options]")
		fmt.Println("  yamusic-dl <URL> [options]")
		fmt.Println("  yamusic-dl -search <query> [-select 1,3] [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: yamusic-tui")
		fmt.Println()
		flag.PrintDefaults()
		return 2
	}

	logger := logging.New(os.Stderr, *verboseFlag)
	defer func() { _ = logger.Sync() }()

	// Load config
	configPath := *configFlag
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	settings, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	// Apply flags
	if *tokenFlag != "" {
		settings.Token = *tokenFlag
	}
	if *outputFlag != "" {
		settings.Output = *outputFlag
	}
	if *patternFlag != "" {
		settings.PathPattern = *patternFlag
	}

	rt, err := runtimeFromFlags(*qualityFlag, *lyricsFlag, *coverFlag, *skipFlag, *workersFlag, *retriesFlag, *playlistFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := download.NewManager(*settings, configPath, rt, download.WithLogger(logger))
	bar := progress.NewBar(os.Stderr, *verboseFlag)

	var result download.BatchResult
	if rawURL != "" {
		result, err = manager.DownloadURL(ctx, rawURL, bar)
	} else {
		result, err = searchAndDownload(ctx, manager, *searchFlag, *selectFlag, bar)
	}
	bar.Finish()

	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "\nDownload cancelled.")
			return 130
		}
		logger.Debug("action failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		return 1
	}

	fmt.Println(result.Summary())
	for _, f := range result.Failed {
		fmt.Fprintf(os.Stderr, "  failed: %s - %s: %s\n", f.Track.ArtistLine(), f.Track.FullTitle(), f.Reason)
	}
	if ctx.Err() != nil {
		return 130
	}
	if len(result.Failed) > 0 {
		return 1
	}
	return 0
}

func runtimeFromFlags(quality, lyrics string, cover, skip bool, workers, retries int, playlist string) (config.Runtime, error) {
	rt := config.DefaultRuntime()

	q, err := model.ParseQuality(quality)
	if err != nil {
		return rt, err
	}
	l, err := model.ParseLyricsFormat(lyrics)
	if err != nil {
		return rt, err
	}
	rt.Options = model.DownloadOptions{
		Quality:      q,
		Lyrics:       l,
		EmbedCover:   cover,
		SkipExisting: skip,
	}

	if workers < 1 {
		return rt, fmt.Errorf("-workers must be at least 1, got %d", workers)
	}
	if retries < 1 {
		return rt, fmt.Errorf("-retries must be at least 1, got %d", retries)
	}
	rt.Concurrency = workers
	rt.DownloadMaxRetries = retries
	rt.PlaylistFormat = strings.ToLower(strings.TrimSpace(playlist))
	return rt, nil
}

func searchAndDownload(ctx context.Context, manager *download.Manager, query, selection string, rep progress.Reporter) (download.BatchResult, error) {
	tracks, err := manager.Search(ctx, query, rep)
	if err != nil {
		return download.BatchResult{}, err
	}
	if len(tracks) == 0 {
		return download.BatchResult{}, fmt.Errorf("no tracks found for %q", query)
	}

	var indexes []int
	if selection != "" {
		indexes, err = parseSelection(selection, len(tracks))
	} else {
		indexes, err = chooseTracksInteractively(tracks)
	}
	if err != nil {
		return download.BatchResult{}, err
	}
	return manager.DownloadSelected(ctx, indexes, rep)
}

// parseSelection turns "1,3,5" or "all" into 0-based indexes.
func parseSelection(s string, n int) ([]int, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		indexes := make([]int, n)
		for i := range indexes {
			indexes[i] = i
		}
		return indexes, nil
	}

	seen := make(map[int]bool)
	var indexes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		if num < 1 || num > n {
			return nil, fmt.Errorf("selection %d out of range 1-%d", num, n)
		}
		if !seen[num] {
			seen[num] = true
			indexes = append(indexes, num-1)
		}
	}
	if len(indexes) == 0 {
		return nil, download.ErrNoSelection
	}
	return indexes, nil
}

func chooseTracksInteractively(tracks []*model.Track) ([]int, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspect stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 {
		return nil, fmt.Errorf("interactive selection requires a terminal; use -select instead")
	}

	options := make([]huh.Option[int], 0, len(tracks))
	for idx, t := range tracks {
		label := fmt.Sprintf("%s - %s", t.ArtistLine(), t.FullTitle())
		if t.Album != nil && t.Album.Title != "" {
			label += " [" + t.Album.Title + "]"
		}
		options = append(options, huh.NewOption(label, idx))
	}

	var selected []int
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Select tracks to download").
				Description("Use x/space to toggle, enter to confirm.").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("run interactive track selector: %w", err)
	}
	if len(selected) == 0 {
		return nil, download.ErrNoSelection
	}
	return selected, nil
}

func describeError(err error) string {
	if yandex.IsAuth(err) {
		return "authorization failed, check the OAuth token (-token)"
	}
	return err.Error()
}
