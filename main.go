package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"fknsrs.biz/p/ytreport/internal/config"
	"fknsrs.biz/p/ytreport/internal/configreader"
	"fknsrs.biz/p/ytreport/internal/ctxclock"
	"fknsrs.biz/p/ytreport/internal/ctxhttpclient"
	"fknsrs.biz/p/ytreport/internal/ctxlogger"
	"fknsrs.biz/p/ytreport/internal/extract"
	"fknsrs.biz/p/ytreport/internal/httpcache"
	"fknsrs.biz/p/ytreport/internal/locale"
	"fknsrs.biz/p/ytreport/internal/logrusstackhook"
	"fknsrs.biz/p/ytreport/internal/report"
	"fknsrs.biz/p/ytreport/internal/summary"
	"fknsrs.biz/p/ytreport/internal/transcript"
	"fknsrs.biz/p/ytreport/internal/ytdirect"
	"fknsrs.biz/p/ytreport/internal/ytdl"
)

var configFiles = []string{"ytreport.toml", "ytreport.yaml", "ytreport.yml"}

func main() {
	os.Exit(run(context.Background(), os.Args[0], os.Args[1:], os.Environ(), os.Stdout, os.Stderr))
}

func defaultConfig() config.Config {
	cfg := config.Default()

	for _, configPath := range configFiles {
		if st, err := os.Stat(configPath); err == nil && st != nil && !st.IsDir() {
			cfg.Config = configPath
			break
		}
	}

	return cfg
}

func printUsage(wr io.Writer, program string, cfg *config.Config, text *locale.Catalog) {
	name := filepath.Base(program)

	fmt.Fprintf(wr, "Usage: %s [flags] <video-url> [%s]\n\n", name, text.UsageOutputDirectory)
	fmt.Fprintf(wr, "%s\n", text.UsageExampleHeading)
	fmt.Fprintf(wr, "  %s 'https://www.youtube.com/watch?v=VIDEO_ID'\n", name)
	fmt.Fprintf(wr, "  %s 'https://youtu.be/VIDEO_ID' ./output\n\n", name)
	fmt.Fprintf(wr, "Flags:\n")

	configreader.PrintDefaults(wr, program, cfg)
}

func newLogger(cfg config.Config, wr io.Writer) *logrus.Logger {
	logger := logrus.New()

	logger.SetOutput(wr)
	logger.SetLevel(cfg.LogLevel)

	if cfg.LogFormat == config.LogFormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if len(cfg.LogDebugLevels) > 0 {
		logger.AddHook(logrusstackhook.NewStackHook(nil, cfg.LogDebugLevels, nil))
	}

	return logger
}

func newHTTPClient(cfg config.Config) (*http.Client, func() error, error) {
	if cfg.HTTPCachePath == "" {
		return &http.Client{Timeout: time.Duration(cfg.HTTPTimeout)}, func() error { return nil }, nil
	}

	db, err := bbolt.Open(cfg.HTTPCachePath, 0600, &bbolt.Options{Timeout: time.Second * 5})
	if err != nil {
		return nil, nil, fmt.Errorf("could not open http cache: %w", err)
	}

	c, err := httpcache.NewClient(db, httpcache.Options{
		MaxAge:  time.Duration(cfg.HTTPCacheMaxAge),
		RFC:     cfg.HTTPCacheRFC,
		Timeout: time.Duration(cfg.HTTPTimeout),
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return c, db.Close, nil
}

func run(ctx context.Context, program string, args, env []string, stdout, stderr io.Writer) int {
	cfg := defaultConfig()

	rest, err := configreader.Read(program, args, env, &cfg)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			text, err := locale.Lookup(cfg.Locale)
			if err != nil {
				text = locale.English
			}

			printUsage(stderr, program, &cfg, text)
			return 0
		}

		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}

	text, err := locale.Lookup(cfg.Locale)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}

	if len(rest) < 1 {
		printUsage(stderr, program, &cfg, text)
		return 1
	}

	url := rest[0]

	outputDir := cfg.OutputDir
	if len(rest) > 1 {
		outputDir = rest[1]
	}

	logger := newLogger(cfg, stderr)

	logger.WithFields(logrus.Fields{
		"config.config":             cfg.Config,
		"config.log_level":          cfg.LogLevel,
		"config.log_format":         cfg.LogFormat,
		"config.log_debug_levels":   cfg.LogDebugLevels,
		"config.output_dir":         outputDir,
		"config.languages":          cfg.Languages,
		"config.locale":             cfg.Locale,
		"config.metadata_provider":  cfg.MetadataProvider,
		"config.ytdlp_program":      cfg.YTDLPProgram,
		"config.http_cache_path":    cfg.HTTPCachePath,
		"config.http_cache_max_age": time.Duration(cfg.HTTPCacheMaxAge),
		"config.http_cache_rfc":     cfg.HTTPCacheRFC,
		"config.http_timeout":       time.Duration(cfg.HTTPTimeout),
		"config.template_dir":       cfg.TemplateDir,
		"config.youtube_base_url":   cfg.YouTubeBaseURL,
	}).Info("program starting")

	ctx = ctxlogger.WithLogger(ctx, logger)
	clocks := []ctxclock.Clock{ctxclock.NewRealClock()}
	if c := ctxclock.GetClock(ctx); c != nil {
		clocks = append([]ctxclock.Clock{c}, clocks...)
	}
	ctx = ctxclock.WithClock(ctx, ctxclock.NewStackedClock(clocks))

	httpClient, closeCache, err := newHTTPClient(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.WithError(err).Warn("could not close http cache")
		}
	}()

	ctx = ctxhttpclient.WithHTTPClient(ctx, httpClient)

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			fmt.Fprintf(stderr, "error: %s\n", err)
			return 1
		}
	}

	renderer, err := report.NewRenderer(cfg.TemplateDir, text)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}

	direct := &ytdirect.Client{BaseURL: cfg.YouTubeBaseURL}

	var metadata extract.MetadataProvider = ytdl.New(cfg.YTDLPProgram)
	if cfg.MetadataProvider == config.MetadataProviderDirect {
		metadata = direct
	}

	fmt.Fprintf(stdout, text.StatusExtracting+"\n", url)

	res, err := extract.Run(ctx, url, outputDir, extract.Deps{
		Metadata: metadata,
		Transcripts: &transcript.Fetcher{
			Provider:  transcript.New(direct),
			Languages: cfg.Languages,
		},
		Renderer:  renderer,
		Text:      text,
		Languages: cfg.Languages,
	})
	if err != nil {
		logger.WithError(err).Debug("extraction failed")
		fmt.Fprintf(stderr, "error: %s: %s\n", text.StatusCouldNotFetch, err)
		return 1
	}

	fmt.Fprintf(stdout, text.StatusTitle+"\n", res.Record.Title)
	fmt.Fprintf(stdout, text.StatusChannel+"\n", res.Record.Channel)
	fmt.Fprintf(stdout, text.StatusDuration+"\n", res.Display.Duration)
	fmt.Fprintf(stdout, text.StatusViews+"\n", res.Display.ViewCount)
	fmt.Fprintf(stdout, "\n"+text.StatusSaved+"\n\n", res.Path)

	if err := summary.Write(stdout, res.Summary); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}

	return 0
}
