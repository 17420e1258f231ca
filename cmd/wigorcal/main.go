package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"

	"wigorcal/internal/cas"
	"wigorcal/internal/config"
	"wigorcal/internal/ical"
	appLog "wigorcal/internal/log"
	"wigorcal/internal/model"
	"wigorcal/internal/site"
	"wigorcal/internal/timetable"
)

type flagConfig struct {
	configPath string
	date       string
	weeks      int
	user       string
	password   string
	serve      bool
	listen     string
	outputDir  string
}

func main() {
	flags := parseFlags()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	if flags.weeks > 0 {
		cfg.Weeks = flags.weeks
	}
	if flags.listen != "" {
		cfg.Listen = flags.listen
	}
	if flags.outputDir != "" {
		cfg.OutputDir = flags.outputDir
	}

	creds := cas.Credentials{
		Username: flags.user,
		Password: flags.password,
	}
	if creds.Username == "" {
		creds.Username = os.Getenv(cfg.UserEnv)
	}
	if creds.Password == "" {
		creds.Password = os.Getenv(cfg.PassEnv)
	}

	monday, err := targetMonday(flags.date, time.Now())
	if err != nil {
		appLog.Error("invalid -date value, want YYYY-MM-DD", err, "date", flags.date)
		os.Exit(2)
	}

	appLog.Info("wigorcal starting",
		"monday", monday.Format("2006-01-02"),
		"weeks", cfg.Weeks,
		"output_dir", cfg.OutputDir,
		"serve", flags.serve,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	publisher := &site.Publisher{
		OutputDir:    cfg.OutputDir,
		SiteBase:     cfg.SiteBase,
		CalendarName: cfg.CalendarName,
	}

	run := func(ctx context.Context) ([]model.WeekSchedule, error) {
		// Without an explicit -date, serve-mode refreshes follow the
		// current week instead of the week active at startup.
		start := monday
		if flags.date == "" {
			start, _ = targetMonday("", time.Now())
		}
		weeks, err := scrapeWeeks(ctx, cfg, creds, start)
		if err != nil {
			return nil, err
		}
		if err := publisher.Publish(weeks, time.Now()); err != nil {
			return nil, err
		}
		return weeks, nil
	}

	weeks, err := run(ctx)
	if err != nil {
		appLog.Error("run failed", err)
		os.Exit(1)
	}

	// Console listing of the first reconstructed week.
	if len(weeks) > 0 {
		fmt.Print(ical.RenderListing(weeks[0]))
	}

	if !flags.serve {
		appLog.Info("wigorcal done", "weeks", len(weeks))
		return
	}

	srv := site.NewServer(cfg.Listen, cfg.OutputDir, cfg.RefreshCron, weeks, run)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("server exited", err)
		os.Exit(1)
	}
	appLog.Info("wigorcal exiting")
}

// scrapeWeeks fetches and reconstructs cfg.Weeks consecutive weeks
// starting at monday. A failure on the first week is fatal; later weeks
// are skipped with a logged error so one broken page does not abort the
// rest of the export.
func scrapeWeeks(ctx context.Context, cfg *config.Config, creds cas.Credentials, monday time.Time) ([]model.WeekSchedule, error) {
	client, err := cas.NewClient(creds, cfg.DebugPage)
	if err != nil {
		return nil, err
	}

	var weeks []model.WeekSchedule
	for k := 0; k < cfg.Weeks; k++ {
		wkMonday := monday.AddDate(0, 0, 7*k)

		week, err := scrapeOne(ctx, client, cfg.EDTURL, wkMonday)
		if err != nil {
			if k == 0 {
				return nil, fmt.Errorf("first requested week (%s): %w", wkMonday.Format("2006-01-02"), err)
			}
			appLog.Warn("skipping week",
				"monday", wkMonday.Format("2006-01-02"),
				"err", err,
			)
			continue
		}

		appLog.Info("week reconstructed",
			"monday", wkMonday.Format("2006-01-02"),
			"days", len(week.Days),
			"events", week.EventCount(),
		)
		weeks = append(weeks, week)
	}
	return weeks, nil
}

func scrapeOne(ctx context.Context, client *cas.Client, baseURL string, monday time.Time) (model.WeekSchedule, error) {
	page, err := client.FetchWeek(ctx, baseURL, monday)
	if err != nil {
		return model.WeekSchedule{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return model.WeekSchedule{}, err
	}
	return timetable.Reconstruct(doc, monday)
}

// targetMonday resolves the requested date (fallback when empty) to the
// ISO Monday of its week.
func targetMonday(date string, fallback time.Time) (time.Time, error) {
	target := fallback
	if date != "" {
		var err error
		target, err = time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, err
		}
	}
	offset := (int(target.Weekday()) + 6) % 7
	monday := target.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC), nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "wigorcal.yaml", "Path to config file")
	flag.StringVar(&cfg.date, "date", "", "Any date (YYYY-MM-DD) inside the first week to export; defaults to today")
	flag.IntVar(&cfg.weeks, "weeks", 0, "Number of consecutive weeks to export (overrides config if > 0)")
	flag.StringVar(&cfg.user, "user", "", "CAS username (defaults to the configured env var)")
	flag.StringVar(&cfg.password, "password", "", "CAS password (defaults to the configured env var)")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the published site over HTTP and refresh on schedule")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.outputDir, "out", "", "Output directory (overrides config if set)")

	flag.Parse()

	return cfg
}
