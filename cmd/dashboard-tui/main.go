package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/biz-dashboard/tui/internal/app"
	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/config"
	"github.com/biz-dashboard/tui/internal/logging"
	"github.com/biz-dashboard/tui/internal/session"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/toast"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to the YAML config file")
	apiURL := flag.String("api", "", "Base URL of the dashboard API (overrides config)")
	logFile := flag.String("log", "", "Log file path (overrides config)")
	flag.Parse()

	if err := run(*configPath, *apiURL, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flag overrides. The
// result is validated again since the flags bypass Load's checks.
func loadConfig(configPath, apiURL, logFile string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func run(configPath, apiURL, logFile string) error {
	cfg, err := loadConfig(configPath, apiURL, logFile)
	if err != nil {
		return err
	}

	ring := logging.NewRing(logging.RingSize)
	logger, logCloser, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level}, ring)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	store, err := session.NewFileStore(cfg.Session.File)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	sess := session.New(store)

	queue := toast.NewQueue(
		toast.WithDefaultExpiry(cfg.Toasts.DefaultExpiry),
		toast.WithLogger(logger.With().Str("component", "toast").Logger()),
	)
	defer queue.Close()

	api := client.NewAPI(cfg.API.BaseURL, sess,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(logger.With().Str("component", "api").Logger()),
	)
	theme.Currency = cfg.Currency

	logger.Info().
		Str("api", api.BaseURL()).
		Bool("authenticated", sess.IsAuthenticated()).
		Msg("starting")

	m := app.New(api, sess, queue,
		app.WithLogger(logger.With().Str("component", "app").Logger()),
		app.WithActivity(ring),
		app.WithTopProductsLimit(cfg.Analytics.TopProductsLimit),
	)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	logger.Info().Msg("exiting")
	return nil
}
