// Package config loads the service configuration from a YAML file and
// fills in workable defaults for anything omitted.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source extraction strategies.
const (
	StrategyTable    = "table"
	StrategyFreeText = "freetext"
)

// SourceConfig describes one agency page to poll.
type SourceConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Strategy string `yaml:"strategy"` // table | freetext

	// Free-text strategy only.
	StartMarker  string   `yaml:"start_marker"`
	EndMarker    string   `yaml:"end_marker"`
	HeaderLabels []string `yaml:"header_labels"`
	Species      string   `yaml:"species"`
}

// PushConfig points at the external push gateway.
type PushConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the full service configuration.
type Config struct {
	Database     string         `yaml:"database"`
	Listen       string         `yaml:"listen"`
	PollInterval time.Duration  `yaml:"poll_interval"`
	FetchTimeout time.Duration  `yaml:"fetch_timeout"`
	Push         PushConfig     `yaml:"push"`
	Sources      []SourceConfig `yaml:"sources"`
}

// Default returns the configuration used when no config file is given:
// the two Utah DWR report pages, a local database, and the public Expo
// push gateway.
func Default() Config {
	return applyDefaults(Config{
		Sources: []SourceConfig{
			{
				Name:     "utah-dwr",
				URL:      "https://dwrapps.utah.gov/fishstocking/Fish",
				Strategy: StrategyTable,
			},
			{
				Name:        "utah-hotspots",
				URL:         "https://wildlife.utah.gov/hotspots/stocking-report.html",
				Strategy:    StrategyFreeText,
				StartMarker: "Recently Stocked Waters",
				EndMarker:   "stocking report archive",
				HeaderLabels: []string{
					"Body of Water", "Region", "County", "Date", "Date Stocked",
				},
				Species: "TROUT",
			},
		},
	})
}

// Load reads and validates a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg = applyDefaults(cfg)

	if len(cfg.Sources) == 0 {
		return Config{}, fmt.Errorf("config must define at least one source")
	}
	for _, src := range cfg.Sources {
		if src.URL == "" {
			return Config{}, fmt.Errorf("source %q: url is required", src.Name)
		}
		switch src.Strategy {
		case StrategyTable:
		case StrategyFreeText:
			if src.StartMarker == "" {
				return Config{}, fmt.Errorf("source %q: freetext strategy requires start_marker", src.Name)
			}
		default:
			return Config{}, fmt.Errorf("source %q: unknown strategy %q", src.Name, src.Strategy)
		}
	}
	return cfg, nil
}

func applyDefaults(cfg Config) Config {
	if cfg.Database == "" {
		cfg.Database = "data/stocking-events.db"
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.Push.Timeout <= 0 {
		cfg.Push.Timeout = 10 * time.Second
	}
	return cfg
}
