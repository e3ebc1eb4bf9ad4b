package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ThresholdLayout is the layout of SplitThresholdDate.
const ThresholdLayout = "2006-01-02"

// Config holds runtime settings for the server and CLI.
type Config struct {
	DBPath               string   `yaml:"db_path"`
	Port                 string   `yaml:"port"`
	DaypartID            string   `yaml:"daypart_id"`
	SpotChunkLimit       int      `yaml:"spot_chunk_limit"`
	DemoTolerancePercent float64  `yaml:"demo_tolerance_percent"`
	SplitThresholdDate   string   `yaml:"split_threshold_date"`
	SalesAreaPath        string   `yaml:"sales_area_path"`
	ReportDir            string   `yaml:"report_dir"`
	LogLevel             string   `yaml:"log_level"`
	AllowedNetworks      []string `yaml:"allowed_networks"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DBPath:               "brq.db",
		Port:                 "8080",
		SpotChunkLimit:       5000,
		DemoTolerancePercent: 10,
		ReportDir:            "reports",
		LogLevel:             "info",
	}
}

// Load reads .env, then the YAML file at path (skipped when path is empty
// or missing), then environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("error loading .env file", "err", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Warn("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("LMK_DAYPART_ID"); v != "" {
		c.DaypartID = v
	}
	if v := os.Getenv("SPOT_HANDLING_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPOT_HANDLING_LIMIT: %w", err)
		}
		c.SpotChunkLimit = n
	}
	if v := os.Getenv("DEMO_TOLERANCE_PERCENTAGE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DEMO_TOLERANCE_PERCENTAGE: %w", err)
		}
		c.DemoTolerancePercent = f
	}
	if v := os.Getenv("SPLIT_OPP_THRESHOLD_DATE"); v != "" {
		c.SplitThresholdDate = v
	}
	if v := os.Getenv("SEIL_SALES_AREA_MAPPING_PATH"); v != "" {
		c.SalesAreaPath = v
	}
	if v := os.Getenv("REPORT_DIR"); v != "" {
		c.ReportDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ALLOWED_NETWORK_IDS"); v != "" {
		c.AllowedNetworks = nil
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				c.AllowedNetworks = append(c.AllowedNetworks, id)
			}
		}
	}
	return nil
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	if c.SpotChunkLimit <= 0 {
		return fmt.Errorf("spot chunk limit must be positive, got %d", c.SpotChunkLimit)
	}
	if strings.TrimSpace(c.DaypartID) == "" {
		return errors.New("daypart id not configured (set LMK_DAYPART_ID or daypart_id)")
	}
	if _, err := c.SplitThreshold(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SplitThreshold parses SplitThresholdDate. The zero time means unset.
func (c *Config) SplitThreshold() (time.Time, error) {
	if c.SplitThresholdDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(ThresholdLayout, c.SplitThresholdDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid split threshold date %q: %w", c.SplitThresholdDate, err)
	}
	return t, nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}
