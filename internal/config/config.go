package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mempool_watcher/internal/domain"
	"mempool_watcher/pkg/validator"
)

// DefaultRPCURL is used when WATCHER_RPC_URL is unset.
const DefaultRPCURL = "wss://ethereum-rpc.publicnode.com"

const (
	defaultMetricsAddr  = ":9090"
	defaultAPIAddr      = ":8080"
	defaultWorkers      = 4
	defaultAlertHistory = 256
)

type Config struct {
	RPCURL          string
	RulesFile       string
	MetricsAddr     string
	APIAddr         string
	Workers         int
	MaxAlertsPerSec float64
	AlertHistory    int
	WebhookURL      string
	WebhookSecret   string
	LogLevel        slog.Level
}

// Load reads configuration from the environment, after an optional .env
// file. Missing keys fall back to defaults; malformed numeric values are
// startup errors.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		RPCURL:       DefaultRPCURL,
		MetricsAddr:  defaultMetricsAddr,
		APIAddr:      defaultAPIAddr,
		Workers:      defaultWorkers,
		AlertHistory: defaultAlertHistory,
		LogLevel:     slog.LevelInfo,
	}

	if v := os.Getenv("WATCHER_RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	cfg.RulesFile = os.Getenv("WATCHER_RULES_FILE")
	if v := os.Getenv("WATCHER_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("WATCHER_API_ADDR"); v != "" {
		cfg.APIAddr = v
	}
	cfg.WebhookURL = os.Getenv("WATCHER_WEBHOOK_URL")
	cfg.WebhookSecret = os.Getenv("WATCHER_WEBHOOK_SECRET")

	if v := os.Getenv("WATCHER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid WATCHER_WORKERS %q", v)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("WATCHER_ALERT_HISTORY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid WATCHER_ALERT_HISTORY %q", v)
		}
		cfg.AlertHistory = n
	}
	if v := os.Getenv("WATCHER_MAX_ALERTS_PER_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid WATCHER_MAX_ALERTS_PER_SEC %q", v)
		}
		cfg.MaxAlertsPerSec = f
	}

	if v := os.Getenv("WATCHER_LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

func parseLogLevel(v string) (slog.Level, error) {
	switch v {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid WATCHER_LOG_LEVEL %q", v)
	}
}

// RulesFile is the YAML shape of the rule set on disk.
type RulesFile struct {
	MinValue        *float64 `yaml:"min_value"`
	AllowSelectors  []string `yaml:"allow_selectors"`
	DenySelectors   []string `yaml:"deny_selectors"`
	WatchRecipients []string `yaml:"watch_recipients"`
}

// LoadRules reads and validates the rule set. An empty path yields an empty
// rule set that accepts every transaction.
func LoadRules(path string) (*domain.RuleSet, error) {
	if path == "" {
		return domain.NewRuleSet(nil, nil, nil, nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var parsed RulesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	rules := domain.NewRuleSet(parsed.MinValue, parsed.AllowSelectors, parsed.DenySelectors, parsed.WatchRecipients)
	if err := validator.NewRuleSetValidator().Validate(rules); err != nil {
		return nil, fmt.Errorf("validate rules file: %w", err)
	}

	return rules, nil
}
