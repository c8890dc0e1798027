// Package config loads application settings from an optional YAML file
// with environment variable overrides. Environment always wins, so
// deployments can keep a checked-in baseline file and inject secrets.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Settings holds every tunable of the BI server.
type Settings struct {
	// monday.com API
	MondayAPIKey      string `yaml:"monday_api_key"`
	MondayAPIURL      string `yaml:"monday_api_url"`
	DealsBoardID      string `yaml:"deals_board_id"`
	WorkOrdersBoardID string `yaml:"work_orders_board_id"`
	MondayPageSize    int    `yaml:"monday_page_size"`

	// LLM
	GeminiModel string `yaml:"gemini_model"`

	// Server
	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`
	Debug      bool   `yaml:"debug"`

	// Cache TTLs in seconds. Board data stays hot for 3 minutes,
	// rendered responses for 5.
	BoardCacheTTLSeconds    int `yaml:"board_cache_ttl_seconds"`
	ResponseCacheTTLSeconds int `yaml:"response_cache_ttl_seconds"`

	// Optional Postgres archive. Empty means disabled.
	DatabaseURL string `yaml:"database_url"`
}

func defaults() Settings {
	return Settings{
		MondayAPIURL:            "https://api.monday.com/v2",
		MondayPageSize:          100,
		GeminiModel:             "gemini-2.0-flash-exp",
		ListenAddr:              ":8000",
		LogLevel:                "info",
		BoardCacheTTLSeconds:    180,
		ResponseCacheTTLSeconds: 300,
	}
}

// Load reads settings from the YAML file at path (skipped when the file
// does not exist), then applies environment overrides, then validates.
func Load(path string) (*Settings, error) {
	settings := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyEnv(&settings)

	if settings.MondayAPIKey == "" {
		return nil, fmt.Errorf("MONDAY_API_KEY is not set")
	}
	if settings.DealsBoardID == "" || settings.WorkOrdersBoardID == "" {
		return nil, fmt.Errorf("DEALS_BOARD_ID and WORK_ORDERS_BOARD_ID must be set")
	}

	return &settings, nil
}

func applyEnv(s *Settings) {
	envString(&s.MondayAPIKey, "MONDAY_API_KEY")
	envString(&s.MondayAPIURL, "MONDAY_API_URL")
	envString(&s.DealsBoardID, "DEALS_BOARD_ID")
	envString(&s.WorkOrdersBoardID, "WORK_ORDERS_BOARD_ID")
	envInt(&s.MondayPageSize, "MONDAY_PAGE_SIZE")
	envString(&s.GeminiModel, "GEMINI_MODEL")
	envString(&s.ListenAddr, "LISTEN_ADDR")
	envString(&s.LogLevel, "LOG_LEVEL")
	envBool(&s.Debug, "DEBUG")
	envInt(&s.BoardCacheTTLSeconds, "CACHE_BOARD_TTL")
	envInt(&s.ResponseCacheTTLSeconds, "CACHE_RESPONSE_TTL")
	envString(&s.DatabaseURL, "DATABASE_URL")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// BoardCacheTTL returns the board cache TTL as a duration.
func (s *Settings) BoardCacheTTL() time.Duration {
	return time.Duration(s.BoardCacheTTLSeconds) * time.Second
}

// ResponseCacheTTL returns the response cache TTL as a duration.
func (s *Settings) ResponseCacheTTL() time.Duration {
	return time.Duration(s.ResponseCacheTTLSeconds) * time.Second
}
