// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Foyer components.
//
// Configuration is loaded from a single YAML file specified by:
//   - FOYER_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. The config file is
// the single source of truth; environment variables never override
// values in it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/foyer-foundation/foyer/dialog"
	"github.com/foyer-foundation/foyer/rooms/analysis"
	"github.com/foyer-foundation/foyer/speech"
)

// Config is the master configuration for a Foyer hub.
type Config struct {
	// HubID is the hub's own client id on the fabric.
	HubID dialog.ClientID `yaml:"hub_id"`

	// WorkingLanguage is the language the pipeline operates in.
	WorkingLanguage dialog.Language `yaml:"working_language"`

	// ListenAddr is the websocket gateway's TCP address.
	ListenAddr string `yaml:"listen_addr"`

	// DataDir holds the SQLite databases.
	DataDir string `yaml:"data_dir"`

	// StationCatalog is the path to the JSONC station catalog.
	// Optional.
	StationCatalog string `yaml:"station_catalog"`

	// SessionTTL is how long a session survives without activity.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// Workers bounds the bridge's processing pool.
	Workers int `yaml:"workers"`

	// MaxPayloadBytes caps one outbound binary frame.
	MaxPayloadBytes int `yaml:"max_payload_bytes"`

	// Prompter configures the idle-nag subsystem.
	Prompter PrompterConfig `yaml:"prompter"`

	// Speech configures the speech-to-text and translation service.
	// Disabled when the API key is empty.
	Speech speech.Config `yaml:"speech"`

	// AnalysisRules drive the keyword intent-resolution room.
	AnalysisRules []analysis.Rule `yaml:"analysis_rules"`
}

// PrompterConfig configures the idle-nag subsystem.
type PrompterConfig struct {
	Enabled      bool          `yaml:"enabled"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	RepeatDelay  time.Duration `yaml:"repeat_delay"`
	MaxNags      int           `yaml:"max_nags"`

	// Message is the nag text the built-in prompt room answers with.
	// Empty means the room's default.
	Message string `yaml:"message"`
}

// Default returns the development defaults: a hub on localhost with
// the prompter on.
func Default() *Config {
	return &Config{
		HubID:           1,
		WorkingLanguage: "eng",
		ListenAddr:      "127.0.0.1:7311",
		DataDir:         "./data",
		SessionTTL:      15 * time.Minute,
		Workers:         4,
		MaxPayloadBytes: 1 << 20,
		Prompter: PrompterConfig{
			Enabled:      true,
			InitialDelay: 2 * time.Minute,
			RepeatDelay:  time.Minute,
			MaxNags:      2,
		},
	}
}

// Load loads configuration from the FOYER_CONFIG environment
// variable. There are no fallbacks: if FOYER_CONFIG is not set, this
// fails.
func Load() (*Config, error) {
	path := os.Getenv("FOYER_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("config: FOYER_CONFIG environment variable not set; " +
			"set it to the path of your foyer.yaml, or use --config")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merged over
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !c.HubID.IsSet() || c.HubID == dialog.Broadcast {
		errs = append(errs, fmt.Errorf("hub_id must be a positive client id"))
	}
	if c.WorkingLanguage == "" {
		errs = append(errs, fmt.Errorf("working_language is required"))
	}
	if c.ListenAddr == "" {
		errs = append(errs, fmt.Errorf("listen_addr is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("data_dir is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("session_ttl must be positive"))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive"))
	}
	if c.Prompter.Enabled {
		if c.Prompter.InitialDelay <= 0 || c.Prompter.RepeatDelay <= 0 {
			errs = append(errs, fmt.Errorf("prompter delays must be positive when enabled"))
		}
	}
	for i, rule := range c.AnalysisRules {
		if rule.Intent == "" || len(rule.Triggers) == 0 {
			errs = append(errs, fmt.Errorf("analysis_rules[%d] needs an intent and triggers", i))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
