// Package config loads the mentionlab configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds browser and automation settings.
type Config struct {
	// Headless defaults to false: interactive logins need a visible browser.
	Headless bool `yaml:"headless"`

	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`

	UserAgent string `yaml:"user_agent"`
	Locale    string `yaml:"locale"`
	Timezone  string `yaml:"timezone"`

	NavigationTimeoutMs int `yaml:"navigation_timeout_ms"`
	ResponseTimeoutMs   int `yaml:"response_timeout_ms"`
	SettleDelayMs       int `yaml:"settle_delay_ms"`

	// Database is the sqlite file holding platforms and recorded queries.
	Database string `yaml:"database"`

	// SelectorOverrides optionally points to a YAML file with per-platform
	// selector lists that replace the built-in ones at runtime.
	SelectorOverrides string `yaml:"selector_overrides"`

	// AskDelayMs is the courtesy delay between platforms in a batch ask.
	AskDelayMs int `yaml:"ask_delay_ms"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Headless:            false,
		ViewportWidth:       1920,
		ViewportHeight:      1080,
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Locale:              "zh-CN",
		Timezone:            "Asia/Shanghai",
		NavigationTimeoutMs: 30000,
		ResponseTimeoutMs:   30000,
		SettleDelayMs:       2000,
		Database:            "mentionlab.db",
		AskDelayMs:          2000,
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := Default()
	if c.ViewportWidth == 0 {
		c.ViewportWidth = d.ViewportWidth
	}
	if c.ViewportHeight == 0 {
		c.ViewportHeight = d.ViewportHeight
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.NavigationTimeoutMs == 0 {
		c.NavigationTimeoutMs = d.NavigationTimeoutMs
	}
	if c.ResponseTimeoutMs == 0 {
		c.ResponseTimeoutMs = d.ResponseTimeoutMs
	}
	if c.SettleDelayMs == 0 {
		c.SettleDelayMs = d.SettleDelayMs
	}
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.AskDelayMs == 0 {
		c.AskDelayMs = d.AskDelayMs
	}
	return c
}

// NavigationTimeout returns the page navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// ResponseTimeout bounds the wait for a response container to attach.
func (c Config) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMs) * time.Millisecond
}

// SettleDelay is the post-attach pause that lets streaming text finish.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// AskDelay is the pause between platforms in a batch ask.
func (c Config) AskDelay() time.Duration {
	return time.Duration(c.AskDelayMs) * time.Millisecond
}
