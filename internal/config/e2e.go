package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Artifact capture modes
const (
	ModeOff             = "off"
	ModeOn              = "on"
	ModeOnlyOnFailure   = "only-on-failure"
	ModeRetainOnFailure = "retain-on-failure"
	ModeOnFirstRetry    = "on-first-retry"
)

// Browser engines
const (
	EnginePlaywright = "playwright"
	EngineChromedp   = "chromedp"
	EngineHTML       = "html"
)

// E2EConfig holds the configuration of the browser automation core
type E2EConfig struct {
	BaseURL string
	Engine  string
	Browser string

	Headless          bool
	IgnoreHTTPSErrors bool
	Locale            string
	Timezone          string
	ViewportWidth     int
	ViewportHeight    int

	NavigationTimeout time.Duration
	ActionTimeout     time.Duration
	TestTimeout       time.Duration

	CI      bool
	Retries int
	Workers int

	ReportDir     string
	ScreenshotDir string
	TraceDir      string
	VideoDir      string

	ScreenshotMode string
	TraceMode      string
	VideoMode      string

	AuthUsername string
	AuthPassword string

	Debug     bool
	LogFormat string
}

// LoadE2EConfigFromEnv loads a .env file when present and then reads the
// process environment. Variables already set in the environment win.
func LoadE2EConfigFromEnv() (*E2EConfig, error) {
	_ = godotenv.Load()
	return LoadE2EConfig(os.Getenv)
}

// LoadE2EConfig loads the automation configuration from environment variables
func LoadE2EConfig(getenv func(string) string) (*E2EConfig, error) {
	var err error
	config := &E2EConfig{
		BaseURL:        strings.TrimRight(envOr(getenv, "BASE_URL", "https://www.saucedemo.com"), "/"),
		Engine:         envOr(getenv, "BROWSER_ENGINE", EnginePlaywright),
		Browser:        envOr(getenv, "BROWSER", "chromium"),
		Locale:         envOr(getenv, "LOCALE", "en-US"),
		Timezone:       envOr(getenv, "TIMEZONE", "America/New_York"),
		ViewportWidth:  1280,
		ViewportHeight: 720,
		ReportDir:      envOr(getenv, "REPORT_DIR", "playwright-report"),
		ScreenshotDir:  envOr(getenv, "SCREENSHOT_DIR", "screenshots"),
		TraceDir:       envOr(getenv, "TRACE_DIR", "test-results/traces"),
		VideoDir:       envOr(getenv, "VIDEO_DIR", "test-results/videos"),
		ScreenshotMode: envOr(getenv, "SCREENSHOT_MODE", ModeOnlyOnFailure),
		TraceMode:      envOr(getenv, "TRACE_MODE", ModeOnFirstRetry),
		VideoMode:      envOr(getenv, "VIDEO_MODE", ModeRetainOnFailure),
		AuthUsername:   envOr(getenv, "AUTH_USERNAME", "standard_user"),
		AuthPassword:   envOr(getenv, "AUTH_PASSWORD", "secret_sauce"),
		LogFormat:      envOr(getenv, "LOG_FORMAT", "console"),
	}

	if config.Headless, err = parseBool(getenv, "HEADLESS", true); err != nil {
		return nil, err
	}
	if config.IgnoreHTTPSErrors, err = parseBool(getenv, "IGNORE_HTTPS_ERRORS", false); err != nil {
		return nil, err
	}
	if config.CI, err = parseBool(getenv, "CI", false); err != nil {
		return nil, err
	}
	if config.Debug, err = parseBool(getenv, "DEBUG", false); err != nil {
		return nil, err
	}

	if config.NavigationTimeout, err = parseMillis(getenv, "NAVIGATION_TIMEOUT", 30000); err != nil {
		return nil, err
	}
	if config.ActionTimeout, err = parseMillis(getenv, "ACTION_TIMEOUT", 10000); err != nil {
		return nil, err
	}
	if config.TestTimeout, err = parseMillis(getenv, "TEST_TIMEOUT", 60000); err != nil {
		return nil, err
	}

	if config.CI {
		config.Retries, err = parseInt(getenv, "RETRIES_CI", 2)
	} else {
		config.Retries, err = parseInt(getenv, "RETRIES_LOCAL", 0)
	}
	if err != nil {
		return nil, err
	}
	if config.Workers, err = parseInt(getenv, "WORKERS", 1); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks enumerated values and bounds
func (c *E2EConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	switch c.Engine {
	case EnginePlaywright, EngineChromedp, EngineHTML:
	default:
		return fmt.Errorf("BROWSER_ENGINE must be one of playwright, chromedp, html; got %q", c.Engine)
	}
	switch c.Browser {
	case "chromium", "firefox", "webkit":
	default:
		return fmt.Errorf("BROWSER must be one of chromium, firefox, webkit; got %q", c.Browser)
	}
	if err := oneOf("SCREENSHOT_MODE", c.ScreenshotMode, ModeOff, ModeOn, ModeOnlyOnFailure); err != nil {
		return err
	}
	if err := oneOf("TRACE_MODE", c.TraceMode, ModeOff, ModeOn, ModeRetainOnFailure, ModeOnFirstRetry); err != nil {
		return err
	}
	if err := oneOf("VIDEO_MODE", c.VideoMode, ModeOff, ModeOn, ModeRetainOnFailure); err != nil {
		return err
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json; got %q", c.LogFormat)
	}
	if c.NavigationTimeout <= 0 || c.ActionTimeout <= 0 || c.TestTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	return nil
}

// RecordsVideo reports whether contexts should record video
func (c *E2EConfig) RecordsVideo() bool {
	return c.VideoMode != ModeOff
}

// RecordsTrace reports whether contexts should be traced
func (c *E2EConfig) RecordsTrace() bool {
	return c.TraceMode != ModeOff
}

// KeepTrace reports whether a finished trace is written out.
// on-first-retry behaves like retain-on-failure since a single run
// cannot know whether it is a retry.
func (c *E2EConfig) KeepTrace(failed bool) bool {
	switch c.TraceMode {
	case ModeOn:
		return true
	case ModeRetainOnFailure, ModeOnFirstRetry:
		return failed
	}
	return false
}

// KeepVideo reports whether recorded videos are kept
func (c *E2EConfig) KeepVideo(failed bool) bool {
	switch c.VideoMode {
	case ModeOn:
		return true
	case ModeRetainOnFailure:
		return failed
	}
	return false
}

// ScreenshotOnRelease reports whether a screenshot is taken at teardown
func (c *E2EConfig) ScreenshotOnRelease(failed bool) bool {
	switch c.ScreenshotMode {
	case ModeOn:
		return true
	case ModeOnlyOnFailure:
		return failed
	}
	return false
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBool(getenv func(string) string, key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func parseInt(getenv func(string) string, key string, fallback int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func parseMillis(getenv func(string) string, key string, fallback int) (time.Duration, error) {
	n, err := parseInt(getenv, key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Millisecond, nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s; got %q", key, strings.Join(allowed, ", "), value)
}
