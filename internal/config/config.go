// Package config loads the CalDAV connection settings from the
// environment. Flags on the CLI override individual fields afterwards.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultTimeout bounds every network call of a run.
const DefaultTimeout = 30 * time.Second

type Config struct {
	// BaseURL is the calendar home, e.g.
	// https://cloud.example.com/remote.php/dav/calendars/airflow/
	BaseURL string
	// Calendar is the collection name inside the home, e.g. outlook-1.
	Calendar string
	Username string
	// Password is an app password, not the account password.
	Password string
	// RulesPath points at the YAML rules file.
	RulesPath string
	// Timeout applies to each HTTP request.
	Timeout time.Duration
}

// Load reads the configuration from the environment. Missing values are
// not an error here; Validate runs after CLI flags had their chance to
// fill the gaps.
func Load() *Config {
	cfg := &Config{
		BaseURL:   os.Getenv("BASE_URL"),
		Calendar:  os.Getenv("CAL_NAME"),
		Username:  os.Getenv("CALDAV_USER"),
		Password:  os.Getenv("APP_PWD"),
		RulesPath: os.Getenv("RULES_FILE"),
		Timeout:   DefaultTimeout,
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if cfg.RulesPath == "" {
		cfg.RulesPath = "rules.yaml"
	}
	return cfg
}

// Validate checks that everything a sync run needs is present.
func (c *Config) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}
	if c.Calendar == "" {
		missing = append(missing, "CAL_NAME")
	}
	if c.Username == "" {
		missing = append(missing, "CALDAV_USER")
	}
	if c.Password == "" {
		missing = append(missing, "APP_PWD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s (set via environment or flags)", strings.Join(missing, ", "))
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid BASE_URL: %w", err)
	}
	return nil
}

// ParsedBaseURL returns the base URL as a parsed URL.
func (c *Config) ParsedBaseURL() (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(c.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", c.BaseURL)
	}
	return u, nil
}

// CollectionURL joins the base URL and the collection name into the
// absolute collection location, with a trailing slash.
func (c *Config) CollectionURL() (string, error) {
	base, err := c.ParsedBaseURL()
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.Trim(c.Calendar, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parse calendar name: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
