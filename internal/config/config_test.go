package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BASE_URL", "https://cloud.example.com/remote.php/dav/calendars/airflow/")
	t.Setenv("CAL_NAME", "outlook-1")
	t.Setenv("CALDAV_USER", "airflow")
	t.Setenv("APP_PWD", "secret")
	t.Setenv("RULES_FILE", "/etc/calpatch/rules.yaml")
	t.Setenv("HTTP_TIMEOUT", "10s")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "outlook-1", cfg.Calendar)
	assert.Equal(t, "/etc/calpatch/rules.yaml", cfg.RulesPath)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RULES_FILE", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, "rules.yaml", cfg.RulesPath)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestValidateMissingFields(t *testing.T) {
	cfg := &Config{BaseURL: "https://example.com/dav/"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAL_NAME")
	assert.Contains(t, err.Error(), "CALDAV_USER")
	assert.Contains(t, err.Error(), "APP_PWD")
	assert.NotContains(t, err.Error(), "BASE_URL")
}

func TestCollectionURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		calendar string
		want     string
	}{
		{
			name:     "trailing slash on base",
			baseURL:  "https://cloud.example.com/remote.php/dav/calendars/airflow/",
			calendar: "outlook-1",
			want:     "https://cloud.example.com/remote.php/dav/calendars/airflow/outlook-1/",
		},
		{
			name:     "no trailing slash on base",
			baseURL:  "https://cloud.example.com/remote.php/dav/calendars/airflow",
			calendar: "outlook-1",
			want:     "https://cloud.example.com/remote.php/dav/calendars/airflow/outlook-1/",
		},
		{
			name:     "calendar with surrounding slashes",
			baseURL:  "https://cloud.example.com/dav/",
			calendar: "/work/",
			want:     "https://cloud.example.com/dav/work/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{BaseURL: tt.baseURL, Calendar: tt.calendar}
			got, err := cfg.CollectionURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsedBaseURLRejectsNonHTTP(t *testing.T) {
	cfg := &Config{BaseURL: "ftp://example.com/dav/"}
	_, err := cfg.ParsedBaseURL()
	assert.Error(t, err)
}
