package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    string
	}{
		{
			name:    "plain summary untouched",
			summary: "Team meeting",
			want:    "Team meeting",
		},
		{
			name:    "trailing TRANSP fragment stripped",
			summary: "Standup TRANSP:OPAQUE",
			want:    "Standup",
		},
		{
			name:    "trailing busystatus fragment stripped",
			summary: "Review X-MICROSOFT-CDO-BUSYSTATUS=BUSY",
			want:    "Review",
		},
		{
			name:    "trailing status word stripped",
			summary: "Lunch FREE",
			want:    "Lunch",
		},
		{
			name:    "fragment and status both stripped",
			summary: "T8 OPAQUE",
			want:    "T8",
		},
		{
			name:    "case insensitive",
			summary: "Planning transp;opaque",
			want:    "Planning",
		},
		{
			name:    "whitespace trimmed",
			summary: "  Focus  ",
			want:    "Focus",
		},
		{
			name:    "empty stays empty",
			summary: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSummary(tt.summary))
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{Pattern: "^Focus$", Color: "blue", MakeFree: true},
		{Pattern: "Focus", Color: "red", MakeFree: false},
	})
	require.NoError(t, err)

	patch, ok := engine.Classify("Focus", false).Get()
	require.True(t, ok)
	assert.Equal(t, Transparent, patch.Transparency)
	assert.Equal(t, "blue", patch.Color)
}

func TestClassifyNoMatch(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{Pattern: "^Focus$", Color: "blue", MakeFree: true},
	})
	require.NoError(t, err)

	assert.True(t, engine.Classify("Lunch", false).IsAbsent())
}

func TestClassifyDeterministic(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{Pattern: "^T[5-8]$", Color: "khaki", MakeFree: true},
	})
	require.NoError(t, err)

	first := engine.Classify("T7", true)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, engine.Classify("T7", true))
	}
}

func TestClassifyCaseInsensitiveSearch(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{Pattern: "urlaub", Color: "#f39c12", MakeFree: false},
	})
	require.NoError(t, err)

	patch, ok := engine.Classify("Sommer-URLAUB 2026", false).Get()
	require.True(t, ok)
	assert.Equal(t, Opaque, patch.Transparency)
	assert.Equal(t, "#f39c12", patch.Color)
}

func TestClassifyNormalizedKeyOnly(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{Pattern: "^T8$", Color: "khaki", MakeFree: true},
	})
	require.NoError(t, err)

	// Raw summary only matches after stripping the trailing fragment.
	assert.True(t, engine.Classify("T8 TRANSP:OPAQUE", true).IsPresent())
	assert.True(t, engine.Classify("T8 TRANSP:OPAQUE", false).IsAbsent())
}

func TestNewEngineInvalidPattern(t *testing.T) {
	_, err := NewEngine([]Rule{{Pattern: "([unclosed", Color: "x"}})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `rules:
  - pattern: "^T8$"
    color: khaki
    free: true
  - pattern: ".*Urlaub.*"
    color: "#f39c12"
    free: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	list, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "^T8$", list[0].Pattern)
	assert.True(t, list[0].MakeFree)
	assert.Equal(t, "#f39c12", list[1].Color)
	assert.False(t, list[1].MakeFree)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty rule list", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules: []\n"), 0o600))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("empty pattern", func(t *testing.T) {
		path := filepath.Join(dir, "badpattern.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - color: red\n"), 0o600))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}
