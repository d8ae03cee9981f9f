package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Store:     StoreConfig{Path: "/some/path"},
		Recommend: RecommendConfig{MinCandidates: 15},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyStorePath(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Path = ""

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidate_MinCandidates(t *testing.T) {
	cfg := validConfig()
	cfg.Recommend.MinCandidates = 0

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestExpandStorePaths_Defaults(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Path = ""
	cfg.Store.SearchPath = ""

	require.NoError(t, cfg.expandStorePaths())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".book-recommendation", "store"), cfg.Store.Path)
	assert.Equal(t, filepath.Join(cfg.Store.Path, "search"), cfg.Store.SearchPath)
}

func TestExpandPath_Tilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), expanded)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_CONFIG_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "TEST_CONFIG_KEY_UNSET", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("true", "UNSET", false))
	assert.True(t, getBoolConfigValue("YES", "UNSET", false))
	assert.True(t, getBoolConfigValue("1", "UNSET", false))
	assert.False(t, getBoolConfigValue("no", "UNSET", true))
	assert.True(t, getBoolConfigValue("", "UNSET", true))
}

func TestGetFloatConfigValue(t *testing.T) {
	assert.InDelta(t, 0.4, getFloatConfigValue("0.4", "UNSET", 0.7), 1e-9)
	assert.InDelta(t, 0.7, getFloatConfigValue("", "UNSET", 0.7), 1e-9)
	assert.InDelta(t, 0.7, getFloatConfigValue("not-a-number", "UNSET", 0.7), 1e-9)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nTEST_ENV_FILE_KEY=hello\nQUOTED_KEY=\"quoted value\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TEST_ENV_FILE_KEY", "")
	t.Setenv("QUOTED_KEY", "")
	os.Unsetenv("TEST_ENV_FILE_KEY")
	os.Unsetenv("QUOTED_KEY")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("TEST_ENV_FILE_KEY"))
	assert.Equal(t, "quoted value", os.Getenv("QUOTED_KEY"))
}
