package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to set env vars and clean up after
func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if old == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, old)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_DIR", "LOG_LEVEL", "LOG_FORMAT", "ALLOWED_ORIGINS", "DATABASE_URL"} {
		setEnv(t, key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, DefaultRateLimit, cfg.RateLimitRPS)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, "PORT", "9191")
	setEnv(t, "DATA_DIR", "/var/lib/fraudlens")
	setEnv(t, "LOG_FORMAT", "json")
	setEnv(t, "ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, "/var/lib/fraudlens", cfg.DataDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "valid config",
			config: Config{
				DataDir:        "data",
				LogFormat:      "text",
				RateLimitRPS:   10,
				RateLimitBurst: 20,
			},
			wantErr: "",
		},
		{
			name: "missing data dir",
			config: Config{
				LogFormat:      "text",
				RateLimitRPS:   10,
				RateLimitBurst: 20,
			},
			wantErr: "DATA_DIR is required",
		},
		{
			name: "bad log format",
			config: Config{
				DataDir:        "data",
				LogFormat:      "xml",
				RateLimitRPS:   10,
				RateLimitBurst: 20,
			},
			wantErr: "LOG_FORMAT",
		},
		{
			name: "zero rate limit",
			config: Config{
				DataDir:        "data",
				LogFormat:      "json",
				RateLimitRPS:   0,
				RateLimitBurst: 20,
			},
			wantErr: "RATE_LIMIT_RPS must be positive",
		},
		{
			name: "burst below rps",
			config: Config{
				DataDir:        "data",
				LogFormat:      "json",
				RateLimitRPS:   50,
				RateLimitBurst: 10,
			},
			wantErr: "RATE_LIMIT_BURST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Host: "", Port: "8080"}
	assert.Equal(t, ":8080", cfg.Addr())

	cfg.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Env = "production"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvHelpers(t *testing.T) {
	setEnv(t, "TEST_VAR", "custom_value")
	setEnv(t, "TEST_INT", "42")
	setEnv(t, "TEST_INVALID", "not_a_number")

	assert.Equal(t, "custom_value", getEnv("TEST_VAR", "default"))
	assert.Equal(t, "default", getEnv("NONEXISTENT_VAR", "default"))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 99, getEnvInt("NONEXISTENT_VAR", 99))
	assert.Equal(t, 99, getEnvInt("TEST_INVALID", 99)) // Falls back on parse error
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList("a, b"))
	assert.Equal(t, []string{"*"}, splitList("*"))
	assert.Empty(t, splitList(" , "))
}
