package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NO_DOTENV", "1")
	for _, key := range []string{envAPIKey, envBaseURL, envDefaultModel, envTimeout, envMaxRetries, envGoogleAPIKey, envGeminiModel} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearLLMEnv(t)

	t.Run("valid file", func(t *testing.T) {
		content := `
base_url: "https://api.example.com/v1"
api_key: "test-api-key"
default_model: "fast"
timeout: "30s"
max_retries: 2
log_level: "debug"
models:
  fast:
    provider: "openai"
    model_name: "gpt-4o-mini"
    temperature: 0.3
    max_tokens: 512
`
		path := filepath.Join(t.TempDir(), "llm.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, "https://api.example.com/v1", cfg.BaseURL)
		require.Equal(t, "test-api-key", cfg.APIKey)
		require.Equal(t, "fast", cfg.DefaultModel)
		require.Equal(t, 30*time.Second, cfg.Timeout)
		require.Equal(t, 2, cfg.MaxRetries)

		model, ok := cfg.Model("fast")
		require.True(t, ok)
		require.Equal(t, "gpt-4o-mini", model.ModelName)
		require.NotNil(t, model.MaxCompletionTokens)
		require.Equal(t, 512, *model.MaxCompletionTokens)
		require.InDelta(t, 0.3, *model.Temperature, 1e-9)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/llm.yaml")
		require.ErrorContains(t, err, "open llm config")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_key: x\n  broken: : yaml"), 0o600))
		_, err := LoadConfig(path)
		require.ErrorContains(t, err, "unmarshal llm config")
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv(envGoogleAPIKey, "google-key")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, "google-key", cfg.APIKey)
	require.Equal(t, defaultBaseURL, cfg.BaseURL)
	require.Equal(t, defaultModel, cfg.DefaultModel)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	require.Equal(t, defaultLogLevel, cfg.LogLevel)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv(envAPIKey, "primary-key")
	t.Setenv(envGoogleAPIKey, "secondary-key")
	t.Setenv(envGeminiModel, "gemini-2.5-pro")
	t.Setenv(envTimeout, "45s")
	t.Setenv(envMaxRetries, "5")
	t.Setenv("STOCKCHAT_LLM_URL", "https://expanded.example.com")

	cfg, err := LoadConfigFromReader(strings.NewReader(`
base_url: "${STOCKCHAT_LLM_URL}"
default_model: "from-file"
timeout: "10s"
`))
	require.NoError(t, err)
	require.Equal(t, "primary-key", cfg.APIKey)
	require.Equal(t, "https://expanded.example.com", cfg.BaseURL)
	require.Equal(t, "gemini-2.5-pro", cfg.DefaultModel)
	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, 5, cfg.MaxRetries)
}

func TestLoadConfigErrors(t *testing.T) {
	clearLLMEnv(t)

	_, err := LoadConfigFromReader(strings.NewReader(""))
	require.ErrorContains(t, err, "api_key is required")

	_, err = LoadConfigFromReader(strings.NewReader("api_key: k\ntimeout: soon\n"))
	require.ErrorContains(t, err, "invalid timeout")

	_, err = LoadConfigFromReader(strings.NewReader("api_key: k\ntimeout: -5s\n"))
	require.ErrorContains(t, err, "timeout must be positive")
}

func TestConfigValidate(t *testing.T) {
	valid := Config{BaseURL: "https://x", APIKey: "k", DefaultModel: "m", Timeout: time.Second}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "missing key", mutate: func(c *Config) { c.APIKey = " " }, errMsg: "api_key"},
		{name: "missing url", mutate: func(c *Config) { c.BaseURL = "" }, errMsg: "base_url"},
		{name: "missing model", mutate: func(c *Config) { c.DefaultModel = "" }, errMsg: "default_model"},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, errMsg: "timeout"},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, errMsg: "max_retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Models: map[string]ModelConfig{"a": {ModelName: "x"}}}
	cp := cfg.Clone()
	cp.Models["a"] = ModelConfig{ModelName: "y"}
	require.Equal(t, "x", cfg.Models["a"].ModelName)

	var nilCfg *Config
	require.Nil(t, nilCfg.Clone())
}
