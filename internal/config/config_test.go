package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory so no stray .env is read, and
// clears every variable Load looks at.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{
		"STYLIST_PROVIDER", "STYLIST_MODEL", "STYLIST_API_KEY", "STYLIST_BASE_URL",
		"STYLIST_AI_TIMEOUT", "STYLIST_MAX_TOKENS", "STYLIST_HOST", "STYLIST_PORT",
		"STYLIST_MAX_UPLOAD_BYTES", "STYLIST_LOG_LEVEL", "STYLIST_LOG_FORMAT", "STYLIST_FACE_URL",
		"GROQ_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.Provider)
	assert.Equal(t, "llama3-70b-8192", cfg.ModelName())
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr())
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.FaceURL)
	assert.Empty(t, cfg.Credential())
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("STYLIST_PROVIDER", "OpenAI")
	t.Setenv("STYLIST_MODEL", "gpt-4o")
	t.Setenv("STYLIST_AI_TIMEOUT", "5s")
	t.Setenv("STYLIST_PORT", "9090")
	t.Setenv("STYLIST_HOST", "0.0.0.0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.ModelName())
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("STYLIST_LOG_LEVEL=debug\nGROQ_API_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("STYLIST_LOG_LEVEL")
		os.Unsetenv("GROQ_API_KEY")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from-dotenv", cfg.Credential())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown provider": {"STYLIST_PROVIDER": "watson"},
		"zero timeout":     {"STYLIST_AI_TIMEOUT": "0s"},
		"bad port":         {"STYLIST_PORT": "70000"},
		"unparseable":      {"STYLIST_PORT": "eighty"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Config{Provider: "watson", AITimeout: 0, Port: 0, MaxUploadBytes: -1}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"unknown provider", "AI_TIMEOUT", "PORT", "MAX_UPLOAD_BYTES"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestCredential_Precedence(t *testing.T) {
	isolate(t)
	t.Setenv("GROQ_API_KEY", "conventional")

	cfg := Config{Provider: "groq"}
	assert.Equal(t, "conventional", cfg.Credential())

	cfg.APIKey = "explicit"
	assert.Equal(t, "explicit", cfg.Credential())

	cfg = Config{Provider: "ollama"}
	assert.Empty(t, cfg.Credential())
}

func TestSettings(t *testing.T) {
	isolate(t)
	cfg := Config{Provider: "openrouter", APIKey: "k", BaseURL: "http://x", AITimeout: time.Second}
	s := cfg.Settings()
	assert.Equal(t, "openrouter", s.Provider)
	assert.Equal(t, "k", s.APIKey)
	assert.Equal(t, "http://x", s.BaseURL)
	assert.Equal(t, time.Second, s.Timeout)
	assert.NotEmpty(t, s.Model)
}
