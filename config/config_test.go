package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/careerchat/components/provider"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "ROLES_FILE", "DOCUMENT_ROOT", "LOG_LEVEL", "S3_ENDPOINT",
		"OPENAI_API_KEY", "OPENAI_API_BASE_URL", "GROQ_API_KEY", "GROQ_API_BASE_URL",
		"ANTHROPIC_API_KEY", "ANTHROPIC_API_BASE_URL", "COHERE_API_KEY", "COHERE_API_BASE_URL",
		"LLM_TEMPERATURE", "LLM_MAX_TOKENS", "MAX_ROUNDS", "DOCUMENT_MAX_WORDS", "AWS_REGION",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, provider.Groq, cfg.Provider)
	assert.Equal(t, "gsk-test", cfg.APIKey)
	assert.Equal(t, "llama3-70b-8192", cfg.Model)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.Equal(t, 20, cfg.MaxRounds)
	assert.Zero(t, cfg.DocumentMaxWords)
	assert.Equal(t, "info", cfg.LogLevel)

	clt, err := cfg.NewClient()
	require.NoError(t, err)
	assert.Equal(t, provider.Groq, clt.Name())
}

func TestLoadProviderFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("ANTHROPIC_API_BASE_URL", "http://localhost:8080/v1")
	t.Setenv("LLM_MODEL", "claude-3-haiku-20240307")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", cfg.APIKey)
	assert.Equal(t, "http://localhost:8080/v1", cfg.BaseURL)

	t.Setenv("LLM_API_KEY", "explicit")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.APIKey)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LLM_PROVIDER=openai\nOPENAI_API_KEY=sk-file\nMAX_ROUNDS=5\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LLM_PROVIDER")
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("MAX_ROUNDS")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, provider.OpenAI, cfg.Provider)
	assert.Equal(t, "sk-file", cfg.APIKey)
	assert.Equal(t, 5, cfg.MaxRounds)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LLM_PROVIDER", "mistral")
	_, err = Load()
	assert.ErrorContains(t, err, "invalid config")

	t.Setenv("LLM_PROVIDER", "cohere")
	t.Setenv("MAX_ROUNDS", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "MaxRounds")
}

func TestReadWithoutAPIKey(t *testing.T) {
	clearEnv(t)
	cfg, err := Read()
	require.NoError(t, err)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, provider.Groq, cfg.Provider)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingAPIKey)

	t.Setenv("LLM_PROVIDER", "mistral")
	_, err = Read()
	assert.ErrorContains(t, err, "invalid config")
}

func TestS3Config(t *testing.T) {
	cfg := Config{AWSRegion: "eu-west-1", AWSAccessKeyID: "id", AWSSecretAccessKey: "secret", S3Endpoint: "http://minio:9000"}
	s3cfg := cfg.S3Config()
	assert.Equal(t, "eu-west-1", s3cfg.Region)
	assert.Equal(t, "http://minio:9000", s3cfg.Endpoint)
	assert.NotNil(t, cfg.NewLoader())
}
