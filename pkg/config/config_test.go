package config

import (
	"os"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

var managedKeys = []string{
	"ENVIRONMENT", "LOG_LEVEL",
	"LLM_BASE_URL", "BASE_URL", "LLM_MODEL", "MODEL", "LLM_API_KEY", "API_KEY",
	"LLM_TIMEOUT", "TIMEOUT", "LLM_VERBOSE", "VERBOSE", "LLM_PROMPT_PATH", "PROMPT_PATH",
	"SERVER_HOST", "HOST", "SERVER_PORT", "PORT",
	"WAREHOUSE_ENABLED", "WAREHOUSE_USER", "WAREHOUSE_HOST", "WAREHOUSE_PORT",
	"REDIS_ADDR", "STORAGE_ENDPOINT",
	"DRIVE_GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_JSON",
}

// clearEnv unsets every variable the tests depend on and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	assert.Equal(t, cfg.Environment, "development")
	assert.Equal(t, cfg.LogLevel, "info")
	assert.Equal(t, cfg.LLM.BaseURL, "https://api.openai.com/v1")
	assert.Equal(t, cfg.LLM.Model, "gpt-4o-mini")
	assert.Equal(t, cfg.LLM.APIKey, "sk-test")
	assert.Equal(t, cfg.LLM.Timeout, 30*time.Second)
	assert.Equal(t, cfg.LLM.Verbose, false)
	assert.Equal(t, cfg.LLM.PromptPath, "prompts/system_prompt.txt")
	assert.Equal(t, cfg.Drive.DocumentPattern, "Notas")
	assert.Equal(t, cfg.Drive.SectionTitle, "Análisis - Farmer")
	assert.Equal(t, cfg.Batch.MinTranscriptChars, 100)
	assert.Equal(t, cfg.Batch.MaxRetries, uint64(2))
	assert.Equal(t, cfg.Warehouse.Enabled, false)
	assert.Equal(t, cfg.Redis.TTL, 720*time.Hour)
	assert.Equal(t, cfg.Storage.Endpoint, "")
	assert.Equal(t, cfg.GetServerAddr(), "0.0.0.0:8080")
}

func TestLoad_PlaceholderAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_BASE_URL", "http://localhost:4000/v1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assert.Equal(t, cfg.LLM.APIKey, "dummykey")
}

func TestLoad_UnprefixedFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "sk-alt")
	t.Setenv("BASE_URL", "https://llm.internal/v1")
	t.Setenv("MODEL", "gpt-4o")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	assert.Equal(t, cfg.LLM.APIKey, "sk-alt")
	assert.Equal(t, cfg.LLM.BaseURL, "https://llm.internal/v1")
	assert.Equal(t, cfg.LLM.Model, "gpt-4o")
	assert.Equal(t, cfg.Server.Port, "9090")
	// warehouse settings only read prefixed names
	assert.Equal(t, cfg.Warehouse.Port, "5432")
}

func TestLoad_PrefixedWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "sk-alt")
	t.Setenv("LLM_API_KEY", "sk-prefixed")
	t.Setenv("MODEL", "gpt-4o")
	t.Setenv("LLM_MODEL", "gpt-4.1-mini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	assert.Equal(t, cfg.LLM.APIKey, "sk-prefixed")
	assert.Equal(t, cfg.LLM.Model, "gpt-4.1-mini")
}

func TestLoad_ShellUserDoesNotLeak(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("USER", "someone")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assert.Equal(t, cfg.Warehouse.User, "postgres")
}

func TestLoad_LegacyServiceAccountVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"type":"service_account"}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assert.Equal(t, cfg.Drive.CredentialsJSON, `{"type":"service_account"}`)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad log level":     {"LLM_API_KEY": "k", "LOG_LEVEL": "verbose"},
		"bad base url":      {"LLM_API_KEY": "k", "LLM_BASE_URL": "not a url"},
		"malformed timeout": {"LLM_API_KEY": "k", "LLM_TIMEOUT": "thirty"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := Config{Warehouse: WarehouseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "require",
	}}
	assert.Equal(t, cfg.GetDatabaseDSN(), "host=db port=5432 user=u password=p dbname=n sslmode=require")
}
