package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"PORT", "ENV", "MODEL_ID", "TEMPERATURE", "TOP_P", "MAX_OUTPUT_TOKENS",
	"STORE_BACKEND", "POSTGRES_DSN", "QDRANT_HOST", "QDRANT_PORT", "EMBEDDING_DIM",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		// Setenv registers the restore; godotenv skips keys that exist even when empty.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Generation.ModelID)
	assert.InDelta(t, 0.7, cfg.Generation.Temperature, 1e-6)
	assert.InDelta(t, 0.95, cfg.Generation.TopP, 1e-6)
	assert.EqualValues(t, 8192, cfg.Generation.MaxOutputTokens)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, 6334, cfg.QdrantPort)
	assert.False(t, cfg.SimilarityEnabled())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9090\nTEMPERATURE=0.2\nQDRANT_HOST=localhost\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.InDelta(t, 0.2, cfg.Generation.Temperature, 1e-6)
	assert.True(t, cfg.SimilarityEnabled())
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]map[string]string{
		"temperature_range":  {"TEMPERATURE": "1.5"},
		"temperature_syntax": {"TEMPERATURE": "warm"},
		"top_p_zero":         {"TOP_P": "0"},
		"max_tokens":         {"MAX_OUTPUT_TOKENS": "-1"},
		"store_backend":      {"STORE_BACKEND": "mongo"},
		"postgres_no_dsn":    {"STORE_BACKEND": "postgres"},
		"qdrant_port":        {"QDRANT_PORT": "abc"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
