package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "caller", cfg.Graph.IDMode)
	assert.False(t, cfg.Graph.AutoPersist)
	assert.Equal(t, 2, cfg.Retrieval.MaxDepth)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, "both", cfg.Retrieval.Direction)
	assert.Equal(t, "weighted_path", cfg.Retrieval.Scoring)
	assert.InDelta(t, 0.7, cfg.Retrieval.VectorWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Retrieval.GraphWeight, 1e-9)
	assert.Equal(t, "local", cfg.Embedding.Provider)
}

func TestEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RELATO_SNAPSHOT_PATH", "/tmp/custom.json")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "/tmp/custom.json", cfg.Graph.SnapshotPath)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestConfigFileValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("retrieval.scoring", "decay")
	viper.Set("graph.auto_persist", true)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "decay", cfg.Retrieval.Scoring)
	assert.True(t, cfg.Graph.AutoPersist)
}
