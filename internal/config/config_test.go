package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultsReproduceClassicDemo(t *testing.T) {
	s, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, s.Queue.Capacity)
	assert.Equal(t, 1, s.Producers)
	assert.Equal(t, 3, s.Consumers)
	assert.Equal(t, 100000, s.Items)
	assert.Equal(t, 10000, s.LogEvery)
	assert.Equal(t, "info", s.Log.Level)
	assert.Empty(t, s.Metrics.Listen)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ringqueue.yaml")
	content := []byte("queue:\n  capacity: 8\nconsumers: 5\nlog:\n  format: json\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	s, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Queue.Capacity)
	assert.Equal(t, 5, s.Consumers)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, 1, s.Producers, "unset keys keep their defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("RINGQUEUE_QUEUE_CAPACITY", "16")
	s, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 16, s.Queue.Capacity)
}

func TestValidate(t *testing.T) {
	s, err := Load(New(), "")
	require.NoError(t, err)

	s.Queue.Capacity = 0
	s.Consumers = 0
	s.Log.Format = "xml"
	err = s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Contains(t, err.Error(), "queue.capacity")
	assert.Contains(t, err.Error(), "consumers")
	assert.Contains(t, err.Error(), "log.format")
}

func TestYAMLRoundTrip(t *testing.T) {
	s, err := Load(New(), "")
	require.NoError(t, err)

	out, err := s.YAML()
	require.NoError(t, err)

	var decoded Settings
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, *s, decoded)
}
