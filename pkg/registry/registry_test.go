package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `{
	"version": "1.0.0",
	"activities": [
		{"id": "generate", "taskType": "generate-recommendations", "retries": 3},
		{"id": "explain", "taskType": "explain-recommendation", "timeout": "10s"}
	]
}`

func TestParseRegistry(t *testing.T) {
	reg, err := ParseRegistry([]byte(sampleRegistry))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", reg.Version)
	require.Len(t, reg.Activities, 2)

	a, ok := reg.FindByTaskType("explain-recommendation")
	require.True(t, ok)
	assert.Equal(t, "10s", a.Timeout)

	_, ok = reg.FindByTaskType("missing")
	assert.False(t, ok)
}

func TestParseRegistry_Errors(t *testing.T) {
	tests := map[string]string{
		"malformed":         `{"activities": [`,
		"missing task type": `{"activities": [{"id": "a"}]}`,
		"duplicate":         `{"activities": [{"id": "a", "taskType": "t"}, {"id": "b", "taskType": "t"}]}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRegistry), 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 2)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestFindByTaskType_NilRegistry(t *testing.T) {
	var reg *ActivityRegistry
	_, ok := reg.FindByTaskType("anything")
	assert.False(t, ok)
}
