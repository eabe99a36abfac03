package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "matching-workers/internal/common/errors"
	"matching-workers/pkg/registry"
)

func registryFile(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "configs", "activity-registry.json")
}

func loadRegistry(t *testing.T) *registry.ActivityRegistry {
	t.Helper()
	reg, err := registry.LoadRegistry(registryFile(t))
	require.NoError(t, err)
	return reg
}

func TestValidateRegistry_ShippedFile(t *testing.T) {
	assert.NoError(t, validateRegistry(loadRegistry(t)))
}

func TestValidateRegistry_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *registry.ActivityRegistry)
		message string
	}{
		{"empty", func(r *registry.ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"missing display name", func(r *registry.ActivityRegistry) { r.Activities[0].DisplayName = "" }, "DisplayName"},
		{"bad timeout", func(r *registry.ActivityRegistry) { r.Activities[1].Timeout = "soon" }, "invalid timeout"},
		{"duplicate id", func(r *registry.ActivityRegistry) { r.Activities[1].ID = r.Activities[0].ID }, "duplicate activity ID"},
		{"worker not registered", func(r *registry.ActivityRegistry) { r.Activities = r.Activities[:2] }, "is not registered"},
		{"worker without schema", func(r *registry.ActivityRegistry) { r.Activities[0].InputSchema = nil }, "has no input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := loadRegistry(t)
			tt.mutate(reg)
			err := validateRegistry(reg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCheckVariables(t *testing.T) {
	reg := loadRegistry(t)

	assert.NoError(t, checkVariables(reg, "generate-recommendations", `{"campaignId":"c-1","budget":1000}`))

	err := checkVariables(reg, "generate-recommendations", `{"budget":"lots"}`)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	err = checkVariables(reg, "unknown-task", `{}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestUpdateActivity(t *testing.T) {
	reg := loadRegistry(t)
	id := reg.Activities[0].ID

	require.NoError(t, updateActivity(reg, id, "timeout", "90s"))
	require.NoError(t, updateActivity(reg, id, "retries", "5"))
	require.NoError(t, updateActivity(reg, id, "version", "1.1.0"))

	assert.Equal(t, "90s", reg.Activities[0].Timeout)
	assert.Equal(t, 5, reg.Activities[0].Retries)
	assert.Equal(t, "1.1.0", reg.Activities[0].Version)
	assert.NotEqual(t, "2026-10-01", reg.LastUpdated)

	assert.Error(t, updateActivity(reg, id, "timeout", "later"))
	assert.Error(t, updateActivity(reg, id, "retries", "-1"))
	assert.Error(t, updateActivity(reg, id, "retries", "many"))
	assert.Error(t, updateActivity(reg, id, "taskType", "x"))
	assert.Error(t, updateActivity(reg, "missing", "version", "2"))
}

func TestUpdateCommand_WritesFile(t *testing.T) {
	data, err := os.ReadFile(registryFile(t))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, data, 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"update", "--path", path, "--id", "explain-recommendation", "--field", "retries", "--value", "7"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Updated activity explain-recommendation")

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.FindByTaskType("explain-recommendation")
	require.True(t, ok)
	assert.Equal(t, 7, a.Retries)
}
