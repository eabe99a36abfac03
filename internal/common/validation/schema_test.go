package validation

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "matching-workers/internal/common/errors"
	"matching-workers/pkg/registry"
)

func loadProjectRegistry(t *testing.T) *registry.ActivityRegistry {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "configs", "activity-registry.json")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("activity registry not found: %v", err)
	}
	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	return reg
}

func TestValidator_ProjectRegistry(t *testing.T) {
	v, err := NewValidator(loadProjectRegistry(t))
	require.NoError(t, err)

	tests := []struct {
		name      string
		taskType  string
		variables string
		valid     bool
	}{
		{"generate minimal", "generate-recommendations", `{"campaignId":"c-1"}`, true},
		{"generate full", "generate-recommendations", `{"campaignId":"c-1","budget":5000,"targetAudience":{"gender":"female"},"requirements":{"categories":["beauty"]},"locations":["Hanoi"],"minFollowers":2000}`, true},
		{"generate missing campaign", "generate-recommendations", `{"budget":5000}`, false},
		{"generate wrong budget type", "generate-recommendations", `{"campaignId":"c-1","budget":"lots"}`, false},
		{"explain ok", "explain-recommendation", `{"campaignId":"c-1","candidateId":"k-1"}`, true},
		{"explain missing candidate", "explain-recommendation", `{"campaignId":"c-1"}`, false},
		{"digest ok", "send-recommendation-digest", `{"campaignId":"c-1","recipientEmail":"brand@example.com","limit":5}`, true},
		{"digest bad email", "send-recommendation-digest", `{"campaignId":"c-1","recipientEmail":"nope"}`, false},
		{"digest limit too high", "send-recommendation-digest", `{"campaignId":"c-1","recipientEmail":"brand@example.com","limit":500}`, false},
		{"unknown task type", "some-other-task", `{}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInput(tt.taskType, tt.variables)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestValidator_ReportsEveryField(t *testing.T) {
	reg, err := registry.ParseRegistry([]byte(`{
		"activities": [{
			"id": "a1",
			"taskType": "t1",
			"inputSchema": {
				"type": "object",
				"required": ["a", "b"],
				"properties": {"a": {"type": "string"}, "b": {"type": "integer"}}
			}
		}]
	}`))
	require.NoError(t, err)
	v, err := NewValidator(reg)
	require.NoError(t, err)

	err = v.ValidateInput("t1", `{"b":"x"}`)

	require.Error(t, err)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidJobInput, stdErr.Code)
	assert.Contains(t, stdErr.Details, "a")
	assert.Contains(t, stdErr.Details, "b:")
	assert.Contains(t, stdErr.Details, "; ")
}

func TestValidator_InvalidJSON(t *testing.T) {
	reg, err := registry.ParseRegistry([]byte(`{"activities":[{"id":"a1","taskType":"t1","inputSchema":{"type":"object"}}]}`))
	require.NoError(t, err)
	v, err := NewValidator(reg)
	require.NoError(t, err)

	err = v.ValidateInput("t1", `{"unterminated`)
	assert.True(t, apperrors.IsValidation(err))
}

func TestValidator_NilSafe(t *testing.T) {
	var v *Validator
	assert.NoError(t, v.ValidateInput("t1", `{}`))
	assert.False(t, v.HasSchema("t1"))

	empty, err := NewValidator(nil)
	require.NoError(t, err)
	assert.False(t, empty.HasSchema("generate-recommendations"))
}

func TestNewValidator_RejectsBadSchema(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{{
		ID:          "a1",
		TaskType:    "t1",
		InputSchema: map[string]interface{}{"type": 42},
	}}}

	_, err := NewValidator(reg)
	assert.Error(t, err)
}
