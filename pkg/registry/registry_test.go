package registry

import (
	"os"
	"path/filepath"
	"testing"

	"course-workers/internal/common/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ContainsWorkerActivities(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for _, taskType := range []string{"get-course-suggestions", "get-course-page"} {
		t.Run(taskType, func(t *testing.T) {
			a, ok := reg.Find(taskType)
			require.True(t, ok)
			assert.Equal(t, taskType, a.ID)
			assert.NoError(t, validation.CompileSchema(a.InputSchema))
			assert.NoError(t, validation.CompileSchema(a.OutputSchema))
			assert.True(t, a.DeclaresError("INVALID_INPUT"))
		})
	}
}

func TestFind_Unknown(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	_, ok := reg.Find("send-email")
	assert.False(t, ok)
	assert.Panics(t, func() { MustActivity("send-email") })
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"2","activities":[{"id":"a","taskType":"a"}]}`), 0o600))

	reg, err := LoadRegistry(path)

	require.NoError(t, err)
	assert.Equal(t, "2", reg.Version)
	require.Len(t, reg.Activities, 1)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte(`{"activities": 3}`))
	assert.Error(t, err)
}

func TestActivityRegistry_Validate(t *testing.T) {
	valid := func() *ActivityRegistry {
		return &ActivityRegistry{Activities: []Activity{
			{ID: "a", DisplayName: "A", TaskType: "a", Category: "catalog"},
			{ID: "b", DisplayName: "B", TaskType: "b", Category: "catalog", InputSchema: map[string]interface{}{"type": "object"}},
		}}
	}

	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{"valid", func(*ActivityRegistry) {}, ""},
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"missing name", func(r *ActivityRegistry) { r.Activities[0].DisplayName = "" }, "DisplayName"},
		{"duplicate id", func(r *ActivityRegistry) { r.Activities[1].ID = "a" }, "duplicate activity ID"},
		{"duplicate task type", func(r *ActivityRegistry) { r.Activities[1].TaskType = "a" }, "duplicate task type"},
		{"bad schema", func(r *ActivityRegistry) { r.Activities[1].InputSchema = map[string]interface{}{"type": 3} }, "input schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := valid()
			tt.mutate(reg)

			err := reg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	assert.NoError(t, reg.Validate())
}
