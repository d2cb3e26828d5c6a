package validation

import (
	"testing"

	"course-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pageSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"userId"},
	"properties": map[string]interface{}{
		"userId":   map[string]interface{}{"type": "string", "minLength": 1},
		"pageSize": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 100},
	},
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]interface{}
		wantValid bool
		wantField string
	}{
		{"valid", map[string]interface{}{"userId": "u-1", "pageSize": 12}, true, ""},
		{"extra process variables allowed", map[string]interface{}{"userId": "u-1", "orderId": 7}, true, ""},
		{"missing user", map[string]interface{}{"pageSize": 12}, false, "userId"},
		{"page size too large", map[string]interface{}{"userId": "u-1", "pageSize": 500}, false, "pageSize"},
		{"wrong type", map[string]interface{}{"userId": 42}, false, "userId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Check(pageSchema, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid())
			if tt.wantField != "" {
				require.NotEmpty(t, res.Errors)
				assert.Contains(t, res.Messages()[0], tt.wantField)
			}
		})
	}
}

func TestCheck_EmptySchemaAcceptsAnything(t *testing.T) {
	res, err := Check(nil, map[string]interface{}{"anything": true})

	require.NoError(t, err)
	assert.True(t, res.Valid())
}

func TestValidate_ReturnsInvalidInput(t *testing.T) {
	err := Validate(pageSchema, map[string]interface{}{})

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "userId")
	assert.Contains(t, stdErr.Metadata, "validationErrors")
}

func TestValidate_AcceptsStructs(t *testing.T) {
	input := struct {
		UserID string `json:"userId"`
	}{UserID: "u-1"}

	assert.NoError(t, Validate(pageSchema, input))
}

func TestCompileSchema(t *testing.T) {
	assert.NoError(t, CompileSchema(pageSchema))
	assert.Error(t, CompileSchema(map[string]interface{}{"type": 12}))
}
