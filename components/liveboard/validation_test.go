package liveboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaValidatorRejectsInvalidArgs(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def, _ := NewToolRegistry().Definition(ToolCollectUserPrefs)

	require.NoError(t, validator.Validate(def, Args{"context": "setup", "requiredFields": []any{"theme"}}))

	err := validator.Validate(def, Args{})
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	assert.Equal(t, `❌ Error: Missing required parameter "context".`, err.Error())

	err = validator.Validate(def, Args{"context": "setup", "requiredFields": "theme"})
	require.Error(t, err)
	assert.True(t, IsRejection(err))
}

func TestJSONSchemaValidatorCachesCompiledSchemas(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := ToolDefinition{Name: "demo", Strict: true}
	require.NoError(t, validator.Validate(def, nil))
	assert.Len(t, validator.compiled, 1)
	require.NoError(t, validator.Validate(def, Args{}))
	assert.Len(t, validator.compiled, 1)
}
