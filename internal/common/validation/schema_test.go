package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-workers/internal/models"
)

const rankInputSchema = `{
  "type": "object",
  "required": ["companyId", "userId"],
  "properties": {
    "companyId": {"type": "string", "minLength": 1},
    "userId": {"type": "string", "minLength": 1},
    "minScore": {"type": "number", "minimum": 0, "maximum": 105},
    "limit": {"type": "integer", "minimum": 1, "maximum": 100},
    "candidateIds": {"type": "array", "items": {"type": "string"}}
  }
}`

// ==========================
// JSON schema
// ==========================

func TestSchema_ValidateInput(t *testing.T) {
	schema, err := CompileSchemaJSON(rankInputSchema)
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     map[string]interface{}
		valid     bool
		badFields []string
	}{
		{
			name:  "valid",
			input: map[string]interface{}{"companyId": "c-1", "userId": "u-1", "limit": 10},
			valid: true,
		},
		{
			name:      "missing required",
			input:     map[string]interface{}{"companyId": "c-1"},
			badFields: []string{"userId"},
		},
		{
			name:      "out of range",
			input:     map[string]interface{}{"companyId": "c-1", "userId": "u-1", "limit": 500},
			badFields: []string{"limit"},
		},
		{
			name:      "wrong item type",
			input:     map[string]interface{}{"companyId": "c-1", "userId": "u-1", "candidateIds": []interface{}{"a", 3}},
			badFields: []string{"candidateIds.1"},
		},
		{
			name:      "nil input",
			input:     nil,
			badFields: []string{"companyId", "userId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := schema.ValidateInput(tt.input)
			assert.Equal(t, tt.valid, result.Valid, result.GetErrorMessages())
			for _, f := range tt.badFields {
				assert.True(t, result.HasErrors(f), "expected error on %s, got %v", f, result.GetErrorMessages())
			}
		})
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(nil)
	assert.Error(t, err)

	_, err = CompileSchemaJSON(`{"type": 12}`)
	assert.Error(t, err)

	_, err = CompileSchemaJSON(`not json`)
	assert.Error(t, err)
}

// ==========================
// Struct validation
// ==========================

func TestValidateStruct_CompanyProfile(t *testing.T) {
	employees := -3
	empty := ""
	profile := models.CompanyProfile{
		ID:             "c-1",
		Industry:       &empty,
		EmployeeCount:  &employees,
		Certifications: []string{"venture", ""},
	}

	result := ValidateStruct(profile)

	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("industry"))
	assert.True(t, result.HasErrors("employeeCount"))
	assert.Len(t, result.GetErrorsForField("certifications"), 1)
	assert.Contains(t, result.Summary(), "employeeCount: must be at least 0")
}

func TestValidateStruct_Valid(t *testing.T) {
	industry := "software"
	result := ValidateStruct(models.CompanyProfile{ID: "c-1", Industry: &industry})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateStruct_AnnouncementID(t *testing.T) {
	result := ValidateStruct(models.Announcement{Title: "R&D 지원"})
	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("id"))
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	result := ValidateStruct(42)
	assert.False(t, result.Valid)
	assert.Equal(t, "(root)", result.Errors[0].Field)
}

// ==========================
// Naming
// ==========================

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("recommendation.eligibility.evaluate"))
	assert.Error(t, ValidateActivityNaming("Recommendation.Evaluate"))
	assert.Error(t, ValidateActivityNaming("recommendation-evaluate"))
}
