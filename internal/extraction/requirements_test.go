package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferRequirements(t *testing.T) {
	tests := []struct {
		name       string
		notes      string
		wantFields []string
	}{
		{
			name:       "empty notes",
			notes:      "",
			wantFields: nil,
		},
		{
			name:       "current salary",
			notes:      "現年収：500万円",
			wantFields: []string{FieldCurrentSalary},
		},
		{
			name:       "current salary variant spelling",
			notes:      "現在年収 450万円",
			wantFields: []string{FieldCurrentSalary},
		},
		{
			name:       "desired salary without hedge",
			notes:      "希望年収：700万円",
			wantFields: []string{FieldDesiredSalary},
		},
		{
			name:       "desired salary with hedge adds other conditions",
			notes:      "希望年収：700万円（仮）",
			wantFields: []string{FieldDesiredSalary, FieldOtherConditions},
		},
		{
			name:       "minimum desired salary only",
			notes:      "最低希望年収：400万円",
			wantFields: []string{FieldMinDesiredSalary},
		},
		{
			name:       "current employer clause",
			notes:      "現職はフィンテック系の株式会社です",
			wantFields: []string{FieldCurrentEmployer},
		},
		{
			name:       "combined clauses",
			notes:      "現年収：500万円 希望年収：700万円（仮）",
			wantFields: []string{FieldCurrentSalary, FieldDesiredSalary, FieldOtherConditions},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := InferRequirements(tt.notes)
			assert.Equal(t, tt.wantFields, res.Fields)
		})
	}
}

func TestInferRequirementsZeroSalary(t *testing.T) {
	res := InferRequirements("現年収：0万円（退職済み）")
	assert.Equal(t, []string{FieldCurrentSalary}, res.Fields)
	assert.NotEmpty(t, res.Warnings, "zero salary is logged as the resignation case")
}

func TestInferRequirementsAllowList(t *testing.T) {
	t.Run("directive outside allow-list dropped", func(t *testing.T) {
		res := InferRequirements("「推薦文」必須")
		assert.Empty(t, res.Fields)
		assert.Len(t, res.Warnings, 1)
	})

	t.Run("document-like dropped term gets second warning", func(t *testing.T) {
		res := InferRequirements("「職務経歴書」必須")
		assert.Empty(t, res.Fields)
		assert.Len(t, res.Warnings, 2)
	})

	t.Run("allow-listed directive folds to canonical name", func(t *testing.T) {
		res := InferRequirements("「備考」記入")
		assert.Equal(t, []string{FieldOtherConditions}, res.Fields)
	})
}
