package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonodoka/herp-recommender/internal/types"
)

func requiredField(name string) types.FormField {
	return types.FormField{Name: name, Type: types.FieldTypeText, Required: true}
}

func sampleResume() *types.ResumeFields {
	return &types.ResumeFields{
		Name:                  "田中 健太",
		Furigana:              "たなか けんた",
		Age:                   35,
		Phone:                 "090-1234-5678",
		Email:                 "tanaka@example.co.jp",
		RecommendationComment: "法人営業のチームリーダーとして推薦します。",
		CareerSummary:         "大手銀行で法人営業を担当。",
		CurrentCompany:        "XYZ株式会社",
		FinalEducation:        "早稲田大学商学部経営学科",
		Confidence:            100,
	}
}

func TestMapFieldsConsentTable(t *testing.T) {
	res := MapFields(Request{
		FormFields: []types.FormField{requiredField("応募者の同意確認")},
	})
	require.True(t, res.Success)
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, "同意あり", res.Mappings[0].Value)
	assert.Equal(t, types.SourceAutoConsent, res.Mappings[0].Source)
	assert.Equal(t, 100, res.Mappings[0].Confidence)
}

func TestMapFieldsAutoConsentFuzzy(t *testing.T) {
	ext := &types.ExtractionResult{
		AutoConsentFields: map[string]string{"候補者への告知": "告知済み"},
	}

	t.Run("exact key", func(t *testing.T) {
		res := MapFields(Request{
			FormFields: []types.FormField{requiredField("候補者への告知")},
			Extraction: ext,
		})
		require.True(t, res.Success)
		assert.Equal(t, "告知済み", res.Mappings[0].Value)
	})

	t.Run("substring either direction", func(t *testing.T) {
		res := MapFields(Request{
			FormFields: []types.FormField{requiredField("告知")},
			Extraction: ext,
		})
		require.True(t, res.Success)
		assert.Equal(t, "告知済み", res.Mappings[0].Value)
	})
}

func TestMapFieldsResumeAttributes(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"応募者氏名", "田中 健太"},
		{"フリガナ", "たなか けんた"},
		{"年齢", "35"},
		{"電話番号", "090-1234-5678"},
		{"メールアドレス", "tanaka@example.co.jp"},
		{"推薦時コメント", "法人営業のチームリーダーとして推薦します。"},
		{"経歴", "大手銀行で法人営業を担当。"},
		{"現所属", "XYZ株式会社"},
		{"最終学歴", "早稲田大学商学部経営学科"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			res := MapFields(Request{
				FormFields: []types.FormField{requiredField(tt.field)},
				Resume:     sampleResume(),
			})
			require.True(t, res.Success)
			assert.Equal(t, tt.want, res.Mappings[0].Value)
			assert.Equal(t, types.SourceResume, res.Mappings[0].Source)
			assert.Equal(t, 100, res.Mappings[0].Confidence)
		})
	}
}

func TestMapFieldsCareerDocumentExcluded(t *testing.T) {
	// The summary maps only to a field named exactly 経歴; the near-identical
	// upload field must stay unmapped rather than receive free text.
	res := MapFields(Request{
		FormFields: []types.FormField{requiredField("職務経歴書")},
		Resume:     sampleResume(),
	})
	require.False(t, res.Success)
	assert.Equal(t, []string{"職務経歴書"}, res.Unmapped)
	assert.Empty(t, res.Mappings[0].Value)
}

func TestMapFieldsMemoSalary(t *testing.T) {
	memo := "W送付 法人営業リーダー ※ 現年収：500万円 希望年収：700万円 最低希望年収：600万円"

	tests := []struct {
		field string
		want  string
	}{
		{"現年収", "500万円"},
		{"希望年収", "700万円"},
		{"最低希望年収", "600万円"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			res := MapFields(Request{
				FormFields: []types.FormField{requiredField(tt.field)},
				Memo:       memo,
			})
			require.True(t, res.Success)
			assert.Equal(t, tt.want, res.Mappings[0].Value)
			assert.Equal(t, types.SourceMemo, res.Mappings[0].Source)
			assert.Equal(t, 95, res.Mappings[0].Confidence)
		})
	}
}

func TestMapFieldsMemoCommentFallback(t *testing.T) {
	resume := sampleResume()
	resume.RecommendationComment = ""

	res := MapFields(Request{
		FormFields: []types.FormField{requiredField("推薦時コメント")},
		Resume:     resume,
		Memo:       "推薦理由：若手ながら成績トップの営業です",
	})
	require.True(t, res.Success)
	assert.Equal(t, "若手ながら成績トップの営業です", res.Mappings[0].Value)
	assert.Equal(t, types.SourceMemo, res.Mappings[0].Source)
	assert.Equal(t, 80, res.Mappings[0].Confidence, "memo comment scores below a resume-sourced one")
}

func TestMapFieldsHedgeConditions(t *testing.T) {
	res := MapFields(Request{
		FormFields: []types.FormField{requiredField("その他希望条件")},
		Memo:       "W送付 法人営業リーダー ※ 希望年収：700万円（面談で調整可）",
	})
	require.True(t, res.Success)
	assert.Equal(t, "面談で調整可", res.Mappings[0].Value)
	assert.Equal(t, types.SourceInferred, res.Mappings[0].Source)
	assert.Equal(t, 90, res.Mappings[0].Confidence)
}

func TestMapFieldsUnmappedFailsWhole(t *testing.T) {
	res := MapFields(Request{
		FormFields: []types.FormField{
			requiredField("応募者氏名"),
			requiredField("社内管理番号"),
		},
		Resume: sampleResume(),
	})

	require.False(t, res.Success)
	assert.Equal(t, []string{"社内管理番号"}, res.Unmapped)

	// The diagnostic trail still carries one mapping per required field.
	require.Len(t, res.Mappings, 2)
	assert.Equal(t, "田中 健太", res.Mappings[0].Value)
	assert.Empty(t, res.Mappings[1].Value)
}

func TestMapFieldsExtraRequiredPromotesOptional(t *testing.T) {
	res := MapFields(Request{
		FormFields: []types.FormField{
			{Name: "現年収", Type: types.FieldTypeText, Required: false},
		},
		Extraction: &types.ExtractionResult{ExtraRequiredFields: []string{"現年収"}},
		Memo:       "W送付 法人営業リーダー ※ 現年収：500万円",
	})
	require.True(t, res.Success)
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, "500万円", res.Mappings[0].Value)
}

func TestMapFieldsExtraRequiredWithoutFormField(t *testing.T) {
	res := MapFields(Request{
		FormFields: []types.FormField{requiredField("応募者氏名")},
		Resume:     sampleResume(),
		Extraction: &types.ExtractionResult{ExtraRequiredFields: []string{"最低希望年収"}},
	})
	require.True(t, res.Success, "an unbindable extra name warns instead of failing the form")
	assert.NotEmpty(t, res.Warnings)
}

func TestMapFieldsNoRequiredFields(t *testing.T) {
	res := MapFields(Request{
		FormFields: []types.FormField{{Name: "任意メモ", Type: types.FieldTypeTextarea}},
	})
	assert.True(t, res.Success)
	assert.Empty(t, res.Mappings)
}
