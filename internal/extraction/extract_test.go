package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonodoka/herp-recommender/internal/types"
)

func nestedPayload(memo string) []byte {
	rec := `{"calib":{"record":{"ra_memo_raw":` + jsonString(memo) + `}}}`
	return []byte(rec)
}

func jsonString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

func TestParseUpstreamRecord(t *testing.T) {
	t.Run("simple shape wins over nested", func(t *testing.T) {
		rec, err := ParseUpstreamRecord([]byte(`{"name":"営業職","calib":{"record":{"ra_memo_raw":"x"}}}`))
		require.NoError(t, err)
		assert.Equal(t, RecordSimple, rec.Kind)
		assert.Equal(t, "営業職", rec.Title)
	})

	t.Run("nested shape", func(t *testing.T) {
		rec, err := ParseUpstreamRecord(nestedPayload("W送付 営業職 ※補足"))
		require.NoError(t, err)
		assert.Equal(t, RecordNested, rec.Kind)
		require.NotNil(t, rec.Record)
	})

	t.Run("neither shape", func(t *testing.T) {
		_, err := ParseUpstreamRecord([]byte(`{"something":"else"}`))
		assert.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseUpstreamRecord([]byte(`{`))
		assert.Error(t, err)
	})
}

func TestExtractJobNameSimple(t *testing.T) {
	result := ExtractFromJSON([]byte(`{"name":"  法人営業リーダー  "}`))
	require.True(t, result.Success)
	assert.Equal(t, "法人営業リーダー", result.ExtractedTitle)
	assert.Equal(t, 100, result.Confidence)
	assert.Equal(t, types.MethodNameField, result.Method)
	assert.Empty(t, result.Errors)
}

func TestExtractJobNameFromMemo(t *testing.T) {
	tests := []struct {
		name       string
		memo       string
		wantTitle  string
		wantConf   int
		wantOK     bool
		wantErrSub string
	}{
		{
			name:      "marker and delimiter",
			memo:      "W送付 Senior Backend Engineer ※ 現年収：500万円",
			wantTitle: "Senior Backend Engineer",
			wantConf:  95,
			wantOK:    true,
		},
		{
			name:      "delimiter absent takes remainder",
			memo:      "W送付 法人営業マネージャー",
			wantTitle: "法人営業マネージャー",
			wantConf:  95,
			wantOK:    true,
		},
		{
			name:      "role qualifier bumps confidence",
			memo:      "W送付 【リーダー候補】法人営業 ※備考",
			wantTitle: "【リーダー候補】法人営業",
			wantConf:  98,
			wantOK:    true,
		},
		{
			name:       "marker missing",
			memo:       "営業職の推薦です",
			wantOK:     false,
			wantErrSub: CodeExtractionFailed,
		},
		{
			name:       "title too short",
			memo:       "W送付 営業 ※",
			wantOK:     false,
			wantErrSub: "too short",
		},
		{
			name:       "title too long",
			memo:       "W送付 " + strings.Repeat("営", 101) + " ※",
			wantOK:     false,
			wantErrSub: "too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractFromJSON(nestedPayload(tt.memo))
			assert.Equal(t, tt.wantOK, result.Success)
			if tt.wantOK {
				assert.Equal(t, tt.wantTitle, result.ExtractedTitle)
				assert.Equal(t, tt.wantConf, result.Confidence)
				assert.Equal(t, types.MethodMemoPattern, result.Method)
			} else {
				require.NotEmpty(t, result.Errors)
				assert.Contains(t, result.Errors[0], tt.wantErrSub)
			}
		})
	}
}

func TestExtractMergesInferredRequirements(t *testing.T) {
	memo := "W送付 Senior Backend Engineer ※ 現年収：500万円 希望年収：700万円（仮）"
	result := ExtractFromJSON(nestedPayload(memo))
	require.True(t, result.Success)
	assert.Equal(t, "Senior Backend Engineer", result.ExtractedTitle)
	assert.Equal(t, 95, result.Confidence)
	assert.Equal(t,
		[]string{FieldCurrentSalary, FieldDesiredSalary, FieldOtherConditions},
		result.ExtraRequiredFields)
}

func TestExtractKintoneSideChannel(t *testing.T) {
	t.Run("flag present honors list and consent map", func(t *testing.T) {
		payload := []byte(`{"calib":{"record":{
			"ra_memo_raw":"W送付 法人営業リーダー ※",
			"extra_fields_flag":"追加指定項目あり",
			"extra_fields":["現年収","最終学歴"],
			"auto_consent":{"応募者の同意確認":"同意あり"}}}}`)
		result := ExtractFromJSON(payload)
		require.True(t, result.Success)
		assert.Equal(t, []string{"現年収", "最終学歴"}, result.ExtraRequiredFields)
		assert.Equal(t, map[string]string{"応募者の同意確認": "同意あり"}, result.AutoConsentFields)
	})

	t.Run("flag absent ignores stale list", func(t *testing.T) {
		payload := []byte(`{"calib":{"record":{
			"ra_memo_raw":"W送付 法人営業リーダー ※",
			"extra_fields":["現年収"]}}}`)
		result := ExtractFromJSON(payload)
		require.True(t, result.Success)
		assert.Empty(t, result.ExtraRequiredFields)
		assert.NotEmpty(t, result.Warnings)
	})
}

func TestTrailingNotes(t *testing.T) {
	assert.Equal(t, " 現年収：500万円", TrailingNotes("W送付 営業職 ※ 現年収：500万円"))
	assert.Equal(t, "", TrailingNotes("W送付 営業職"))
}
