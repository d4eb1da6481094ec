package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty string", "", ""},
		{"Plain ASCII lowered", "Senior Backend Engineer", "seniorbackendengineer"},
		{"Full-width space removed", "営業　マネージャー", "営業マネージャー"},
		{"Half-width space removed", "営業 マネージャー", "営業マネージャー"},
		{"Interpunct folded to slash", "営業・企画", "営業/企画"},
		{"Full-width hyphen folded", "バック－エンド", "バック-エンド"},
		{"Minus sign folded", "バック−エンド", "バック-エンド"},
		{"Angle brackets folded to parens", "〈東京〉営業", "(東京)営業"},
		{"Full-width parens folded", "（東京）営業", "(東京)営業"},
		{"Full-width ASCII folded", "ＳＲＥ", "sre"},
		{"Case folded", "DevOps Engineer", "devopsengineer"},
		{"Tabs and newlines removed", "営業\t職\n", "営業職"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestStripDecoration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Empty string", "", ""},
		{"Lens brackets removed", "【急募】営業職", "急募営業職"},
		{"Stars removed", "★営業★", "営業"},
		{"Geometric symbols removed", "◆営業◇企画■", "営業企画"},
		{"Separator run collapsed", "営業--企画", "営業企画"},
		{"Interpunct run collapsed", "営業・・企画", "営業企画"},
		{"Leading separators trimmed", "/営業", "営業"},
		{"Trailing separators trimmed", "営業・", "営業"},
		{"Single interior separator kept", "営業/企画", "営業/企画"},
		{"Brackets then resulting run collapsed", "営業/【】/企画", "営業企画"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripDecoration(tt.input))
		})
	}
}

func TestIdempotence(t *testing.T) {
	inputs := []string{
		"",
		"【法人営業】リーダー候補・東京〈急募〉",
		"Ｓｅｎｉｏｒ　Ｅｎｇｉｎｅｅｒ",
		"営業・・マネージャー--候補★",
		"☆◆〈（【」」】）〉",
		"plain title",
	}

	for _, in := range inputs {
		n := Normalize(in)
		assert.Equal(t, n, Normalize(n), "Normalize must be idempotent for %q", in)

		s := StripDecoration(in)
		assert.Equal(t, s, StripDecoration(s), "StripDecoration must be idempotent for %q", in)

		// Core form is stable under repeated normalization.
		core := CoreForm(in)
		assert.Equal(t, core, StripDecoration(Normalize(core)), "CoreForm must be stable for %q", in)
	}
}
