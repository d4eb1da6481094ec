package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonodoka/herp-recommender/internal/types"
)

const listingHTML = `
<html><body>
<table class="agent-requisitions-table-list">
  <tr>
    <td class="agent-requisitions-table-list__cell --name"><a href="/jobs/1">法人営業（東京）</a></td>
    <td><button>この職種に推薦する</button></td>
  </tr>
  <tr>
    <td class="agent-requisitions-table-list__cell --name"><a href="/jobs/2"> バックエンドエンジニア </a></td>
    <td><button>この職種に推薦する</button></td>
  </tr>
  <tr>
    <td class="agent-requisitions-table-list__cell --name"><a href="/jobs/3">経理マネージャー</a></td>
    <td><button>詳細を見る</button></td>
  </tr>
</table>
</body></html>`

func TestParsePostings(t *testing.T) {
	postings, err := parsePostings(listingHTML)
	require.NoError(t, err)

	// Only rows with the recommend button are listed; titles are trimmed.
	assert.Equal(t, []string{"法人営業（東京）", "バックエンドエンジニア"}, postings)
}

func TestParsePostingsFallbackCell(t *testing.T) {
	html := `
<html><body><table>
  <tr>
    <td><a href="/jobs/9">データアナリスト</a></td>
    <td><button>この職種に推薦する</button></td>
  </tr>
</table></body></html>`

	postings, err := parsePostings(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"データアナリスト"}, postings)
}

func TestParsePostingsDeduplicates(t *testing.T) {
	html := `
<html><body><table>
  <tr>
    <td><a>法人営業</a></td>
    <td><button>この職種に推薦する</button><button>この職種に推薦する</button></td>
  </tr>
</table></body></html>`

	postings, err := parsePostings(html)
	require.NoError(t, err)
	assert.Equal(t, []string{"法人営業"}, postings)
}

func TestParsePostingsEmptyPage(t *testing.T) {
	postings, err := parsePostings("<html><body><p>読み込み中</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, postings)
}

const formHTML = `
<html><body>
<form>
  <input type="hidden" name="csrf" value="x">
  <label for="name-input">氏名【必須】</label>
  <input id="name-input" type="text" name="candidate_name">
  <input type="text" aria-label="フリガナ" aria-required="true" name="kana">
  <input type="text" placeholder="メールアドレス" name="email">
  <textarea name="推薦理由" required></textarea>
  <select name="応募者の同意確認"><option>同意あり</option></select>
  <input type="file" name="履歴書">
  <input type="submit" value="送信">
</form>
</body></html>`

func TestParseFormFields(t *testing.T) {
	fields, err := parseFormFields(formHTML)
	require.NoError(t, err)

	want := []types.FormField{
		{Name: "氏名", Type: types.FieldTypeText, Required: true},
		{Name: "フリガナ", Type: types.FieldTypeText, Required: true},
		{Name: "メールアドレス", Type: types.FieldTypeText, Required: false},
		{Name: "推薦理由", Type: types.FieldTypeTextarea, Required: true},
		{Name: "応募者の同意確認", Type: types.FieldTypeSelect, Required: false},
		{Name: "履歴書", Type: types.FieldTypeFile, Required: false},
	}
	assert.Equal(t, want, fields)
}

func TestParseFormFieldsDeduplicates(t *testing.T) {
	html := `
<html><body><form>
  <input type="text" aria-label="氏名">
  <input type="text" aria-label="氏名">
</form></body></html>`

	fields, err := parseFormFields(html)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "氏名", fields[0].Name)
}

func TestFieldLabelPrecedence(t *testing.T) {
	// aria-label beats the label element, which beats the placeholder.
	html := `
<html><body><form>
  <label for="f1">ラベル名</label>
  <input id="f1" type="text" aria-label="アリア名" placeholder="プレースホルダ名" name="attr_name">
</form></body></html>`

	fields, err := parseFormFields(html)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "アリア名", fields[0].Name)
}

func TestIsRequiredMarkerVariants(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"年齢（必須）", "年齢"},
		{"年齢[必須]", "年齢"},
		{"年齢 必須", "年齢"},
	}
	for _, tt := range tests {
		html := `<html><body><form><input type="text" aria-label="` + tt.label + `"></form></body></html>`
		fields, err := parseFormFields(html)
		require.NoError(t, err)
		require.Len(t, fields, 1, tt.label)
		assert.Equal(t, tt.want, fields[0].Name, tt.label)
		assert.True(t, fields[0].Required, tt.label)
	}
}
