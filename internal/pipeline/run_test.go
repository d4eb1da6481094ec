package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonodoka/herp-recommender/internal/audit"
	"github.com/satonodoka/herp-recommender/internal/pdftext"
	"github.com/satonodoka/herp-recommender/internal/types"
)

type fakePortal struct {
	postings []string
	fields   []types.FormField
	listErr  error

	selected string
}

func (p *fakePortal) ListPostings(ctx context.Context) ([]string, error) {
	return p.postings, p.listErr
}

func (p *fakePortal) SelectPosting(ctx context.Context, title string) error {
	p.selected = title
	return nil
}

func (p *fakePortal) ReadFormFields(ctx context.Context) ([]types.FormField, error) {
	return p.fields, nil
}

func fixedExtractor(text string) TextExtractor {
	return ExtractorFunc(func(ctx context.Context, path string) (*pdftext.Result, error) {
		return &pdftext.Result{Text: text, PageCount: 1, Method: pdftext.MethodPlainText}, nil
	})
}

const sampleResume = `履歴書
氏名　田中　健太
フリガナ　タナカ　ケンタ
年齢：35歳
電話番号：090-1234-5678
メール：tanaka@example.com

推薦理由
法人営業で10年の実績があり、即戦力として推薦いたします。
`

func TestRunFullSuccess(t *testing.T) {
	p := &fakePortal{
		postings: []string{"法人営業", "経理マネージャー"},
		fields: []types.FormField{
			{Name: "氏名", Type: types.FieldTypeText, Required: true},
			{Name: "フリガナ", Type: types.FieldTypeText, Required: true},
			{Name: "推薦理由", Type: types.FieldTypeTextarea, Required: true},
		},
	}
	writer, err := audit.NewWriter(t.TempDir())
	require.NoError(t, err)

	var events []ProgressEvent
	result, err := Run(context.Background(), RunOptions{
		UpstreamJSON: []byte(`{"name": "法人営業"}`),
		ResumePath:   "resume.pdf",
		Portal:       p,
		Extractor:    fixedExtractor(sampleResume),
		Audit:        writer,
		Log:          zerolog.Nop(),
		OnProgress:   func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "法人営業", result.MatchedPosting)
	assert.Equal(t, "法人営業", p.selected)
	assert.Equal(t, types.TierExact, result.Match.MatchTier)
	assert.Len(t, result.FieldMappings, 3)
	assert.Empty(t, result.UnmappedRequiredFields)

	// The trail ends with the audit record.
	require.NotEmpty(t, events)
	assert.Equal(t, StepAudit, events[len(events)-1].Step)
}

func TestRunStopsOnAmbiguousMatch(t *testing.T) {
	p := &fakePortal{
		postings: []string{"法人営業（東京）", "法人営業 (東京)"},
	}

	result, err := Run(context.Background(), RunOptions{
		UpstreamJSON: []byte(`{"name": "法人営業（東京）"}`),
		ResumePath:   "resume.pdf",
		Portal:       p,
		Extractor:    fixedExtractor(sampleResume),
		Log:          zerolog.Nop(),
	})
	require.Error(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, p.selected, "ambiguous match must not select a posting")
	assert.NotEmpty(t, result.Match.Alternatives)
}

func TestRunStopsOnPortalError(t *testing.T) {
	p := &fakePortal{listErr: errors.New("session expired")}

	result, err := Run(context.Background(), RunOptions{
		UpstreamJSON: []byte(`{"name": "法人営業"}`),
		Portal:       p,
		Extractor:    fixedExtractor(sampleResume),
		Log:          zerolog.Nop(),
	})
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0], "session expired")
}

func TestRunStopsOnExtractionFailure(t *testing.T) {
	var events []ProgressEvent
	result, err := Run(context.Background(), RunOptions{
		UpstreamJSON: []byte(`{"unknown": true}`),
		Portal:       &fakePortal{},
		Extractor:    fixedExtractor(sampleResume),
		Log:          zerolog.Nop(),
		OnProgress:   func(e ProgressEvent) { events = append(events, e) },
	})
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, result.Match, "matching must not run after a failed extraction")

	last := events[len(events)-1]
	assert.Equal(t, StepExtraction, last.Step)
	assert.Equal(t, LevelError, last.Level)
}

func TestRunFailsWhenRequiredFieldUnmapped(t *testing.T) {
	p := &fakePortal{
		postings: []string{"法人営業"},
		fields: []types.FormField{
			{Name: "氏名", Type: types.FieldTypeText, Required: true},
			{Name: "社内管理番号", Type: types.FieldTypeText, Required: true},
		},
	}

	result, err := Run(context.Background(), RunOptions{
		UpstreamJSON: []byte(`{"name": "法人営業"}`),
		ResumePath:   "resume.pdf",
		Portal:       p,
		Extractor:    fixedExtractor(sampleResume),
		Log:          zerolog.Nop(),
	})
	require.Error(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, []string{"社内管理番号"}, result.UnmappedRequiredFields)
	// The mapped fields are still reported for the diagnostic trail.
	assert.Len(t, result.FieldMappings, 2)
}
