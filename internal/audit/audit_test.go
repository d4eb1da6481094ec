package audit

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satonodoka/herp-recommender/internal/types"
)

func TestWriteRecord(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	result := &types.SubmissionResult{
		Success:        true,
		MatchedPosting: "法人営業（東京）",
	}
	runID, path, err := w.Write("法人営業（東京）", result)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, runID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, runID, rec.RunID)
	assert.True(t, rec.Result.Success)
	assert.Equal(t, "法人営業（東京）", rec.Result.MatchedPosting)
}

func TestWriteNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	// Pin the clock so both writes target the same file name.
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	_, _, err = w.Write("営業", &types.SubmissionResult{})
	require.NoError(t, err)
	_, _, err = w.Write("営業", &types.SubmissionResult{})
	assert.Error(t, err)
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"法人営業（東京）", "法人営業東京"},
		{"Backend Engineer / Go", "backendengineer_go"},
		{"（）", "run"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileStem(tt.in), tt.in)
	}
}
