// Package audit persists one JSON artifact per recommendation run. Artifacts
// are written once and never rewritten; reruns get fresh files.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satonodoka/herp-recommender/internal/normalize"
	"github.com/satonodoka/herp-recommender/internal/types"
)

// Record is the persisted shape: run identity plus the full diagnostic trail.
// Failed runs are recorded the same as successful ones.
type Record struct {
	RunID     uuid.UUID               `json:"run_id"`
	Timestamp time.Time               `json:"timestamp"`
	Result    *types.SubmissionResult `json:"result"`
}

// Writer drops run records into a directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter returns a Writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit dir: %w", err)
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// Write persists the result under a name derived from the posting title and
// returns the run ID and file path. The file is created exclusively; a name
// collision (same posting, same second) is an error rather than an overwrite.
func (w *Writer) Write(posting string, result *types.SubmissionResult) (uuid.UUID, string, error) {
	runID := uuid.New()
	rec := Record{RunID: runID, Timestamp: w.now().UTC(), Result: result}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("encoding audit record: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", FileStem(posting), rec.Timestamp.Format("20060102T150405"))
	path := filepath.Join(w.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("creating audit record: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return uuid.Nil, "", fmt.Errorf("writing audit record: %w", err)
	}
	return runID, path, nil
}

var unsafeChars = regexp.MustCompile(`[\s　/\\:*?"<>|（）()【】]+`)

// FileStem reduces a posting title to a filesystem-safe stem built on the
// title's core form, so reruns of the same posting sort together.
func FileStem(posting string) string {
	stem := normalize.CoreForm(posting)
	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "_"), "_")
	if stem == "" {
		return "run"
	}
	return stem
}
