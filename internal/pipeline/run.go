// Package pipeline orchestrates a full recommendation run: job-name
// extraction, posting reconciliation, portal form discovery, resume decoding,
// and field mapping. Stages run strictly in order and the first failing stage
// ends the run: a partial submission is worse than none.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/satonodoka/herp-recommender/internal/audit"
	"github.com/satonodoka/herp-recommender/internal/extraction"
	"github.com/satonodoka/herp-recommender/internal/mapping"
	"github.com/satonodoka/herp-recommender/internal/matching"
	"github.com/satonodoka/herp-recommender/internal/pdftext"
	"github.com/satonodoka/herp-recommender/internal/portal"
	"github.com/satonodoka/herp-recommender/internal/resume"
	"github.com/satonodoka/herp-recommender/internal/types"
)

// minExtractionConfidence gates the run: below this the extracted title is
// not trusted enough to reconcile against live postings.
const minExtractionConfidence = 90

// Stage names reported in progress events.
const (
	StepExtraction = "extraction"
	StepPostings   = "postings"
	StepMatching   = "matching"
	StepSelection  = "selection"
	StepFormFields = "form_fields"
	StepResume     = "resume"
	StepMapping    = "mapping"
	StepAudit      = "audit"
)

// Progress levels, mirroring what operators see in the live log stream.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// ProgressEvent is one progress update during a run.
type ProgressEvent struct {
	Step    string `json:"step"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback receives progress updates as the run advances.
type ProgressCallback func(event ProgressEvent)

// TextExtractor decodes a resume document to text. Satisfied by pdftext.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (*pdftext.Result, error)
}

// ExtractorFunc adapts a function to the TextExtractor interface.
type ExtractorFunc func(ctx context.Context, path string) (*pdftext.Result, error)

func (f ExtractorFunc) Extract(ctx context.Context, path string) (*pdftext.Result, error) {
	return f(ctx, path)
}

// RunOptions holds everything one recommendation run needs.
type RunOptions struct {
	// UpstreamJSON is the raw upstream payload carrying the job title or memo.
	UpstreamJSON []byte
	// ResumePath points at the candidate's resume PDF.
	ResumePath string

	Portal    portal.Portal
	Extractor TextExtractor
	// Audit is optional; when set, every run leaves a record, failed or not.
	Audit *audit.Writer

	Log        zerolog.Logger
	OnProgress ProgressCallback
}

// Run executes the full pipeline. The returned SubmissionResult always
// carries the complete diagnostic trail; the error reports the failing stage
// when the run could not finish.
func Run(ctx context.Context, opts RunOptions) (*types.SubmissionResult, error) {
	result := &types.SubmissionResult{}

	// Stage 1: job-name extraction.
	emit(opts, StepExtraction, LevelInfo, "extracting job name from upstream payload", nil)
	ext := extraction.ExtractFromJSON(opts.UpstreamJSON)
	result.Extraction = ext
	result.Warnings = append(result.Warnings, ext.Warnings...)
	if !ext.Success {
		result.Errors = append(result.Errors, ext.Errors...)
		return fail(opts, result, StepExtraction, fmt.Errorf("job name extraction failed"))
	}
	if ext.Confidence < minExtractionConfidence {
		result.Errors = append(result.Errors,
			fmt.Sprintf("extraction confidence %d below threshold %d", ext.Confidence, minExtractionConfidence))
		return fail(opts, result, StepExtraction, fmt.Errorf("extraction confidence too low"))
	}
	emit(opts, StepExtraction, LevelSuccess,
		fmt.Sprintf("extracted job name %q (confidence %d)", ext.ExtractedTitle, ext.Confidence), ext)

	// Stage 2: live posting list.
	emit(opts, StepPostings, LevelInfo, "listing recommendable postings", nil)
	postings, err := opts.Portal.ListPostings(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return fail(opts, result, StepPostings, err)
	}
	result.AvailablePostings = postings
	emit(opts, StepPostings, LevelInfo, fmt.Sprintf("%d postings available", len(postings)), nil)

	// Stage 3: strict reconciliation.
	match := matching.Match(ext.ExtractedTitle, postings)
	result.Match = match
	result.Warnings = append(result.Warnings, match.Warnings...)
	if !match.Success {
		result.Errors = append(result.Errors, match.Errors...)
		if len(match.Alternatives) > 0 {
			return fail(opts, result, StepMatching,
				fmt.Errorf("ambiguous match: %d candidate postings", len(match.Alternatives)))
		}
		return fail(opts, result, StepMatching, fmt.Errorf("no posting matched %q", ext.ExtractedTitle))
	}
	result.MatchedPosting = match.MatchedTitle
	emit(opts, StepMatching, LevelSuccess,
		fmt.Sprintf("matched posting %q (%s, confidence %d)", match.MatchedTitle, match.MatchTier, match.Confidence), match)

	// Stage 4: open the posting's recommendation form.
	if err := opts.Portal.SelectPosting(ctx, match.MatchedTitle); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return fail(opts, result, StepSelection, err)
	}
	emit(opts, StepSelection, LevelInfo, "recommendation form opened", nil)

	// Stage 5: form field discovery.
	fields, err := opts.Portal.ReadFormFields(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return fail(opts, result, StepFormFields, err)
	}
	emit(opts, StepFormFields, LevelInfo, fmt.Sprintf("%d form fields discovered", len(fields)), fields)

	// Stage 6: resume decode and field extraction.
	emit(opts, StepResume, LevelInfo, "decoding resume document", nil)
	decoded, err := opts.Extractor.Extract(ctx, opts.ResumePath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return fail(opts, result, StepResume, err)
	}
	resumeFields := resume.Extract(decoded.Text)
	emit(opts, StepResume, LevelSuccess,
		fmt.Sprintf("resume decoded via %s (%d pages, confidence %d)", decoded.Method, decoded.PageCount, resumeFields.Confidence), nil)

	// Stage 7: field mapping with the all-or-nothing verdict.
	mapped := mapping.MapFields(mapping.Request{
		FormFields: fields,
		Resume:     resumeFields,
		Extraction: ext,
		Memo:       rawMemo(opts.UpstreamJSON),
	})
	result.FieldMappings = mapped.Mappings
	result.UnmappedRequiredFields = mapped.Unmapped
	result.Warnings = append(result.Warnings, mapped.Warnings...)
	if !mapped.Success {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%d required fields could not be mapped", len(mapped.Unmapped)))
		return fail(opts, result, StepMapping,
			fmt.Errorf("unmapped required fields: %v", mapped.Unmapped))
	}

	result.Success = true
	emit(opts, StepMapping, LevelSuccess,
		fmt.Sprintf("all %d required fields mapped", len(mapped.Mappings)), mapped)

	writeAudit(opts, result)
	opts.Log.Info().Str("posting", result.MatchedPosting).Msg("recommendation run succeeded")
	return result, nil
}

// fail finalizes a run at its failing stage. The audit record is written for
// failed runs too; the trail is the product even when the submission is not.
func fail(opts RunOptions, result *types.SubmissionResult, step string, err error) (*types.SubmissionResult, error) {
	emit(opts, step, LevelError, err.Error(), nil)
	writeAudit(opts, result)
	opts.Log.Error().Err(err).Str("step", step).Msg("recommendation run failed")
	return result, fmt.Errorf("%s: %w", step, err)
}

func writeAudit(opts RunOptions, result *types.SubmissionResult) {
	if opts.Audit == nil {
		return
	}
	stem := result.MatchedPosting
	if stem == "" && result.Extraction != nil {
		stem = result.Extraction.ExtractedTitle
	}
	runID, path, err := opts.Audit.Write(stem, result)
	if err != nil {
		opts.Log.Warn().Err(err).Msg("failed to write audit record")
		return
	}
	emit(opts, StepAudit, LevelInfo, fmt.Sprintf("audit record %s written to %s", runID, path), nil)
}

// rawMemo recovers the recruiter memo from the upstream payload for the
// mapper's salary and hedge clauses. Empty for the simple shape.
func rawMemo(data []byte) string {
	rec, err := extraction.ParseUpstreamRecord(data)
	if err != nil || rec.Kind != extraction.RecordNested {
		return ""
	}
	return rec.Record.RAMemoRaw
}

func emit(opts RunOptions, step, level, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Level: level, Message: message, Content: content})
	}
}
