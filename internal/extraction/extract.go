// Package extraction resolves the target job title and the derived
// required-field directives from an upstream recruiting payload. Expected
// failure modes (unrecognizable shape, missing marker, length bounds) are
// reported inside ExtractionResult, never as Go errors.
package extraction

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/satonodoka/herp-recommender/internal/types"
)

// Error code prefixes carried in ExtractionResult.Errors.
const (
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeExtractionFailed = "EXTRACTION_FAILED"
)

const (
	// memoMarker precedes the job title inside the recruiter memo.
	memoMarker = "W送付"
	// memoDelimiter terminates the title; the rest of the memo is trailing notes.
	memoDelimiter = "※"
	// extraFieldsMarker gates the kintone extra-fields list. Without this
	// literal flag value the list is treated as stale and ignored.
	extraFieldsMarker = "追加指定項目あり"

	// Title sanity bounds, in runes. Shorter risks false-positive matches
	// downstream; longer indicates the capture ran away.
	minTitleLen = 3
	maxTitleLen = 100

	confidenceSimple    = 100
	confidenceMemo      = 95
	confidenceQualifier = 3
)

// Title between marker and delimiter.
var memoTitlePattern = regexp.MustCompile(memoMarker + `\s*(.+?)\s*` + memoDelimiter)

// RecordKind tags which upstream variant a payload parsed as.
type RecordKind int

const (
	// RecordSimple is the flat {"name": ...} shape.
	RecordSimple RecordKind = iota
	// RecordNested is the kintone-style shape carrying the recruiter memo.
	RecordNested
)

// ParsedRecord is the tagged result of upstream shape detection.
type ParsedRecord struct {
	Kind   RecordKind
	Title  string             // set for RecordSimple
	Record *types.CalibRecord // set for RecordNested
}

// ParseUpstreamRecord decodes raw JSON and detects which of the two supported
// shapes it is, in order: the simple name field short-circuits the nested
// shape. The result is a tagged variant; callers never probe raw properties.
func ParseUpstreamRecord(data []byte) (*ParsedRecord, error) {
	var rec types.UpstreamRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("upstream payload is not valid JSON: %w", err)
	}

	if strings.TrimSpace(rec.Name) != "" {
		return &ParsedRecord{Kind: RecordSimple, Title: strings.TrimSpace(rec.Name)}, nil
	}
	if rec.Calib != nil && rec.Calib.Record != nil {
		return &ParsedRecord{Kind: RecordNested, Record: rec.Calib.Record}, nil
	}
	return nil, fmt.Errorf("upstream payload matches neither supported shape")
}

// ExtractJobName produces the ExtractionResult for a parsed upstream record:
// the job title, its confidence, and the merged extra-required-field and
// auto-consent directives.
func ExtractJobName(rec *ParsedRecord) *types.ExtractionResult {
	result := &types.ExtractionResult{}

	switch rec.Kind {
	case RecordSimple:
		result.Success = true
		result.ExtractedTitle = rec.Title
		result.Confidence = confidenceSimple
		result.Method = types.MethodNameField
		return result

	case RecordNested:
		extractFromMemo(rec.Record, result)
		return result
	}

	result.Errors = append(result.Errors, CodeInvalidFormat+": unknown record kind")
	return result
}

// ExtractFromJSON is the convenience entry: parse then extract. JSON-level
// failures come back inside the result so callers have a single trail.
func ExtractFromJSON(data []byte) *types.ExtractionResult {
	rec, err := ParseUpstreamRecord(data)
	if err != nil {
		return &types.ExtractionResult{
			Errors: []string{CodeInvalidFormat + ": " + err.Error()},
		}
	}
	return ExtractJobName(rec)
}

func extractFromMemo(record *types.CalibRecord, result *types.ExtractionResult) {
	memo := record.RAMemoRaw
	if strings.TrimSpace(memo) == "" {
		result.Errors = append(result.Errors, CodeInvalidFormat+": recruiter memo is empty")
		return
	}

	title, ok := captureTitle(memo)
	if !ok {
		result.Errors = append(result.Errors,
			CodeExtractionFailed+": send marker not found in recruiter memo")
		return
	}

	switch n := utf8.RuneCountInString(title); {
	case n < minTitleLen:
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: extracted title too short (%d runes)", CodeInvalidFormat, n))
		return
	case n > maxTitleLen:
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: extracted title too long (%d runes)", CodeInvalidFormat, n))
		return
	}

	result.Success = true
	result.ExtractedTitle = title
	result.Confidence = confidenceMemo
	result.Method = types.MethodMemoPattern

	if strings.Contains(title, "【") && strings.Contains(title, "】") {
		result.Confidence += confidenceQualifier
		result.Warnings = append(result.Warnings, "title contains a role-qualifier bracket")
	}

	// Kintone side-channel: the explicit list is honored only behind its flag.
	if record.ExtraFieldsFlag == extraFieldsMarker {
		result.ExtraRequiredFields = appendUnique(result.ExtraRequiredFields, record.ExtraFields...)
	} else if len(record.ExtraFields) > 0 {
		result.Warnings = append(result.Warnings,
			"extra fields present without the 追加指定項目あり flag; ignored")
	}
	if len(record.AutoConsent) > 0 {
		result.AutoConsentFields = make(map[string]string, len(record.AutoConsent))
		for k, v := range record.AutoConsent {
			result.AutoConsentFields[k] = v
		}
	}

	// Requirements are inferred from the trailing notes only; everything
	// before the delimiter is the title region and is never scanned.
	inferred := InferRequirements(TrailingNotes(memo))
	result.ExtraRequiredFields = appendUnique(result.ExtraRequiredFields, inferred.Fields...)
	result.Warnings = append(result.Warnings, inferred.Warnings...)
}

func captureTitle(memo string) (string, bool) {
	if m := memoTitlePattern.FindStringSubmatch(memo); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	// No delimiter: the remainder of the memo is the title.
	if _, after, found := strings.Cut(memo, memoMarker); found {
		if title := strings.TrimSpace(after); title != "" {
			return title, true
		}
	}
	return "", false
}

// TrailingNotes returns the memo text after the first delimiter, or the empty
// string when no delimiter is present (the whole memo was the title region).
func TrailingNotes(memo string) string {
	if _, after, found := strings.Cut(memo, memoDelimiter); found {
		return after
	}
	return ""
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		dst = append(dst, v)
	}
	return dst
}
