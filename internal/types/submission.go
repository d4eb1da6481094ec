// Package types defines the shared data structures passed between pipeline stages.
package types

// UpstreamRecord is the raw JSON payload delivered by the upstream recruiting
// system. It comes in one of two shapes: a simple {"name": ...} record, or a
// nested kintone-style record carrying the recruiter memo and side-channel
// field directives. Parse it with extraction.ParseUpstreamRecord to get a
// tagged variant instead of probing fields.
type UpstreamRecord struct {
	// Simple shape: the job title directly.
	Name string `json:"name,omitempty"`

	// Nested shape: kintone-style calibration payload.
	Calib *CalibPayload `json:"calib,omitempty"`
}

// CalibPayload wraps the kintone-style record in the nested upstream shape.
type CalibPayload struct {
	Record *CalibRecord `json:"record,omitempty"`
}

// CalibRecord is the kintone-style record inside the nested upstream shape.
type CalibRecord struct {
	// RAMemoRaw is the free-text recruiter memo. The job title sits between
	// the send marker and the ※ delimiter; trailing notes follow.
	RAMemoRaw string `json:"ra_memo_raw"`

	// RecordKind tags the record variant upstream ("推薦" etc.); informational.
	RecordKind string `json:"record_kind,omitempty"`

	// ExtraFieldsFlag gates ExtraFields. The list is honored only when this
	// equals the literal 追加指定項目あり marker, so stale lists are ignored.
	ExtraFieldsFlag string `json:"extra_fields_flag,omitempty"`

	// ExtraFields are recruiter-specified additional required field names.
	ExtraFields []string `json:"extra_fields,omitempty"`

	// AutoConsent maps form field names to fixed answers supplied out-of-band,
	// used to pre-satisfy consent/acknowledgement fields.
	AutoConsent map[string]string `json:"auto_consent,omitempty"`
}

// ExtractionMethod identifies which upstream shape produced the job title.
type ExtractionMethod string

const (
	// MethodNameField means the simple {"name": ...} shape was used.
	MethodNameField ExtractionMethod = "simple_name_field"
	// MethodMemoPattern means the title was captured out of the recruiter memo.
	MethodMemoPattern ExtractionMethod = "memo_pattern"
)

// ExtractionResult is the outcome of job-name extraction over an UpstreamRecord.
type ExtractionResult struct {
	Success        bool             `json:"success"`
	ExtractedTitle string           `json:"extracted_title,omitempty"`
	Confidence     int              `json:"confidence"`
	Method         ExtractionMethod `json:"method,omitempty"`
	Warnings       []string         `json:"warnings,omitempty"`
	Errors         []string         `json:"errors,omitempty"`

	// ExtraRequiredFields are canonical field names that must be treated as
	// mandatory in addition to the portal's own required flags. Union of the
	// gated kintone list and the requirement-inference output, de-duplicated.
	ExtraRequiredFields []string `json:"extra_required_fields,omitempty"`

	// AutoConsentFields is the verbatim auto-consent map from the record.
	AutoConsentFields map[string]string `json:"auto_consent_fields,omitempty"`
}

// MatchTier is the strictness level at which a posting matched the title.
type MatchTier string

const (
	TierExact      MatchTier = "exact"
	TierNormalized MatchTier = "normalized"
	TierCore       MatchTier = "core"
	TierSubset     MatchTier = "subset"
	TierNone       MatchTier = "none"
)

// MatchResult is the outcome of reconciling an extracted title against the
// live posting list. When Success is false and Alternatives is non-empty the
// match was rejected for ambiguity; the tied titles are listed verbatim.
type MatchResult struct {
	Success      bool      `json:"success"`
	MatchedTitle string    `json:"matched_title,omitempty"`
	MatchTier    MatchTier `json:"match_tier"`
	Confidence   int       `json:"confidence"`
	Alternatives []string  `json:"alternatives,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
	Errors       []string  `json:"errors,omitempty"`
}

// DateEntry is one dated line from the resume's education or career section.
type DateEntry struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Content string `json:"content"`
}

// ResumeFields holds everything recovered from the decoded resume text.
// Entries are appended during a single linear scan and never mutated after
// extraction; derivation only sorts copies.
type ResumeFields struct {
	Name                  string      `json:"name,omitempty"`
	Furigana              string      `json:"furigana,omitempty"`
	Age                   int         `json:"age,omitempty"`
	Phone                 string      `json:"phone,omitempty"`
	Email                 string      `json:"email,omitempty"`
	RecommendationComment string      `json:"recommendation_comment,omitempty"`
	CareerSummary         string      `json:"career_summary,omitempty"`
	EducationEntries      []DateEntry `json:"education_entries,omitempty"`
	CareerEntries         []DateEntry `json:"career_entries,omitempty"`

	// CurrentCompany and FinalEducation are derived from the chronological
	// entries (most recent joining line / most recent graduation line).
	CurrentCompany string `json:"current_company,omitempty"`
	FinalEducation string `json:"final_education,omitempty"`

	// EducationRawLines and CareerRawLines keep substantive but undated
	// section lines for diagnostics.
	EducationRawLines []string `json:"education_raw_lines,omitempty"`
	CareerRawLines    []string `json:"career_raw_lines,omitempty"`

	// Confidence is the maximum of the per-field confidences: one strong
	// signal is enough to call the document readable.
	Confidence int `json:"confidence"`
}

// FieldType classifies a portal form field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeFile     FieldType = "file"
)

// FormField is one field scraped from the portal's recommendation form.
type FormField struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// MappingSource says where a field value came from.
type MappingSource string

const (
	SourceAutoConsent MappingSource = "auto-consent"
	SourceResume      MappingSource = "resume"
	SourceMemo        MappingSource = "memo"
	SourceInferred    MappingSource = "inferred"
)

// FieldMapping is one resolved (or unresolved) required form field.
// An empty Value is a first-class outcome, not an error.
type FieldMapping struct {
	FieldName  string        `json:"field_name"`
	Value      string        `json:"value"`
	Source     MappingSource `json:"source,omitempty"`
	Confidence int           `json:"confidence"`
}

// SubmissionResult is the full diagnostic trail returned to the caller.
type SubmissionResult struct {
	Success                bool              `json:"success"`
	MatchedPosting         string            `json:"matched_posting,omitempty"`
	Extraction             *ExtractionResult `json:"extraction,omitempty"`
	Match                  *MatchResult      `json:"match,omitempty"`
	AvailablePostings      []string          `json:"available_postings,omitempty"`
	FieldMappings          []FieldMapping    `json:"field_mappings,omitempty"`
	UnmappedRequiredFields []string          `json:"unmapped_required_fields,omitempty"`
	Errors                 []string          `json:"errors,omitempty"`
	Warnings               []string          `json:"warnings,omitempty"`
}
