// Package mapping resolves every required form field to a value through a
// fixed precedence cascade, then applies a zero-tolerance verdict: a single
// required field left without a value fails the whole submission. Partial
// forms are never produced.
package mapping

import (
	"sort"
	"strconv"
	"strings"

	"github.com/satonodoka/herp-recommender/internal/extraction"
	"github.com/satonodoka/herp-recommender/internal/types"
)

// Cascade confidences. Memo-sourced values score below auto-consent, and the
// memo comment fallback scores below a comment read from the resume.
const (
	confidenceConsent      = 100
	confidenceMemoSalary   = 95
	confidenceMemoComment  = 80
	confidenceMemoEmployer = 95
	confidenceHedge        = 90
)

// consentResponses maps known consent/acknowledgement field names to their
// fixed canonical answers. These are never sourced from the resume.
var consentResponses = map[string]string{
	"応募者の同意確認":      "同意あり",
	"個人情報の取り扱いについて": "同意する",
	"推薦にあたっての確認事項":  "確認済み",
}

type attributeRule struct {
	keyword string
	// exact restricts the rule to fields named exactly keyword. Used for 経歴
	// so the 職務経歴書 upload field can never receive the free-text summary.
	exact bool
	value func(*types.ResumeFields) string
}

// attributeRules is the fixed field-name keyword → resume attribute table.
// First matching rule with a non-empty value wins.
var attributeRules = []attributeRule{
	{keyword: "フリガナ", value: func(f *types.ResumeFields) string { return f.Furigana }},
	{keyword: "ふりがな", value: func(f *types.ResumeFields) string { return f.Furigana }},
	{keyword: "氏名", value: func(f *types.ResumeFields) string { return f.Name }},
	{keyword: "名前", value: func(f *types.ResumeFields) string { return f.Name }},
	{keyword: "年齢", value: func(f *types.ResumeFields) string {
		if f.Age == 0 {
			return ""
		}
		return strconv.Itoa(f.Age)
	}},
	{keyword: "電話", value: func(f *types.ResumeFields) string { return f.Phone }},
	{keyword: "メール", value: func(f *types.ResumeFields) string { return f.Email }},
	{keyword: "推薦", value: func(f *types.ResumeFields) string { return f.RecommendationComment }},
	{keyword: "経歴", exact: true, value: func(f *types.ResumeFields) string { return f.CareerSummary }},
	{keyword: "現所属", value: func(f *types.ResumeFields) string { return f.CurrentCompany }},
	{keyword: "最終学歴", value: func(f *types.ResumeFields) string { return f.FinalEducation }},
}

// memoCommentPatterns recover a recommendation comment from the memo when the
// resume carried none. Looser than the resume section collector.
var memoCommentPatterns = []string{"推薦理由", "推薦コメント", "コメント"}

// Request bundles everything the mapper may draw on for one submission.
type Request struct {
	FormFields []types.FormField
	Resume     *types.ResumeFields
	Extraction *types.ExtractionResult
	// Memo is the raw recruiter memo; salary and hedge clauses are resolved
	// from its trailing-notes region.
	Memo string
}

// Result is the mapper's full outcome. Mappings holds one entry per required
// field, including the unresolved ones, for the diagnostic trail.
type Result struct {
	Success  bool                 `json:"success"`
	Mappings []types.FieldMapping `json:"mappings"`
	Unmapped []string             `json:"unmapped,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`
}

// MapFields resolves each required field through the cascade and returns the
// verdict. Required means flagged by the portal or named by the extraction's
// extra-required list.
func MapFields(req Request) *Result {
	res := &Result{}
	notes := extraction.TrailingNotes(req.Memo)

	for _, name := range requiredNames(req, res) {
		m := resolveField(name, req, notes)
		res.Mappings = append(res.Mappings, m)
		if m.Value == "" {
			res.Unmapped = append(res.Unmapped, name)
		}
	}

	res.Success = len(res.Unmapped) == 0
	return res
}

// requiredNames collects the required field names in form order. Extra
// required names mark matching form fields as mandatory; an extra name with
// no form field at all is surfaced as a warning, not silently dropped.
func requiredNames(req Request, res *Result) []string {
	extra := map[string]bool{}
	if req.Extraction != nil {
		for _, n := range req.Extraction.ExtraRequiredFields {
			extra[n] = true
		}
	}

	var names []string
	seen := map[string]bool{}
	matched := map[string]bool{}
	for _, f := range req.FormFields {
		required := f.Required
		for n := range extra {
			if strings.Contains(f.Name, n) || strings.Contains(n, f.Name) {
				required = true
				matched[n] = true
			}
		}
		if required && !seen[f.Name] {
			names = append(names, f.Name)
			seen[f.Name] = true
		}
	}

	var unmatched []string
	for n := range extra {
		if !matched[n] {
			unmatched = append(unmatched, n)
		}
	}
	sort.Strings(unmatched)
	for _, n := range unmatched {
		res.Warnings = append(res.Warnings, "required field has no form field to bind to: "+n)
	}
	return names
}

func resolveField(name string, req Request, notes string) types.FieldMapping {
	m := types.FieldMapping{FieldName: name}

	if v, ok := consentResponses[name]; ok {
		return fill(m, v, types.SourceAutoConsent, confidenceConsent)
	}
	if req.Extraction != nil {
		if v, ok := lookupAutoConsent(name, req.Extraction.AutoConsentFields); ok {
			return fill(m, v, types.SourceAutoConsent, confidenceConsent)
		}
	}
	if v, ok := resumeAttribute(name, req.Resume); ok {
		conf := 0
		if req.Resume != nil {
			conf = req.Resume.Confidence
		}
		return fill(m, v, types.SourceResume, conf)
	}
	if v, ok := memoSalary(name, notes); ok {
		return fill(m, v, types.SourceMemo, confidenceMemoSalary)
	}
	if v, ok := memoEmployer(name, req.Resume, notes); ok {
		return fill(m, v, types.SourceMemo, confidenceMemoEmployer)
	}
	if v, ok := memoComment(name, req.Resume, req.Memo); ok {
		return fill(m, v, types.SourceMemo, confidenceMemoComment)
	}
	if v, ok := hedgeConditions(name, notes); ok {
		return fill(m, v, types.SourceInferred, confidenceHedge)
	}
	return m
}

func fill(m types.FieldMapping, value string, source types.MappingSource, confidence int) types.FieldMapping {
	m.Value = value
	m.Source = source
	m.Confidence = confidence
	return m
}

// lookupAutoConsent tries an exact key, then substring containment in either
// direction. Keys are walked in sorted order so fuzzy resolution is stable.
func lookupAutoConsent(name string, consent map[string]string) (string, bool) {
	if v, ok := consent[name]; ok {
		return v, true
	}
	keys := make([]string, 0, len(consent))
	for k := range consent {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(k, name) || strings.Contains(name, k) {
			return consent[k], true
		}
	}
	return "", false
}

func resumeAttribute(name string, f *types.ResumeFields) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, rule := range attributeRules {
		if rule.exact {
			if name != rule.keyword {
				continue
			}
		} else if !strings.Contains(name, rule.keyword) {
			continue
		}
		if v := rule.value(f); v != "" {
			return v, true
		}
	}
	return "", false
}

// memoSalary fills salary fields from the trailing notes. 最低希望年収 is
// checked before 希望年収 because the former contains the latter.
func memoSalary(name, notes string) (string, bool) {
	salaries := extraction.SalaryClauses(notes)
	var v string
	switch {
	case strings.Contains(name, extraction.FieldMinDesiredSalary):
		v = salaries[extraction.FieldMinDesiredSalary]
	case strings.Contains(name, extraction.FieldDesiredSalary):
		v = salaries[extraction.FieldDesiredSalary]
	case strings.Contains(name, "現年収") || strings.Contains(name, "現在年収"):
		v = salaries[extraction.FieldCurrentSalary]
	}
	return v, v != ""
}

func memoEmployer(name string, f *types.ResumeFields, notes string) (string, bool) {
	if !strings.Contains(name, "現所属") && !strings.Contains(name, "現職") {
		return "", false
	}
	if f != nil && f.CurrentCompany != "" {
		return "", false
	}
	return extraction.CurrentEmployer(notes)
}

// memoComment is the step-five fallback: a recommendation comment pulled out
// of the memo itself when the resume had none.
func memoComment(name string, f *types.ResumeFields, memo string) (string, bool) {
	if !strings.Contains(name, "推薦") && !strings.Contains(name, "コメント") {
		return "", false
	}
	if f != nil && f.RecommendationComment != "" {
		return "", false
	}
	for _, label := range memoCommentPatterns {
		_, after, found := strings.Cut(memo, label)
		if !found {
			continue
		}
		after = strings.TrimLeft(after, ":： \t")
		if v := strings.TrimSpace(after); v != "" {
			return v, true
		}
	}
	return "", false
}

func hedgeConditions(name, notes string) (string, bool) {
	if !strings.Contains(name, extraction.FieldOtherConditions) && !strings.Contains(name, "備考") {
		return "", false
	}
	return extraction.BracketedHedge(notes)
}
