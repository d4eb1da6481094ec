package extraction

import (
	"regexp"
	"strings"
)

// Canonical field names produced by requirement inference. These are the only
// names the engine may emit; the allow-list below keeps a few synonyms that
// fold into them.
const (
	FieldCurrentSalary    = "現年収"
	FieldDesiredSalary    = "希望年収"
	FieldMinDesiredSalary = "最低希望年収"
	FieldOtherConditions  = "その他希望条件"
	FieldCurrentEmployer  = "現所属"
)

// requirementAllowList maps every acceptable candidate field name to its
// canonical form. Anything outside this table is dropped: the memo is
// free text and over-broad inference would silently force unrelated fields.
var requirementAllowList = map[string]string{
	"現年収":     FieldCurrentSalary,
	"現在年収":    FieldCurrentSalary,
	"希望年収":    FieldDesiredSalary,
	"最低希望年収":  FieldMinDesiredSalary,
	"その他希望条件": FieldOtherConditions,
	"備考":      FieldOtherConditions,
	"現所属":     FieldCurrentEmployer,
	"現職":      FieldCurrentEmployer,
}

// ambiguousDroppedTerm flags dropped candidates that look like document,
// skill, or education references. Those are deliberately never auto-honored:
// forcing a document-upload field required by accident is worse than asking
// the operator.
var ambiguousDroppedTerm = regexp.MustCompile(`資格|スキル|学歴|書類|職務経歴書|履歴書`)

var (
	currentSalaryClause = regexp.MustCompile(`(?:現年収|現在年収)[：:]?\s*([0-9０-９,，]+)\s*万円`)
	// (?:^|[^低]) keeps 最低希望年収 from also counting as a 希望年収 clause.
	desiredSalaryClause = regexp.MustCompile(`(?:^|[^低])希望年収[：:]?\s*([0-9０-９,，]+)\s*万円`)
	// A parenthetical hedge right after the desired salary (e.g. （仮）,
	// （面談で確認）) means conditions are still open.
	desiredSalaryHedge    = regexp.MustCompile(`(?:^|[^低])希望年収[：:]?\s*[0-9０-９,，]+\s*万円\s*[（(]([^）)]+)[）)]`)
	minDesiredClause      = regexp.MustCompile(`最低希望年収[：:]?\s*([0-9０-９,，]+)\s*万円`)
	currentEmployerClause = regexp.MustCompile(`現職は\s*(.{1,40}?会社)`)
	// Recruiter directives like 「年収証明書」必須 nominate arbitrary field
	// names; they go through the allow-list like everything else.
	explicitDirective = regexp.MustCompile(`「([^」]+)」\s*(?:必須|記入|入力)`)

	zeroAmount = regexp.MustCompile(`^[0０]+$`)
)

// InferenceResult carries the derived required-field names plus the warnings
// accumulated while scanning.
type InferenceResult struct {
	Fields   []string
	Warnings []string
}

// InferRequirements scans the trailing-notes region of the recruiter memo
// (the text after the ※ delimiter; callers must not pass the title region)
// and derives form fields that must be treated as mandatory.
func InferRequirements(notes string) InferenceResult {
	var res InferenceResult
	if strings.TrimSpace(notes) == "" {
		return res
	}

	var candidates []string

	if m := currentSalaryClause.FindStringSubmatch(notes); m != nil {
		candidates = append(candidates, FieldCurrentSalary)
		if zeroAmount.MatchString(strings.Trim(m[1], ",，")) {
			res.Warnings = append(res.Warnings,
				"current salary is zero (already resigned); field still required")
		}
	}

	if desiredSalaryClause.MatchString(notes) {
		candidates = append(candidates, FieldDesiredSalary)
		if desiredSalaryHedge.MatchString(notes) {
			candidates = append(candidates, FieldOtherConditions)
		}
	}

	if minDesiredClause.MatchString(notes) {
		candidates = append(candidates, FieldMinDesiredSalary)
	}

	if currentEmployerClause.MatchString(notes) {
		candidates = append(candidates, FieldCurrentEmployer)
	}

	for _, m := range explicitDirective.FindAllStringSubmatch(notes, -1) {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	for _, name := range candidates {
		canonical, ok := requirementAllowList[name]
		if !ok {
			res.Warnings = append(res.Warnings, "inferred field dropped (not in allow-list): "+name)
			if ambiguousDroppedTerm.MatchString(name) {
				res.Warnings = append(res.Warnings,
					"dropped term looks like a document/skill/education reference; not auto-honored: "+name)
			}
			continue
		}
		res.Fields = appendUnique(res.Fields, canonical)
	}

	return res
}

// SalaryClauses returns the concrete amounts found in the trailing notes,
// keyed by canonical salary field name and formatted as NNN万円. The field
// mapper fills salary form fields from this map with the same regexes the
// inference engine uses to flag them.
func SalaryClauses(notes string) map[string]string {
	out := make(map[string]string)
	if m := currentSalaryClause.FindStringSubmatch(notes); m != nil {
		out[FieldCurrentSalary] = m[1] + "万円"
	}
	if m := desiredSalaryClause.FindStringSubmatch(notes); m != nil {
		out[FieldDesiredSalary] = m[1] + "万円"
	}
	if m := minDesiredClause.FindStringSubmatch(notes); m != nil {
		out[FieldMinDesiredSalary] = m[1] + "万円"
	}
	return out
}

// BracketedHedge returns the parenthetical hedge attached to the desired
// salary clause, without its brackets.
func BracketedHedge(notes string) (string, bool) {
	if m := desiredSalaryHedge.FindStringSubmatch(notes); m != nil {
		return m[1], true
	}
	return "", false
}

// CurrentEmployer returns the employer named by a 現職は…会社 clause.
func CurrentEmployer(notes string) (string, bool) {
	if m := currentEmployerClause.FindStringSubmatch(notes); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}
