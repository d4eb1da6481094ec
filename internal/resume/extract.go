// Package resume recovers applicant fields from decoded resume text with a
// fixed cascade of Japanese-layout heuristics. Every sub-extraction is an
// independent single pass over the line list and keeps the first qualifying
// match; a field the heuristics cannot find is simply absent, never an error.
package resume

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/satonodoka/herp-recommender/internal/types"
)

// Fixed per-field confidences. The bundle confidence is the maximum of the
// per-field values: one strong signal is enough to call the document readable.
const (
	confidenceAge            = 95
	confidencePhone          = 90
	confidenceEmail          = 95
	confidenceRecommendation = 90
	confidenceCareerSummary  = 85
	confidenceDerived        = 90
)

// Extract runs every field heuristic over the decoded text and returns the
// assembled bundle. The input is the raw text blob from the PDF decoder.
func Extract(text string) *types.ResumeFields {
	raw := splitLines(text)
	lines := nonEmptyLines(raw)

	fields := &types.ResumeFields{}
	fields.Name = extractName(lines)
	fields.Furigana = extractFurigana(lines)
	fields.Age = extractAge(lines)
	fields.Phone = extractPhone(lines)
	fields.Email = extractEmail(lines)
	fields.RecommendationComment = collectSection(raw, recommendationHeaders, recommendationTerminators, false)
	fields.CareerSummary = collectSection(raw, careerSummaryHeaders, careerSummaryTerminators, true)

	chron := scanChronology(lines)
	fields.EducationEntries = chron.education
	fields.CareerEntries = chron.career
	fields.EducationRawLines = chron.educationRaw
	fields.CareerRawLines = chron.careerRaw
	fields.CurrentCompany = deriveCurrentCompany(chron.career)
	fields.FinalEducation = deriveFinalEducation(chron.education)

	fields.Confidence = bundleConfidence(fields)
	return fields
}

// extractName looks for a name label and tries the same line then the next;
// with no label anywhere it falls back to a generic CJK name-shaped scan.
func extractName(lines []string) string {
	for i, line := range lines {
		if !containsAny(line, nameLabels) {
			continue
		}
		if name := nameFromLine(line); name != "" {
			return name
		}
		if i+1 < len(lines) {
			if name := nameFromLine(lines[i+1]); name != "" {
				return name
			}
		}
	}

	for _, line := range lines {
		if containsAny(line, nameDenylist) {
			continue
		}
		for _, p := range genericNamePatterns {
			if m := p.FindStringSubmatch(line); m != nil {
				return m[1] + " " + m[2]
			}
		}
	}
	return ""
}

func nameFromLine(line string) string {
	clean := strings.TrimSpace(nameLabelStrip.ReplaceAllString(line, ""))

	if m := spacedNamePattern.FindStringSubmatch(clean); m != nil {
		return m[1] + " " + m[2]
	}
	if m := compactFourPattern.FindStringSubmatch(clean); m != nil {
		return m[1] + " " + m[2]
	}
	if m := compactThreePattern.FindStringSubmatch(clean); m != nil {
		return m[1] + " " + m[2]
	}

	// An unbroken CJK run is split on the usual surname boundary.
	if plainNamePattern.MatchString(clean) {
		r := []rune(clean)
		switch len(r) {
		case 4:
			return string(r[:2]) + " " + string(r[2:])
		case 3:
			return string(r[:1]) + " " + string(r[1:])
		}
		return clean
	}
	return ""
}

func extractFurigana(lines []string) string {
	for i, line := range lines {
		if !containsAny(line, furiganaLabels) {
			continue
		}
		if f := furiganaFromLine(line); f != "" {
			return f
		}
		if i+1 < len(lines) {
			if f := furiganaFromLine(lines[i+1]); f != "" {
				return f
			}
		}
	}
	return ""
}

func furiganaFromLine(line string) string {
	clean := strings.TrimSpace(furiganaLabelStrip.ReplaceAllString(line, ""))

	// Katakana readings are folded to hiragana after collection, not before.
	if m := katakanaRun.FindString(clean); m != "" {
		return collapseSpaces(katakanaToHiragana(m))
	}
	if m := hiraganaRun.FindString(clean); m != "" {
		return collapseSpaces(m)
	}
	return ""
}

func katakanaToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ア' && r <= 'ン' {
			return r - 0x60
		}
		return r
	}, s)
}

const (
	minPlausibleAge = 15
	maxPlausibleAge = 80
)

func extractAge(lines []string) int {
	for _, line := range lines {
		for _, p := range agePatterns {
			m := p.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			age, err := strconv.Atoi(m[1])
			if err != nil || age < minPlausibleAge || age > maxPlausibleAge {
				continue
			}
			return age
		}
	}
	return 0
}

func extractPhone(lines []string) string {
	for _, line := range lines {
		for _, p := range phonePatterns {
			m := p.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			phone := m[1]
			if !validPhoneDigits.MatchString(phoneSeparators.ReplaceAllString(phone, "")) {
				continue
			}
			if bareDigitPhone.MatchString(phone) {
				phone = regroupPhone(phone)
			}
			return phone
		}
	}
	return ""
}

// regroupPhone hyphenates a bare digit run: 11 digits as 3-4-4 (mobile),
// 10 digits as 2-4-4 (Tokyo-style landline).
func regroupPhone(digits string) string {
	switch len(digits) {
	case 11:
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	case 10:
		return digits[:2] + "-" + digits[2:6] + "-" + digits[6:]
	}
	return digits
}

func extractEmail(lines []string) string {
	for _, line := range lines {
		for _, p := range emailPatterns {
			if m := p.FindStringSubmatch(line); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

func bundleConfidence(f *types.ResumeFields) int {
	best := 0
	if f.Name != "" {
		best = max(best, nameConfidence(f.Name, f.Furigana))
	}
	if f.Age != 0 {
		best = max(best, confidenceAge)
	}
	if f.Phone != "" {
		best = max(best, confidencePhone)
	}
	if f.Email != "" {
		best = max(best, confidenceEmail)
	}
	if f.RecommendationComment != "" {
		best = max(best, confidenceRecommendation)
	}
	if f.CareerSummary != "" {
		best = max(best, confidenceCareerSummary)
	}
	if f.CurrentCompany != "" || f.FinalEducation != "" {
		best = max(best, confidenceDerived)
	}
	return best
}

// nameConfidence scores a found name: base 60, plus plausible length, plus a
// separated surname, plus a corroborating reading.
func nameConfidence(name, furigana string) int {
	conf := 60
	if n := utf8.RuneCountInString(name); n >= 3 && n <= 8 {
		conf += 20
	}
	if strings.Contains(name, " ") {
		conf += 10
	}
	if furigana != "" {
		conf += 10
	}
	return min(conf, 100)
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, len(raw))
	for i, line := range raw {
		out[i] = strings.TrimSpace(line)
	}
	return out
}

func nonEmptyLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '　'
	}), " ")
}
