package resume

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/satonodoka/herp-recommender/internal/types"
)

// Lines longer than this (in runes) are substantive enough to keep in the
// raw-lines side lists when they carry no date token.
const minSubstantiveLineLen = 5

type chronology struct {
	education    []types.DateEntry
	career       []types.DateEntry
	educationRaw []string
	careerRaw    []string
}

// scanChronology walks the lines once, tracking which chronological section
// is active. Section starts are mutually exclusive: a line mentioning 学歴
// without 職歴 opens education, and vice versa; qualification and motivation
// headers close whatever is open. Noise lines are dropped before any of this.
func scanChronology(lines []string) chronology {
	var c chronology
	inEducation, inCareer := false, false

	for _, line := range lines {
		if isNoiseLine(line) {
			continue
		}

		hasEducation := strings.Contains(line, educationKeyword)
		hasCareer := strings.Contains(line, careerKeyword)
		switch {
		case hasEducation && !hasCareer:
			inEducation, inCareer = true, false
			continue
		case hasCareer && !hasEducation:
			inEducation, inCareer = false, true
			continue
		case containsAny(line, sectionEndKeywords):
			inEducation, inCareer = false, false
			continue
		}

		if !inEducation && !inCareer {
			continue
		}

		if entry, ok := parseDatedLine(line); ok {
			if inEducation {
				c.education = append(c.education, entry)
			} else {
				c.career = append(c.career, entry)
			}
			continue
		}

		if utf8.RuneCountInString(line) > minSubstantiveLineLen {
			if inEducation {
				c.educationRaw = append(c.educationRaw, line)
			} else {
				c.careerRaw = append(c.careerRaw, line)
			}
		}
	}
	return c
}

// parseDatedLine tries the date-token fallbacks in order and returns the
// entry with the date token stripped from the content.
func parseDatedLine(line string) (types.DateEntry, bool) {
	for _, p := range datePatterns {
		m := p.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if year < 1900 || year > 2100 || month < 1 || month > 12 {
			continue
		}
		content := strings.TrimSpace(strings.Replace(line, m[0], "", 1))
		return types.DateEntry{Year: year, Month: month, Content: content}, true
	}
	return types.DateEntry{}, false
}

func isNoiseLine(line string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
