package resume

import "regexp"

// The tables below are the locale-specific half of the extractor: labels,
// heuristic regexes, and denylists tuned for Japanese resume layouts. The
// scan logic in this package never hardcodes a pattern; swapping these vars
// retargets the extractor to another locale.

var (
	nameLabels     = []string{"氏名", "名前"}
	furiganaLabels = []string{"フリガナ", "ふりがな"}

	// nameDenylist excludes section headers and letterhead words that are
	// shaped like CJK names and otherwise slip through the generic scan.
	nameDenylist = []string{
		"推薦", "理由", "登録", "職種", "会社", "銀行",
		"営業", "統合", "文書", "履歴書",
	}

	nameLabelStrip     = regexp.MustCompile(`氏名|名前|[:：]`)
	furiganaLabelStrip = regexp.MustCompile(`フリガナ|ふりがな|[:：]`)

	// Name shapes, most to least structured. Surname and given name are
	// re-joined with a single ASCII space.
	spacedNamePattern   = regexp.MustCompile(`([一-龯]{1,4})[\s　]+([一-龯]{1,4})`)
	compactFourPattern  = regexp.MustCompile(`^([一-龯]{2})([一-龯]{2})$`)
	compactThreePattern = regexp.MustCompile(`^([一-龯])([一-龯]{2})$`)
	plainNamePattern    = regexp.MustCompile(`^[一-龯]{2,6}$`)

	genericNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`([一-龯]{2})[\s　]*([一-龯]{2})`),
		regexp.MustCompile(`([一-龯])[\s　]*([一-龯]{2})`),
	}

	katakanaRun = regexp.MustCompile(`[ア-ン]+(?:[\s　]+[ア-ン]+)*`)
	hiraganaRun = regexp.MustCompile(`[あ-ん]+(?:[\s　]+[あ-ん]+)*`)

	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`満(\d{1,2})歳`),
		regexp.MustCompile(`\(満(\d{1,2})歳\)`),
		regexp.MustCompile(`（満(\d{1,2})歳）`),
		regexp.MustCompile(`満\s*(\d{1,2})\s*歳`),
		regexp.MustCompile(`(\d{1,2})歳\s*男`),
		regexp.MustCompile(`(\d{1,2})歳\s*女`),
	}

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`電話[：:\s]*(\d{2,4}[-\s]?\d{2,4}[-\s]?\d{4})`),
		regexp.MustCompile(`TEL[：:\s]*(\d{2,4}[-\s]?\d{2,4}[-\s]?\d{4})`),
		regexp.MustCompile(`(0\d{1,3}[-\s]?\d{2,4}[-\s]?\d{4})`),
		regexp.MustCompile(`(0\d{9,10})`),
	}
	// Japanese numbers are 10 or 11 digits with a leading zero.
	validPhoneDigits = regexp.MustCompile(`^0\d{9,10}$`)
	bareDigitPhone   = regexp.MustCompile(`^\d{10,11}$`)
	phoneSeparators  = regexp.MustCompile(`[-\s]`)

	emailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`),
		regexp.MustCompile(`([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+)`),
	}
)

// Free-text section headers and the keywords that terminate each block.
var (
	recommendationHeaders     = []string{"推薦理由"}
	recommendationTerminators = []string{"面談所感", "転職理由", "添付資料", "キャリアサポート部"}

	careerSummaryHeaders     = []string{"職務要約", "職歴要約", "経歴要約"}
	careerSummaryTerminators = []string{"活かせる経験", "スキル", "資格", "学歴", "知識", "技術"}

	// sectionMarker prefixes generic "next section" headers (■職務経歴 etc.).
	sectionMarker = "■"
)

// Chronological-scan keywords and date-token fallbacks.
var (
	educationKeyword = "学歴"
	careerKeyword    = "職歴"

	sectionEndKeywords = []string{"資格", "免許", "志望動機", "自己PR", "本人希望"}

	// Date shapes from most to least strict. Year and month are the two
	// capture groups in every pattern.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4})年(\d{1,2})月`),
		regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月`),
		regexp.MustCompile(`(\d{4})[/／.\-](\d{1,2})\b`),
	}

	// noisePatterns match letterhead and decoded-PDF garbage lines that are
	// excluded from section processing entirely.
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^[G▼■○●□◆◇←→↑↓\s　]+$`),
		regexp.MustCompile(`キャリアサポート部`),
		regexp.MustCompile(`^履歴書$`),
		regexp.MustCompile(`^職務経歴書$`),
		regexp.MustCompile(`^以上$`),
	}
)

// Derivation tables for current employer and highest education.
var (
	// companyPatterns run in order: legal-entity suffix anchored to a joining
	// verb, prefix form anchored to the verb, then the bare token forms.
	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`([^\s　]*(?:株式会社|有限会社|合同会社))[\s　]*(?:に|へ)?(?:入社|転職)`),
		regexp.MustCompile(`((?:株式会社|有限会社|合同会社)[^\s　]*?)[\s　]*(?:に|へ)?(?:入社|転職)`),
		regexp.MustCompile(`([^\s　]*(?:株式会社|有限会社|合同会社))(?:[\s　]|$)`),
		regexp.MustCompile(`((?:株式会社|有限会社|合同会社)[^\s　]+)`),
	}

	graduationMarkers = []string{"卒業", "修了"}

	schoolPattern = regexp.MustCompile(
		`([^\s　]*(?:大学院|大学|高等学校|高校|短期大学|専門学校)(?:[^\s　]*(?:学部|学科|研究科))*)`)
)
