package langdetect

// Indicator is a keyword whose presence in Devanagari text votes for a language
type Indicator struct {
	Keyword string
	Weight  int
}

// Devanagari languages in tie-break priority order
var devanagariLanguages = []string{"hi", "mr", "gu", "sa", "ne"}

// indicators maps each candidate language to its weighted keywords. The
// Gujarati entries are in Gujarati script and only ever add to a score when
// the text mixes scripts.
var indicators = map[string][]Indicator{
	"hi": {
		{"है", 3}, {"हैं", 3}, {"हो", 2}, {"क्या", 2}, {"यह", 2}, {"वह", 2},
		{"मैं", 2}, {"तुम", 2}, {"को", 1}, {"से", 1}, {"ने", 1}, {"पर", 1},
		{"में", 1}, {"का", 1}, {"की", 1}, {"के", 1},
	},
	"mr": {
		{"आहे", 3}, {"आहोत", 3}, {"काय", 2}, {"हा", 2}, {"ती", 2}, {"मी", 2},
		{"तू", 2}, {"आम्ही", 2}, {"तुम्ही", 2}, {"ला", 1}, {"ने", 1}, {"च", 1},
		{"पण", 1}, {"आणि", 1},
	},
	"gu": {
		{"છે", 3}, {"થાય", 3}, {"શું", 2}, {"આ", 2}, {"તે", 2}, {"હું", 2},
		{"તમે", 2}, {"ને", 1}, {"થી", 1}, {"અને", 1}, {"પણ", 1},
	},
	"sa": {
		{"अस्ति", 3}, {"भवति", 3}, {"किम्", 2}, {"अहम्", 2}, {"त्वम्", 2},
		{"सः", 2}, {"तत्", 2}, {"च", 1}, {"वा", 1},
	},
	"ne": {
		{"छ", 3}, {"हो", 2}, {"के", 2}, {"यो", 2}, {"त्यो", 2}, {"म", 2},
		{"तिमी", 2}, {"हामी", 2}, {"लाई", 1}, {"बाट", 1}, {"र", 1},
	},
}

// codeMap maps ISO 639-1 codes to IndicTrans2 language tags
var codeMap = map[string]string{
	"hi": "hin_Deva", "mr": "mar_Deva", "bn": "ben_Beng", "ta": "tam_Taml",
	"te": "tel_Telu", "gu": "guj_Gujr", "kn": "kan_Knda", "ml": "mal_Mlym",
	"pa": "pan_Guru", "or": "ory_Orya", "as": "asm_Beng", "ur": "urd_Arab",
	"en": "eng_Latn", "ne": "nep_Deva", "si": "sin_Sinh", "sa": "san_Deva",
}

// DefaultCode is returned whenever detection cannot decide
const DefaultCode = "hin_Deva"

// Indicators returns a copy of the keyword table for lang
func Indicators(lang string) []Indicator {
	src := indicators[lang]
	out := make([]Indicator, len(src))
	copy(out, src)
	return out
}

// CodeFor maps an ISO 639-1 code to its IndicTrans2 tag
func CodeFor(iso6391 string) (string, bool) {
	code, ok := codeMap[iso6391]
	return code, ok
}
