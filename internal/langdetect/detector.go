// Package langdetect identifies the language of a text as an IndicTrans2 tag.
// Devanagari text is disambiguated with weighted keyword tables; other
// scripts go to a statistical detector.
package langdetect

import (
	"errors"
	"strings"
	"unicode/utf8"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/ppiankov/claimsift/internal/logger"
)

// Detection methods reported by Explain
const (
	MethodDevanagari  = "custom_devanagari_detection"
	MethodStatistical = "statistical"
	MethodFallback    = "fallback"
)

// ErrUndetermined is returned by a Statistical detector that cannot decide
var ErrUndetermined = errors.New("language could not be determined")

// Statistical detects the language of non-Devanagari text
type Statistical interface {
	// Detect returns an ISO 639-1 code, or the detector's own code when it
	// has no two-letter form, with a confidence in [0,1]
	Detect(text string) (lang string, confidence float64, err error)
}

// Explanation describes how a text was classified
type Explanation struct {
	Method         string         `json:"method"`
	Language       string         `json:"detected_lang"`
	Code           string         `json:"code"`
	Score          int            `json:"score,omitempty"`
	Confidence     float64        `json:"confidence,omitempty"`
	IndicatorsUsed int            `json:"indicators_used,omitempty"`
	Scores         map[string]int `json:"scores,omitempty"`
}

type weightedLang struct {
	lang   string
	weight int
}

// Detector is safe for concurrent use
type Detector struct {
	matcher     *ahocorasick.Matcher
	keywords    []string
	kwToLangs   map[string][]weightedLang
	statistical Statistical
	log         logger.Logger
}

// NewDetector builds the keyword automaton. A nil statistical detector
// makes every non-Devanagari text fall back to DefaultCode.
func NewDetector(statistical Statistical, log logger.Logger) *Detector {
	if log == nil {
		log = logger.NewNop()
	}

	d := &Detector{
		kwToLangs:   make(map[string][]weightedLang),
		statistical: statistical,
		log:         log,
	}

	for _, lang := range devanagariLanguages {
		for _, ind := range indicators[lang] {
			if _, seen := d.kwToLangs[ind.Keyword]; !seen {
				d.keywords = append(d.keywords, ind.Keyword)
			}
			d.kwToLangs[ind.Keyword] = append(d.kwToLangs[ind.Keyword], weightedLang{lang: lang, weight: ind.Weight})
		}
	}
	d.matcher = ahocorasick.NewStringMatcher(d.keywords)

	return d
}

// IsDevanagari reports whether any rune falls in U+0900..U+097F
func IsDevanagari(text string) bool {
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

func tooShort(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < 2
}

// Detect returns the IndicTrans2 tag for text
func (d *Detector) Detect(text string) string {
	if tooShort(text) {
		return DefaultCode
	}

	if IsDevanagari(text) {
		lang, score := d.DetectDevanagari(text)
		d.log.Debug("devanagari detection",
			logger.String("lang", lang),
			logger.Int("score", score))
		code, _ := CodeFor(lang)
		return code
	}

	if d.statistical == nil {
		return DefaultCode
	}

	lang, _, err := d.statistical.Detect(text)
	if err != nil {
		d.log.Debug("statistical detection failed, using fallback", logger.Error(err))
		return DefaultCode
	}
	code, ok := CodeFor(lang)
	if !ok {
		d.log.Debug("unsupported language, using fallback", logger.String("lang", lang))
		return DefaultCode
	}
	return code
}

// DetectDevanagari scores the candidate languages and returns the best one
// with its score. Ties go to the language listed first in hi, mr, gu, sa, ne.
// No indicator at all yields ("hi", 0).
func (d *Detector) DetectDevanagari(text string) (string, int) {
	scores := d.scores(text)

	best, bestScore := "hi", 0
	for _, lang := range devanagariLanguages {
		if scores[lang] > bestScore {
			best, bestScore = lang, scores[lang]
		}
	}
	return best, bestScore
}

// scores sums weight times occurrences of every keyword found in text
func (d *Detector) scores(text string) map[string]int {
	scores := make(map[string]int)
	for _, hit := range d.matcher.MatchThreadSafe([]byte(text)) {
		kw := d.keywords[hit]
		n := strings.Count(text, kw)
		for _, wl := range d.kwToLangs[kw] {
			scores[wl.lang] += wl.weight * n
		}
	}
	return scores
}

// Explain reports which method classified text and why
func (d *Detector) Explain(text string) Explanation {
	if tooShort(text) {
		return Explanation{Method: MethodFallback, Language: "hi", Code: DefaultCode}
	}

	if IsDevanagari(text) {
		lang, score := d.DetectDevanagari(text)
		code, _ := CodeFor(lang)
		used := 0
		for _, ind := range indicators[lang] {
			if strings.Contains(text, ind.Keyword) {
				used++
			}
		}
		return Explanation{
			Method:         MethodDevanagari,
			Language:       lang,
			Code:           code,
			Score:          score,
			IndicatorsUsed: used,
			Scores:         d.scores(text),
		}
	}

	if d.statistical == nil {
		return Explanation{Method: MethodFallback, Language: "hi", Code: DefaultCode}
	}

	lang, confidence, err := d.statistical.Detect(text)
	if err != nil {
		return Explanation{Method: MethodFallback, Language: "hi", Code: DefaultCode}
	}
	code, ok := CodeFor(lang)
	if !ok {
		code = DefaultCode
	}
	return Explanation{
		Method:     MethodStatistical,
		Language:   lang,
		Code:       code,
		Confidence: confidence,
	}
}
