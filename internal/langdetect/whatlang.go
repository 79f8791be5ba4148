package langdetect

import (
	"github.com/abadojack/whatlanggo"
)

// iso6393To6391 covers the languages IndicTrans2 tags exist for
var iso6393To6391 = map[string]string{
	"hin": "hi", "mar": "mr", "ben": "bn", "tam": "ta",
	"tel": "te", "guj": "gu", "kan": "kn", "mal": "ml",
	"pan": "pa", "ori": "or", "asm": "as", "urd": "ur",
	"eng": "en", "nep": "ne", "sin": "si", "san": "sa",
}

// WhatlangDetector adapts whatlanggo to Statistical
type WhatlangDetector struct {
	// MinConfidence rejects detections below this value
	MinConfidence float64
}

// NewWhatlangDetector creates a detector that accepts any confident guess
func NewWhatlangDetector() *WhatlangDetector {
	return &WhatlangDetector{}
}

// Detect implements Statistical
func (w *WhatlangDetector) Detect(text string) (string, float64, error) {
	info := whatlanggo.Detect(text)
	if info.Script == nil {
		return "", 0, ErrUndetermined
	}
	if info.Confidence < w.MinConfidence {
		return "", info.Confidence, ErrUndetermined
	}

	code := info.Lang.Iso6393()
	if short, ok := iso6393To6391[code]; ok {
		return short, info.Confidence, nil
	}
	return code, info.Confidence, nil
}
