// Package validate cleans claim records returned by the model.
package validate

import (
	"strings"

	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/model"
)

// Stats summarizes one Validate call
type Stats struct {
	Kept          int
	DroppedEmpty  int
	Normalized    int // labels whose case or quoting was fixed
	UnknownLabels int // labels kept verbatim
}

// Validator normalizes classification labels and drops empty claims
type Validator struct {
	log logger.Logger
}

// NewValidator creates a new validator
func NewValidator(log logger.Logger) *Validator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Validator{log: log}
}

// Validate returns the cleaned claims in their original order. Text fields are
// trimmed, a claim with no text is dropped, and a known classification is
// rewritten to its canonical spelling. Unknown classifications are kept as
// the model wrote them.
func (v *Validator) Validate(claims []model.Claim) ([]model.Claim, Stats) {
	var stats Stats
	out := make([]model.Claim, 0, len(claims))

	for i, c := range claims {
		c.Claim = strings.TrimSpace(c.Claim)
		c.Reason = strings.TrimSpace(c.Reason)
		c.Source = strings.TrimSpace(c.Source)

		if c.Claim == "" {
			stats.DroppedEmpty++
			v.log.Debug("Dropping claim without text", logger.Int("index", i))
			continue
		}

		label, ok := model.ParseClassification(string(c.Classification))
		switch {
		case !ok:
			stats.UnknownLabels++
			v.log.Warn("Unknown claim classification",
				logger.Int("index", i),
				logger.String("classification", string(c.Classification)),
			)
		case label != c.Classification:
			stats.Normalized++
			c.Classification = label
		}

		out = append(out, c)
	}

	stats.Kept = len(out)
	return out, stats
}
