package model

import "strings"

// Claim represents one fact-check record produced by the model for a batch
type Claim struct {
	Claim          string         `json:"claim"`          // The factual statement identified
	Classification Classification `json:"classification"` // Veracity label
	Reason         string         `json:"reason"`         // Short justification from the model
	Source         string         `json:"source"`         // Where the verdict came from
	BatchID        string         `json:"batch_id"`       // Batch file stem, e.g. "batch_01"
	ChunkCount     int            `json:"chunk_count"`    // Number of chunks in the originating batch
}

// Classification is the veracity label attached to a claim
type Classification string

const (
	ClassificationTrue         Classification = "True"
	ClassificationFalse        Classification = "False"
	ClassificationMisleading   Classification = "Misleading"
	ClassificationUnverifiable Classification = "Unverifiable"
)

// Classifications lists the labels the prompt asks the model to use
var Classifications = []Classification{
	ClassificationTrue,
	ClassificationFalse,
	ClassificationMisleading,
	ClassificationUnverifiable,
}

// ParseClassification maps a label onto one of the known classifications,
// ignoring case and surrounding quotes. ok is false for unknown labels.
func ParseClassification(raw string) (Classification, bool) {
	label := strings.Trim(strings.TrimSpace(raw), `'"`)
	for _, c := range Classifications {
		if strings.EqualFold(label, string(c)) {
			return c, true
		}
	}
	return Classification(raw), false
}
