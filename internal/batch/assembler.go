// Package batch packs chunks into batches that fit a character budget.
package batch

import (
	"fmt"

	"github.com/ppiankov/claimsift/internal/model"
)

// Assembler greedily packs chunks into batches
type Assembler struct {
	maxChars int
}

// NewAssembler creates an assembler with the given budget. A non-positive
// budget falls back to the default.
func NewAssembler(maxChars int) *Assembler {
	if maxChars <= 0 {
		maxChars = model.DefaultMaxBatchChars
	}
	return &Assembler{maxChars: maxChars}
}

// MaxChars returns the batch budget
func (a *Assembler) MaxChars() int {
	return a.maxChars
}

// Assemble packs chunks in order. When adding the next chunk would push a
// non-empty batch over the budget, the batch is closed and a new one starts
// with that chunk. A chunk larger than the budget therefore ends up alone.
// Chunks are never split, reordered or dropped.
func (a *Assembler) Assemble(chunks []model.Document) []model.Batch {
	var batches []model.Batch
	var current []model.Document
	currentSize := 0

	flush := func() {
		batches = append(batches, model.Batch{
			ID:     BatchID(len(batches) + 1),
			Chunks: current,
		})
		current = nil
		currentSize = 0
	}

	for _, chunk := range chunks {
		size := chunk.EstimateLength()

		if currentSize+size > a.maxChars && len(current) > 0 {
			flush()
		}
		current = append(current, chunk)
		currentSize += size
	}

	if len(current) > 0 {
		flush()
	}

	return batches
}

// BatchID returns the id of the n-th batch (1-based), which is also its file stem
func BatchID(n int) string {
	return fmt.Sprintf("batch_%02d", n)
}
