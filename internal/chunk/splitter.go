package chunk

import (
	"github.com/tmc/langchaingo/textsplitter"
)

// TextSplitter bounds the size of a piece of text, returning the pieces in order
type TextSplitter interface {
	SplitText(text string) ([]string, error)
}

// SplitterOptions configures the recursive character splitter
type SplitterOptions struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewRecursiveSplitter returns a recursive character splitter that tries each
// separator in order and falls back to the next one for oversized pieces.
func NewRecursiveSplitter(opts SplitterOptions) TextSplitter {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(opts.ChunkSize),
		textsplitter.WithChunkOverlap(opts.ChunkOverlap),
		textsplitter.WithSeparators(opts.Separators),
	)
	return splitter
}
