package model

import (
	"strings"
	"unicode/utf8"
)

// Document is a post rendered as text plus metadata. Chunks share the same
// shape: each chunk is a Document holding one slice of its parent's content.
type Document struct {
	PageContent string   `json:"page_content"`
	Metadata    Metadata `json:"metadata"`
}

// Metadata describes where a document came from
type Metadata struct {
	SourceURL string   `json:"source_url"`
	PostTitle string   `json:"post_title"`
	Subreddit string   `json:"subreddit"`
	Score     *float64 `json:"score"`
}

// EstimateLength is the size proxy used for batching: the rune count of the
// document's content.
func (d Document) EstimateLength() int {
	return utf8.RuneCountInString(d.PageContent)
}

// ChunkSeparator is placed between chunk contents when a batch is sent to the model
const ChunkSeparator = "\n\n--- NEXT CHUNK ---\n\n"

// Batch is an ordered group of chunks analysed together
type Batch struct {
	ID     string     // File stem, e.g. "batch_01"
	Chunks []Document // Chunks in filename order
}

// EstimateLength returns the summed estimated length of the batch's chunks
func (b Batch) EstimateLength() int {
	total := 0
	for _, c := range b.Chunks {
		total += c.EstimateLength()
	}
	return total
}

// Content joins the chunk contents with ChunkSeparator
func (b Batch) Content() string {
	parts := make([]string, len(b.Chunks))
	for i, c := range b.Chunks {
		parts[i] = c.PageContent
	}
	return strings.Join(parts, ChunkSeparator)
}
