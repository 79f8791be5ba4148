// Package chunk turns forum posts into size-bounded documents.
package chunk

import (
	"fmt"
	"strings"

	"github.com/ppiankov/claimsift/internal/model"
)

// Chunker renders posts into documents and splits them with a TextSplitter
type Chunker struct {
	splitter TextSplitter
}

// NewChunker creates a chunker backed by the given splitter
func NewChunker(splitter TextSplitter) *Chunker {
	return &Chunker{splitter: splitter}
}

// BuildDocuments renders each post into a Document, one per post, in input order
func BuildDocuments(posts []model.Post) []model.Document {
	docs := make([]model.Document, 0, len(posts))
	for _, post := range posts {
		docs = append(docs, BuildDocument(post))
	}
	return docs
}

// BuildDocument renders a single post using the Title / URL / Post Body template
func BuildDocument(post model.Post) model.Document {
	content := fmt.Sprintf("Title: %s\nURL: %s\nPost Body:\n%s",
		post.TitleOr(model.NotAvailable),
		post.URLOr(model.NotAvailable),
		post.SelftextOr(model.NotAvailable),
	)

	subreddit := SubredditFromURL(post.URLOr(""))
	if subreddit == model.NotAvailable && post.Subreddit != "" {
		subreddit = post.Subreddit
	}

	return model.Document{
		PageContent: content,
		Metadata: model.Metadata{
			SourceURL: post.URLOr(model.NotAvailable),
			PostTitle: post.TitleOr(model.NotAvailable),
			Subreddit: subreddit,
			Score:     post.Score,
		},
	}
}

// SubredditFromURL returns the path segment following the first "/r/" in
// rawURL, or "N/A" when there is none or it is empty.
func SubredditFromURL(rawURL string) string {
	_, rest, found := strings.Cut(rawURL, "/r/")
	if !found {
		return model.NotAvailable
	}
	segment, _, _ := strings.Cut(rest, "/")
	if segment == "" {
		return model.NotAvailable
	}
	return segment
}

// Split bounds every document with the splitter. Each piece keeps a copy of
// its parent's metadata; pieces are returned in document order.
func (c *Chunker) Split(docs []model.Document) ([]model.Document, error) {
	var chunks []model.Document
	for i, doc := range docs {
		pieces, err := c.splitter.SplitText(doc.PageContent)
		if err != nil {
			return nil, fmt.Errorf("split document %d: %w", i, err)
		}
		for _, piece := range pieces {
			chunks = append(chunks, model.Document{
				PageContent: piece,
				Metadata:    doc.Metadata,
			})
		}
	}
	return chunks, nil
}

// Chunk renders and splits posts in one step
func (c *Chunker) Chunk(posts []model.Post) ([]model.Document, error) {
	return c.Split(BuildDocuments(posts))
}
