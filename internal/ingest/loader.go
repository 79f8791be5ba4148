// Package ingest loads forum post dumps from local files or HTTP(S) URLs.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/model"
)

var (
	// ErrInputNotFound is returned when the input file does not exist
	ErrInputNotFound = errors.New("input not found")
	// ErrUnsupportedFormat is returned when the input is neither a post array nor a listing
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// Loader reads posts from a file path or a URL
type Loader struct {
	fetcher *Fetcher
	log     logger.Logger
}

// NewLoader creates a new Loader. fetcher may be nil, in which case URL
// sources are rejected.
func NewLoader(fetcher *Fetcher, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{fetcher: fetcher, log: log}
}

// IsURL reports whether source should be fetched over HTTP
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads and decodes the posts at source
func (l *Loader) Load(ctx context.Context, source string) ([]model.Post, error) {
	var data []byte
	var err error

	if IsURL(source) {
		if l.fetcher == nil {
			return nil, fmt.Errorf("load %s: no fetcher configured", source)
		}
		data, err = l.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", source, err)
		}
	} else {
		data, err = os.ReadFile(source)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", source, ErrInputNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
	}

	posts, err := ParsePosts(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}

	rendered := 0
	for i := range posts {
		if renderBody(&posts[i]) {
			rendered++
		}
	}

	l.log.Info("Loaded posts",
		logger.String("source", source),
		logger.Int("posts", len(posts)),
		logger.Int("html_rendered", rendered),
	)

	return posts, nil
}

// renderBody fills an empty selftext from selftext_html
func renderBody(post *model.Post) bool {
	if post.Selftext != nil && *post.Selftext != "" {
		return false
	}
	if post.SelftextHTML == nil {
		return false
	}
	text := RenderHTML(*post.SelftextHTML)
	if text == "" {
		return false
	}
	post.Selftext = &text
	return true
}

// thing is the kind/data envelope Reddit wraps every object in
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
}

// ParsePosts decodes a bare JSON array of posts, a Reddit listing, or an
// array mixing both (as returned by a post's .json permalink).
func ParsePosts(data []byte) ([]model.Post, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrUnsupportedFormat
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parse array: %w", err)
		}
		posts := make([]model.Post, 0, len(items))
		for i, item := range items {
			decoded, err := decodeItem(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			posts = append(posts, decoded...)
		}
		return posts, nil

	case '{':
		var t thing
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse object: %w", err)
		}
		if t.Kind != "Listing" && !hasChildren(t.Data) {
			return nil, ErrUnsupportedFormat
		}
		return decodeListing(t.Data)
	}

	return nil, ErrUnsupportedFormat
}

func decodeItem(raw json.RawMessage) ([]model.Post, error) {
	var t thing
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}

	switch t.Kind {
	case "Listing":
		return decodeListing(t.Data)
	case "t3":
		post, err := decodePost(t.Data)
		if err != nil {
			return nil, err
		}
		return []model.Post{post}, nil
	case "":
		post, err := decodePost(raw)
		if err != nil {
			return nil, err
		}
		return []model.Post{post}, nil
	}

	// Comments (t1) and other kinds carry no post
	return nil, nil
}

func decodeListing(raw json.RawMessage) ([]model.Post, error) {
	var listing listingData
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var posts []model.Post
	for _, child := range listing.Children {
		if child.Kind != "" && child.Kind != "t3" {
			continue
		}
		post, err := decodePost(child.Data)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func decodePost(raw json.RawMessage) (model.Post, error) {
	var post model.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return model.Post{}, fmt.Errorf("parse post: %w", err)
	}
	return post, nil
}

func hasChildren(raw json.RawMessage) bool {
	var listing listingData
	return json.Unmarshal(raw, &listing) == nil && listing.Children != nil
}
