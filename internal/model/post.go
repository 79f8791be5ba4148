package model

// Post is one forum post as found in the input dump.
// Pointer fields distinguish a missing key from an empty value.
type Post struct {
	Title        *string  `json:"title"`
	URL          *string  `json:"url"`
	Selftext     *string  `json:"selftext"`
	SelftextHTML *string  `json:"selftext_html,omitempty"`
	Subreddit    string   `json:"subreddit,omitempty"`
	Score        *float64 `json:"score"`
}

// NotAvailable is rendered for missing post fields
const NotAvailable = "N/A"

// TitleOr returns the title, or fallback when it is missing
func (p Post) TitleOr(fallback string) string {
	return valueOr(p.Title, fallback)
}

// URLOr returns the url, or fallback when it is missing
func (p Post) URLOr(fallback string) string {
	return valueOr(p.URL, fallback)
}

// SelftextOr returns the post body, or fallback when it is missing
func (p Post) SelftextOr(fallback string) string {
	return valueOr(p.Selftext, fallback)
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
