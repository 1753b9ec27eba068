package twitter

import (
	"github.com/tidwall/gjson"
)

// Post is one search result exactly as the API returned it. It is opaque to
// this package apart from the id used for logging.
type Post []byte

// UnmarshalJSON keeps the raw bytes of the result.
func (p *Post) UnmarshalJSON(b []byte) error {
	*p = append((*p)[:0], b...)
	return nil
}

// MarshalJSON returns the raw bytes.
func (p Post) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	return p, nil
}

// ID returns the post id as a string, preferring id_str.
func (p Post) ID() string {
	if s := gjson.GetBytes(p, "id_str"); s.Exists() {
		return s.String()
	}
	return gjson.GetBytes(p, "id").Raw
}

// Page is one response of the standard search endpoint.
type Page struct {
	Statuses       []Post         `json:"statuses"`
	SearchMetadata SearchMetadata `json:"search_metadata"`
}

// SearchMetadata carries the pagination state of a search response.
type SearchMetadata struct {
	// NextResults is the query string of the next page, e.g.
	// "?max_id=123&q=%23golang&count=100&include_entities=1". Empty on the
	// last page.
	NextResults string  `json:"next_results"`
	Count       int     `json:"count"`
	MaxIDStr    string  `json:"max_id_str"`
	Query       string  `json:"query"`
	CompletedIn float64 `json:"completed_in"`
}

// errorResponse is the body of a non-200 response.
type errorResponse struct {
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
