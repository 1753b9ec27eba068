package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apierrors "tweetcsv/pkg/errors"
)

// MaxCount is the largest page size the search endpoint accepts
const MaxCount = 100

// SearchParams are the query parameters of a search
type SearchParams struct {
	Query string
	Count int
	// Since is a YYYY-MM-DD creation date lower bound.
	Since string
	// TweetMode "extended" returns untruncated full_text.
	TweetMode  string
	ResultType string
}

// Values encodes the parameters for the first page.
func (p SearchParams) Values() url.Values {
	count := p.Count
	if count <= 0 || count > MaxCount {
		count = MaxCount
	}
	q := url.Values{}
	q.Set("q", p.Query)
	q.Set("count", strconv.Itoa(count))
	if p.Since != "" {
		q.Set("since", p.Since)
	}
	if p.TweetMode != "" {
		q.Set("tweet_mode", p.TweetMode)
	}
	if p.ResultType != "" {
		q.Set("result_type", p.ResultType)
	}
	return q
}

// PageFetcher returns one page of search results for a query.
type PageFetcher interface {
	FetchPage(ctx context.Context, query url.Values) (*Page, error)
}

// FetchPage fetches and decodes one page of the search endpoint.
func (c *Client) FetchPage(ctx context.Context, query url.Values) (*Page, error) {
	body, err := c.Get(ctx, SearchEndpoint, query)
	if err != nil {
		return nil, err
	}
	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse search page: %v", err),
			Code:    http.StatusOK,
		}
	}
	return &page, nil
}

// Search returns a cursor over every result of the query
func (c *Client) Search(params SearchParams) *Cursor {
	return NewCursor(c, params)
}

// Cursor iterates search results, fetching pages lazily. It cannot be
// restarted: once Next returns an error, every later call returns it again.
type Cursor struct {
	fetcher PageFetcher
	base    url.Values
	next    url.Values

	page  []Post
	pos   int
	pages int
	err   error
}

// NewCursor creates a cursor whose first page is fetched on the first Next.
func NewCursor(f PageFetcher, params SearchParams) *Cursor {
	base := params.Values()
	return &Cursor{fetcher: f, base: base, next: base}
}

// Next returns the next result in API order, or io.EOF after the last one.
func (c *Cursor) Next(ctx context.Context) (Post, error) {
	for c.pos >= len(c.page) {
		if c.err != nil {
			return nil, c.err
		}
		if c.next == nil {
			c.err = io.EOF
			return nil, c.err
		}
		if err := c.fetch(ctx); err != nil {
			c.err = err
			return nil, err
		}
	}
	p := c.page[c.pos]
	c.pos++
	return p, nil
}

// Pages returns how many pages have been fetched.
func (c *Cursor) Pages() int {
	return c.pages
}

func (c *Cursor) fetch(ctx context.Context) error {
	page, err := c.fetcher.FetchPage(ctx, c.next)
	if err != nil {
		return err
	}
	c.pages++
	c.page, c.pos = page.Statuses, 0

	next, err := nextQuery(c.base, page.SearchMetadata.NextResults)
	if err != nil {
		return err
	}
	c.next = next
	return nil
}

// nextQuery merges the next_results query string over the base parameters.
// The API leaves out some of them (tweet_mode, since) on later pages.
func nextQuery(base url.Values, nextResults string) (url.Values, error) {
	if nextResults == "" {
		return nil, nil
	}
	parsed, err := url.ParseQuery(strings.TrimPrefix(nextResults, "?"))
	if err != nil {
		return nil, &apierrors.Error{
			Type:    apierrors.ErrorTypeParsing,
			Message: fmt.Sprintf("invalid next_results %q: %v", nextResults, err),
			Code:    http.StatusOK,
		}
	}
	q := make(url.Values, len(base)+len(parsed))
	for k, v := range base {
		q[k] = append([]string(nil), v...)
	}
	for k, v := range parsed {
		q[k] = v
	}
	return q, nil
}
