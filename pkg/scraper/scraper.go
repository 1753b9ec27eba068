package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"tweetcsv/pkg/config"
	"tweetcsv/pkg/logger"
	"tweetcsv/pkg/record"
	"tweetcsv/pkg/twitter"
)

// Criteria selects the posts a run fetches.
type Criteria struct {
	Hashtag string
	// Since is a YYYY-MM-DD lower bound on the creation date.
	Since    string
	PageSize int
	// WaitOnRateLimit is honoured by the client the Searcher wraps; it is
	// recorded here so a run logs how it was configured.
	WaitOnRateLimit bool
}

func (c Criteria) params() twitter.SearchParams {
	since := c.Since
	if since == "" {
		since = config.DefaultSince
	}
	size := c.PageSize
	if size <= 0 || size > twitter.MaxCount {
		size = twitter.MaxCount
	}
	return twitter.SearchParams{
		Query:     c.Hashtag,
		Count:     size,
		Since:     since,
		TweetMode: "extended",
	}
}

// Result summarizes a run that reached the end of the cursor.
type Result struct {
	RunID string
	Count int
	// File is the output path when the Appender exposes one.
	File  string
	Pages int
}

// FetchError reports a run that stopped early. Count records were appended
// before Cause occurred.
type FetchError struct {
	Count int
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch stopped after %d records: %v", e.Count, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Scraper wires a Searcher to an Appender.
type Scraper struct {
	searcher Searcher
	out      Appender
	progress ProgressFunc
	logger   logger.Logger
	newID    func() string
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithProgress sets the callback invoked after every appended record.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scraper) {
		s.progress = fn
	}
}

// New creates a Scraper. A nil logger falls back to the global one.
func New(searcher Searcher, out Appender, log logger.Logger, opts ...Option) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	s := &Scraper{
		searcher: searcher,
		out:      out,
		logger:   log,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches every post matching c, in API order, and appends one record
// per post. It returns a *FetchError when anything fails before the cursor
// is exhausted.
func (s *Scraper) Run(ctx context.Context, c Criteria) (Result, error) {
	res := Result{RunID: s.newID()}
	if p, ok := s.out.(interface{ Path() string }); ok {
		res.File = p.Path()
	}

	log := s.logger.WithFields(map[string]interface{}{
		"run_id":  res.RunID,
		"hashtag": c.Hashtag,
	})
	params := c.params()
	log.InfoWithFields("Starting search", map[string]interface{}{
		"since":              params.Since,
		"page_size":          params.Count,
		"wait_on_rate_limit": c.WaitOnRateLimit,
		"file":               res.File,
	})

	start := time.Now()
	cursor := s.searcher.Search(params)
	fail := func(err error) (Result, error) {
		res.Pages = cursor.Pages()
		log.WithError(err).ErrorWithFields("Search failed", map[string]interface{}{
			"count": res.Count,
			"pages": res.Pages,
		})
		return res, &FetchError{Count: res.Count, Cause: err}
	}

	for {
		post, err := cursor.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(fmt.Errorf("search: %w", err))
		}

		rec, err := record.Extract(post)
		if err != nil {
			return fail(fmt.Errorf("extract post %s: %w", post.ID(), err))
		}
		if err := s.out.Append(rec); err != nil {
			return fail(fmt.Errorf("append post %s: %w", rec.ID, err))
		}

		res.Count++
		logger.LogFetchProgress(log, c.Hashtag, rec.ID, res.Count)
		if s.progress != nil {
			s.progress(res.Count)
		}
	}

	res.Pages = cursor.Pages()
	log.InfoWithFields("Search finished", map[string]interface{}{
		"count":       res.Count,
		"pages":       res.Pages,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return res, nil
}
