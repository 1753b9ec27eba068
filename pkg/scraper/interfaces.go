package scraper

import (
	"tweetcsv/pkg/record"
	"tweetcsv/pkg/twitter"
)

// Searcher opens a lazy cursor over the results of a search.
// *twitter.Client implements it.
type Searcher interface {
	Search(params twitter.SearchParams) *twitter.Cursor
}

// Appender persists one output record. *storage.CSVWriter implements it.
type Appender interface {
	Append(rec record.Record) error
}

// ProgressFunc is called after each record is appended with the running count.
type ProgressFunc func(count int)
