// Package storage writes extracted records to the per-hashtag output file.
//
// The file is append-only and has no header row: every run adds to what
// earlier runs wrote, and rows are never deduplicated. Fields are written with
// encoding/csv minimal quoting through csvutil, in record.Header order.
//
//	w, err := storage.NewCSVWriter(".", "#golang") // ./golang-tweets.csv
//	if err != nil {
//	    return err
//	}
//	if err := w.Append(rec); err != nil {
//	    return err
//	}
package storage
