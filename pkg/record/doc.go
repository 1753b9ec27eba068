// Package record turns one raw search result into the fixed 14-column row
// written to the output file.
//
// Every field taken from the API is passed through Sanitize, which strips the
// characters that would break a naive comma-delimited bulk load (newlines,
// carriage returns, tabs, commas and both quote characters). Empty counts
// default to "0", an empty location to "NULL", and the permalink is built from
// the already-sanitized screen name and id.
//
//	rec, err := record.Extract(raw)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(rec.PermalinkURL)
package record
