// Package scraper runs the fetch loop: it walks a search cursor, projects
// every post onto a record.Record and appends it to the output file.
//
// Records are appended one at a time, so a run that fails part way leaves
// every record it already processed on disk. The running count is local to
// each call to Run.
//
// Usage:
//
//	client := twitter.NewClient(twitter.Config{...}, log)
//	out, _ := storage.NewCSVWriter(".", "#golang")
//	s := scraper.New(client, out, log, scraper.WithProgress(func(n int) {
//	    fmt.Println(ui.ProgressLine(n))
//	}))
//	res, err := s.Run(ctx, scraper.Criteria{Hashtag: "#golang"})
package scraper
