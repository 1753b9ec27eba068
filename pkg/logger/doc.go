// Package logger provides structured logging for tweetcsv on top of zerolog.
//
// Console output is colored and written to stderr; an optional log file gets
// the same events as JSON lines. Components take a Logger in their
// constructors and fall back to the global one:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("run_id", id)
//	log.InfoWithFields("Search started", map[string]interface{}{"hashtag": "#golang"})
//
// Tests use NewTestLogger to capture messages or NewNopLogger to drop them.
package logger
