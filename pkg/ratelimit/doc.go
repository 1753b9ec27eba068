// Package ratelimit keeps search requests inside the Twitter API rate limits.
//
// Requests are paced with a golang.org/x/time/rate limiter sized to the
// window (180 requests per 15 minutes for user-auth search). When the API
// still answers with HTTP 429 or reports an exhausted window, the caller
// parses the X-Rate-Limit-* headers into a Window and sleeps until it resets:
//
//	w, _ := ratelimit.ParseWindow(resp.Header)
//	if w.Exhausted() {
//	    if err := ratelimit.Sleep(ctx, ratelimit.UntilReset(w, time.Now())); err != nil {
//	        return err
//	    }
//	}
package ratelimit
