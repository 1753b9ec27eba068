// Package twitter is a small client for the v1.1 standard search API.
//
// Requests are signed with OAuth 1.0a (github.com/dghubble/oauth1) and paced
// with a golang.org/x/time/rate limiter. With WaitOnRateLimit set, a 429 or
// an exhausted X-Rate-Limit-Remaining makes the client sleep until
// X-Rate-Limit-Reset and carry on, so callers never see rate limit errors.
//
// Search returns a Cursor that follows search_metadata.next_results:
//
//	cur := client.Search(twitter.SearchParams{Query: "#golang", Count: 100, TweetMode: "extended"})
//	for {
//	    post, err := cur.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    handle(post)
//	}
package twitter
