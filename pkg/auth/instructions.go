package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowDeveloperPortalGuide prints how to obtain the four secrets from the
// Twitter developer portal
func ShowDeveloperPortalGuide(w io.Writer) {
	rule := strings.Repeat("=", 80)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TWITTER API CREDENTIALS GUIDE")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "tweetcsv signs every search request with OAuth 1.0a and needs four values.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Open https://developer.twitter.com/en/portal/dashboard and sign in")
	fmt.Fprintln(w, "STEP 2: Create a project and an app (or select an existing app)")
	fmt.Fprintln(w, "STEP 3: Open the app's 'Keys and tokens' tab")
	fmt.Fprintln(w, "STEP 4: Under 'Consumer Keys' generate the API Key and Secret")
	fmt.Fprintln(w, "STEP 5: Under 'Authentication Tokens' generate the Access Token and Secret")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "   ┌──────────────────────┬────────────────────┬──────────────────────┐")
	fmt.Fprintln(w, "   │ Portal name          │ Flag               │ Environment variable │")
	fmt.Fprintln(w, "   ├──────────────────────┼────────────────────┼──────────────────────┤")
	fmt.Fprintln(w, "   │ API Key              │ --consumerKey      │ CONSUMER_KEY         │")
	fmt.Fprintln(w, "   │ API Key Secret       │ --consumerSecret   │ CONSUMER_SECRET      │")
	fmt.Fprintln(w, "   │ Access Token         │ --accessToken      │ ACCESS_TOKEN         │")
	fmt.Fprintln(w, "   │ Access Token Secret  │ --accessSecret     │ ACCESS_TOKEN_SECRET  │")
	fmt.Fprintln(w, "   └──────────────────────┴────────────────────┴──────────────────────┘")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "WARNING: the secrets give full API access as your account. Never commit them;")
	fmt.Fprintln(w, "use 'tweetcsv auth login' to keep them in the system keychain instead.")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// ShowQuickGuide shows a condensed version for experienced users
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "\nDeveloper portal → your app → Keys and tokens")
	fmt.Fprintln(w, "   Need: API Key, API Key Secret, Access Token, Access Token Secret")
	fmt.Fprintln(w, "   Type 'help' for detailed instructions")
}
