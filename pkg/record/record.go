package record

import (
	"fmt"
	"strings"

	"github.com/jszwec/csvutil"
)

// Defaults substituted for empty values after sanitizing.
const (
	NullLocation = "NULL"
	ZeroCount    = "0"
)

// Record is one output row. Field order is the column order of the file.
type Record struct {
	CreatedAt      string `csv:"created_at"`
	ID             string `csv:"id"`
	FullText       string `csv:"full_text"`
	ResultType     string `csv:"result_type"`
	Language       string `csv:"language"`
	UserID         string `csv:"user_id"`
	PermalinkURL   string `csv:"permalink_url"`
	UserName       string `csv:"user_name"`
	ScreenName     string `csv:"screen_name"`
	Location       string `csv:"location"`
	FriendsCount   string `csv:"friends_count"`
	Retweeted      string `csv:"retweeted"`
	RetweetCount   string `csv:"retweet_count"`
	FollowersCount string `csv:"followers_count"`
}

var header = mustHeader()

func mustHeader() []string {
	h, err := csvutil.Header(Record{}, "csv")
	if err != nil {
		panic(fmt.Sprintf("record: invalid csv tags: %v", err))
	}
	return h
}

// Header returns the column names in file order. The file itself carries no
// header row; this is for loaders and DDL.
func Header() []string {
	return append([]string(nil), header...)
}

// Permalink builds the public URL of a post from its author and id.
func Permalink(screenName, id string) string {
	return "https://twitter.com/" + screenName + "/status/" + id
}

// DDL returns a Hive-style external table definition matching the file layout.
func DDL(table string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE EXTERNAL TABLE IF NOT EXISTS %s (\n", table)
	for i, col := range header {
		sep := ","
		if i == len(header)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  %s STRING%s\n", col, sep)
	}
	b.WriteString(")\nROW FORMAT DELIMITED FIELDS TERMINATED BY ','\nSTORED AS TEXTFILE;\n")
	return b.String()
}
