package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"
)

// Paths of the fields read from a raw post.
const (
	PathCreatedAt      = "created_at"
	PathID             = "id"
	PathFullText       = "full_text"
	PathResultType     = "metadata.result_type"
	PathLanguage       = "metadata.iso_language_code"
	PathUserID         = "user.id"
	PathUserName       = "user.name"
	PathScreenName     = "user.screen_name"
	PathLocation       = "user.location"
	PathFriendsCount   = "user.friends_count"
	PathRetweeted      = "retweeted"
	PathRetweetCount   = "retweet_count"
	PathFollowersCount = "user.followers_count"
)

// ErrInvalidJSON is returned for a raw post that is not a JSON object.
var ErrInvalidJSON = errors.New("raw post is not a valid JSON object")

// MissingFieldError reports a path absent from a raw post.
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("raw post has no %q field", e.Path)
}

// Extract projects one raw post onto a Record. Fields are read in column
// order; the first absent path aborts with a *MissingFieldError. JSON null is
// treated as empty.
func Extract(raw []byte) (Record, error) {
	if !gjson.ValidBytes(raw) {
		return Record{}, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Record{}, ErrInvalidJSON
	}

	x := extractor{doc: doc}
	rec := Record{
		CreatedAt:  x.field(PathCreatedAt),
		ID:         x.field(PathID),
		FullText:   x.text(PathFullText),
		ResultType: x.field(PathResultType),
		Language:   x.field(PathLanguage),
		UserID:     x.field(PathUserID),
		UserName:   x.field(PathUserName),
		ScreenName: x.field(PathScreenName),
		Location:   orDefault(x.field(PathLocation), NullLocation),

		FriendsCount:   orDefault(x.field(PathFriendsCount), ZeroCount),
		Retweeted:      x.field(PathRetweeted),
		RetweetCount:   orDefault(x.field(PathRetweetCount), ZeroCount),
		FollowersCount: orDefault(x.field(PathFollowersCount), ZeroCount),
	}
	if x.err != nil {
		return Record{}, x.err
	}
	rec.PermalinkURL = Permalink(rec.ScreenName, rec.ID)
	return rec, nil
}

// extractor keeps the first lookup error so Extract reads as a field list.
type extractor struct {
	doc gjson.Result
	err error
}

func (x *extractor) lookup(path string) (gjson.Result, bool) {
	if x.err != nil {
		return gjson.Result{}, false
	}
	r := x.doc.Get(path)
	if !r.Exists() {
		x.err = &MissingFieldError{Path: path}
		return r, false
	}
	return r, true
}

func (x *extractor) field(path string) string {
	r, ok := x.lookup(path)
	if !ok {
		return ""
	}
	return Sanitize(stringify(r))
}

// text is field for free text: invalid UTF-8 is replaced and the result is
// NFC-normalized before sanitizing.
func (x *extractor) text(path string) string {
	r, ok := x.lookup(path)
	if !ok {
		return ""
	}
	s := strings.ToValidUTF8(stringify(r), "\uFFFD")
	return Sanitize(norm.NFC.String(s))
}

// stringify renders a JSON value the way it is written to the file. Numbers
// keep their literal text so 64-bit ids survive unrounded.
func stringify(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return ""
	case gjson.True:
		return "True"
	case gjson.False:
		return "False"
	case gjson.String:
		return r.Str
	default:
		return r.Raw
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
