package record

import "strings"

// stripped holds the characters removed by Sanitize.
const stripped = "\n\r\t,\"'"

var sanitizer = strings.NewReplacer(
	"\n", "",
	"\r", "",
	"\t", "",
	",", "",
	"\"", "",
	"'", "",
)

// Sanitize removes newlines, carriage returns, tabs, commas, double quotes and
// single quotes. Everything else is kept in order, so Sanitize is idempotent.
func Sanitize(s string) string {
	if !strings.ContainsAny(s, stripped) {
		return s
	}
	return sanitizer.Replace(s)
}
