package catalog

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

var (
	punctuationPattern = regexp.MustCompile("[`~!@#$%^&*()_|+\\-=?;:\",.<>{}\\[\\]\\\\/]")
	apostrophePattern  = regexp.MustCompile("['â€™]")
)

// Normalize canonicalizes a free-form metadata string for lookups and
// full-text search: transliterate to ASCII, turn punctuation into spaces,
// drop apostrophes (including the â€™ mojibake), lowercase, and collapse
// whitespace. The result contains only lowercase ASCII letters, digits and
// single spaces, and Normalize is idempotent over its own output.
func Normalize(s string) string {
	out := unidecode.Unidecode(s)
	out = punctuationPattern.ReplaceAllString(out, " ")
	out = apostrophePattern.ReplaceAllString(out, "")
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}

// NormalizeParam normalizes an optional request parameter. The empty string
// marks an absent value: parameters that normalize down to nothing are
// treated the same as parameters that were never sent.
func NormalizeParam(s string) string {
	return Normalize(s)
}
