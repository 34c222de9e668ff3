// Package slug derives URL-friendly identifiers from display names.
package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Common accented characters transliterated to ASCII so that slugs stay
// within [a-z0-9-].
var replacer = strings.NewReplacer(
	"ä", "a", "á", "a", "à", "a", "â", "a",
	"ç", "c", "é", "e", "è", "e", "ê", "e",
	"ğ", "g", "ı", "i", "í", "i", "ï", "i",
	"ñ", "n", "ö", "o", "ó", "o", "ô", "o",
	"ş", "s", "ü", "u", "ú", "u", "û", "u",
)

// Make converts name into a slug: lowercased, transliterated, with runs of
// non-alphanumeric characters collapsed into single hyphens.
//
//	Make("Wireless Mouse")  == "wireless-mouse"
//	Make("  Café -- Crème") == "cafe-creme"
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = replacer.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
