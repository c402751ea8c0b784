package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a product name into a lower-case, URL-safe identifier.
// Diacritics are folded to their base letters. An empty result becomes "product".
func Slugify(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}
	slug := slugSeparators.ReplaceAllString(strings.ToLower(folded), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "product"
	}
	return slug
}

// suffixedSlug disambiguates a slug with the first eight hex digits of the product id.
func suffixedSlug(base, id string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return base + "-" + short
}
