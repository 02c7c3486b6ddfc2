package services

import (
	"path"
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`[\s\p{Z}\v\x{85}]+`)
	outsideToken   = regexp.MustCompile(`[^a-z0-9-]`)
	nonAlphanumRun = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRun      = regexp.MustCompile(`-{2,}`)
)

// Normalize turns free text into a comparable token: lower case, runs of
// Unicode whitespace become one hyphen, anything outside [a-z0-9-] is dropped,
// repeated hyphens collapse and edge hyphens are trimmed. Empty input gives "".
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = outsideToken.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// StripExtension removes any directory part and the final ".ext" suffix.
// A bare extension such as ".jpg" has no name left and gives "".
func StripExtension(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// NormalizeFileName is Normalize applied to a file name without its extension.
func NormalizeFileName(fileName string) string {
	return Normalize(StripExtension(fileName))
}

// Slugify builds the URL slug of a product name. Every non-alphanumeric run
// becomes a hyphen before the same collapse and trim as Normalize.
func Slugify(name string) string {
	s := nonAlphanumRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
