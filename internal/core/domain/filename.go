package domain

import (
	"net/url"
	"path"
	"strings"
	"unicode"
)

// reservedChars are characters invalid on Windows and generally unsafe
// in filenames. Each is replaced with '_'.
const reservedChars = `<>:"/\|?*`

// SanitizeFilename normalises a URL-derived base filename into a
// filesystem-safe name. The steps are order-dependent: strip any
// trailing query component, replace reserved characters, trim leading
// whitespace, trim the trailing run of spaces and dots.
//
// Sanitisation is idempotent: sanitize(sanitize(x)) == sanitize(x).
func SanitizeFilename(filename string) string {
	if i := strings.IndexByte(filename, '?'); i >= 0 {
		filename = filename[:i]
	}
	filename = strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedChars, r) {
			return '_'
		}
		return r
	}, filename)
	filename = strings.TrimSpace(filename)
	// Whitespace and dots can interleave at the end ("x. ."); trimming
	// them as one class keeps the result stable under re-sanitisation.
	return strings.TrimRightFunc(filename, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
}

// FilenameFromURL extracts the URL-decoded base filename from a link
// and sanitises it. Returns an empty string if the URL has no usable
// path component.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Fall back to the raw string; sanitisation strips the query.
		return SanitizeFilename(path.Base(rawURL))
	}
	name := path.Base(u.Path)
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "." || name == "/" {
		return ""
	}
	return SanitizeFilename(name)
}
