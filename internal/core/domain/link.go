package domain

import "strings"

// DocumentExtensions are the finished-document file extensions the
// site publishes.
var DocumentExtensions = []string{".xls", ".xlsx"}

// InProgressExtensions mark transfers the browser has not finished
// writing yet.
var InProgressExtensions = []string{".crdownload", ".tmp", ".part"}

// IsDocumentLink reports whether a hyperlink targets a document
// resource. The extension may appear at the end of the path or before
// a query string; matching is case-insensitive.
func IsDocumentLink(href string) bool {
	lower := strings.ToLower(href)
	if i := strings.IndexByte(lower, '?'); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range DocumentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// HasDocumentExtension reports whether a local filename carries a
// finished-document extension.
func HasDocumentExtension(name string) bool {
	return hasAnySuffix(name, DocumentExtensions)
}

// HasInProgressExtension reports whether a local filename carries an
// in-progress transfer extension.
func HasInProgressExtension(name string) bool {
	return hasAnySuffix(name, InProgressExtensions)
}

func hasAnySuffix(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// DedupeLinks removes exact-string duplicates while preserving
// first-seen order.
func DedupeLinks(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
