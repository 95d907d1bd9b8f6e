package http

import (
	"strings"
)

// Base returns the base url of a given url, up to and including the last
// path separator.
func Base(url string) string {
	i := strings.LastIndexByte(url, '/')
	if i >= 0 {
		return url[:i+1]
	}
	return ""
}

// IsAbs reports whether the url carries a schema or is rooted.
func IsAbs(url string) bool {
	if len(url) == 0 {
		return false
	}
	s := strings.ToLower(url)
	if strings.HasPrefix(s, "http:") || strings.HasPrefix(s, "https:") || strings.HasPrefix(s, "file:") {
		return true
	}
	return url[0] == '/'
}

// Rel resolves target against base. Detail links on schedule pages are
// usually relative; absolute ones pass through unchanged.
func Rel(base, target string) string {
	if IsAbs(target) {
		if len(target) > 0 && target[0] == '/' {
			// rooted path: keep the site origin
			if i := strings.Index(base, "://"); i >= 0 {
				if j := strings.IndexByte(base[i+3:], '/'); j >= 0 {
					return base[:i+3+j] + target
				}
			}
		}
		return target
	}
	return Base(base) + target
}
