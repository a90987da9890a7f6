package util

import (
	"strings"
	"unicode"
)

// PathSegment makes s safe to use as one segment of a slash-separated blob
// key: separators and control characters become '_', and the dot names
// that would change directory become '_' as well.
func PathSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, s)
	switch s {
	case "", ".", "..":
		return "_"
	}
	return s
}

// HeaderFileName strips characters that would break a quoted
// Content-Disposition filename parameter.
func HeaderFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
}
