package jscript

import (
	"regexp"
	"unicode/utf8"
)

// AnchorIndex finds the first occurrence of the anchor pattern and returns
// the index of the first '{' at or after it, -1 when either is missing.
func AnchorIndex(b []byte, anchor *regexp.Regexp) int {
	loc := anchor.FindIndex(b)
	if loc == nil {
		return -1
	}
	for p := loc[0]; p < len(b); p++ {
		if b[p] == '{' {
			return p
		}
	}
	return -1
}

// FindObjectEnd scans from an opening '{' to its matching '}', honoring
// nesting and quoted strings. Returns the index one past the closing
// bracket, -1 when the buffer ends first.
func FindObjectEnd(b []byte, objectStart int) int {
	if objectStart >= len(b) || b[objectStart] != '{' {
		return -1
	}

	nesting := 0
	inDouble := false
	inSingle := false
	escaped := false

	for p := objectStart + 1; p < len(b); {
		r, size := utf8.DecodeRune(b[p:])
		switch r {
		case '\\':
			escaped = !escaped
			p += size
			continue
		case '"':
			if !escaped && !inSingle {
				inDouble = !inDouble
			}
		case '\'':
			if !escaped && !inDouble {
				inSingle = !inSingle
			}
		case '{':
			if !inSingle && !inDouble {
				nesting++
			}
		case '}':
			if !inSingle && !inDouble {
				if nesting == 0 {
					return p + 1
				}
				nesting--
			}
		}
		escaped = false
		p += size
	}
	return -1
}

// ObjectAtAnchor returns the bytes of the object literal starting at the
// first '{' after the anchor, nil when no well-formed object is there.
func ObjectAtAnchor(b []byte, anchor *regexp.Regexp) []byte {
	start := AnchorIndex(b, anchor)
	if start < 0 {
		return nil
	}
	end := FindObjectEnd(b, start)
	if end < 0 {
		return nil
	}
	return b[start:end]
}
