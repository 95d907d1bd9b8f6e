// The textconv package converts site text to the canonical output form:
// legacy single-byte charsets are decoded to UTF-8, and right-to-left text
// that arrives in visual order is reordered to logical order. The
// reordering is a required step for Hebrew sources, not cleanup: skipping
// it yields reversed glyph sequences even though the decode succeeds.

package textconv

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/bidi"
)

var charsets = map[string]encoding.Encoding{
	"windows-1255": charmap.Windows1255,
	"windows-1257": charmap.Windows1257,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
}

// Decoder returns a decoder for the site's declared charset label.
func Decoder(label string) (*encoding.Decoder, error) {
	e, ok := charsets[strings.ToLower(label)]
	if !ok {
		return nil, fmt.Errorf("unknown charset %q", label)
	}
	return e.NewDecoder(), nil
}

// DecodeString converts bytes in the given charset to a UTF-8 string.
func DecodeString(label string, b []byte) (string, error) {
	d, err := Decoder(label)
	if err != nil {
		return "", err
	}
	out, err := d.Bytes(b)
	if err != nil {
		return "", fmt.Errorf("can't decode %s text: %w", label, err)
	}
	return string(out), nil
}

type runClass int

const (
	classNeutral runClass = iota
	classLTR
	classRTL
)

func classify(r rune) runClass {
	p, _ := bidi.LookupRune(r)
	switch p.Class() {
	case bidi.R, bidi.AL:
		return classRTL
	case bidi.L, bidi.EN, bidi.AN:
		return classLTR
	default:
		return classNeutral
	}
}

type run struct {
	class runClass
	runes []rune
}

// VisualToLogical reorders a visually-ordered right-to-left line into
// logical (reading) order. The line is cut into directional runs, the run
// sequence is mirrored, and characters inside right-to-left runs are
// reversed. Left-to-right islands (numbers, Latin fragments) keep their
// internal order. A line without any right-to-left character is returned
// unchanged.
func VisualToLogical(s string) string {
	rtl := false
	for _, r := range s {
		if classify(r) == classRTL {
			rtl = true
			break
		}
	}
	if !rtl {
		return s
	}

	var runs []run
	for _, r := range s {
		c := classify(r)
		if len(runs) > 0 && runs[len(runs)-1].class == c {
			runs[len(runs)-1].runes = append(runs[len(runs)-1].runes, r)
			continue
		}
		runs = append(runs, run{class: c, runes: []rune{r}})
	}

	b := strings.Builder{}
	b.Grow(len(s))
	for i := len(runs) - 1; i >= 0; i-- {
		rr := runs[i].runes
		if runs[i].class == classLTR {
			b.WriteString(string(rr))
			continue
		}
		for j := len(rr) - 1; j >= 0; j-- {
			b.WriteRune(rr[j])
		}
	}
	return b.String()
}
