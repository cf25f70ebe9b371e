// Package reason cleans the free-text reason a learner attaches to an access request
// Pipeline order
// 1 drop invalid UTF-8
// 2 NFC composition
// 3 width fold fullwidth and halfwidth forms
// 4 strip format and control characters except line breaks
// 5 collapse whitespace runs, keeping one newline where a run had any
// 6 cap at MaxRunes
package reason

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// MaxRunes bounds a stored reason
const MaxRunes = 1000

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			width.Fold,
			runes.Remove(runes.In(unicode.Cf)),
			runes.Remove(runes.Predicate(func(r rune) bool {
				return unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t'
			})),
		)
	},
}

// Clean returns the normalized reason; the result is empty when nothing printable remains
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = s
	}

	return truncate(collapse(out), MaxRunes)
}

func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending, newline := false, false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = true
			newline = newline || r == '\n' || r == '\r'
			continue
		}
		if pending && b.Len() > 0 {
			if newline {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		pending, newline = false, false
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return strings.TrimRightFunc(s[:pos], unicode.IsSpace)
		}
		i++
	}
	return s
}
