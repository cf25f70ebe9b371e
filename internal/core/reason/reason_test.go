package reason

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only spaces", " \t \n ", ""},
		{"trims and collapses", "  need   this\tfor  exams  ", "need this for exams"},
		{"keeps one newline per run", "line one\n\n\n  line two", "line one\nline two"},
		{"strips zero width", "ple\u200base\u2060", "please"},
		{"strips control", "a\x00b\x07c", "abc"},
		{"composes nfc", "cafe\u0301", "caf\u00e9"},
		{"folds fullwidth", "\uff21\uff22\uff23", "ABC"},
		{"drops invalid utf8", "ok\xffay", "okay"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tc.in); got != tc.want {
				t.Fatalf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanCapsLength(t *testing.T) {
	t.Parallel()

	in := strings.Repeat("é", MaxRunes+50)
	got := Clean(in)
	if n := utf8.RuneCountInString(got); n != MaxRunes {
		t.Fatalf("rune count = %d, want %d", n, MaxRunes)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune")
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"  a  b ", "x\u200by\n\n z", "\uff41 b"} {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Fatalf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
