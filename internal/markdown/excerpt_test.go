package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Just text", "Just text"},
		{"heading and emphasis", "# Boss Guide\n\nBeat **Malenia** with *bleed*.", "Boss Guide Beat Malenia with bleed."},
		{"link keeps label", "See [the wiki](https://example.com) first", "See the wiki first"},
		{"list items", "- one\n- two", "one two"},
		{"code block dropped", "Intro\n\n```\nrm -rf /\n```\n\nOutro", "Intro Outro"},
		{"inline code kept", "Press `E` to dodge", "Press E to dodge"},
		{"soft break", "line one\nline two", "line one line two"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	short := "A short note."
	if got := Excerpt(short, ExcerptRunes); got != short {
		t.Errorf("Excerpt(short) = %q, want unchanged", got)
	}

	long := strings.Repeat("ü", 250)
	got := Excerpt(long, ExcerptRunes)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Excerpt(long) = %q, want ellipsis", got)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n != ExcerptRunes {
		t.Errorf("excerpt body has %d runes, want %d", n, ExcerptRunes)
	}
}
