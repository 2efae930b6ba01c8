package ranking

import (
	"strings"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		title     string
		secondary string
		want      float64
	}{
		{"empty query", "", "Anything", "at all", 1},
		{"exact match short title", "Hades", "Hades", "", 110},
		{"exact match ignores case", "hades", "HADES", "", 110},
		{"exact match with content", "hades", "Hades", "Hades is a rogue-like", 130},
		{"prefix", "dark", "Dark Souls", "", 90},
		{"contains short title", "Zelda", "The Legend of Zelda: Breath of the Wild", "", 70},
		{"contains long title", "Zelda", "The Legend of Zelda: Breath of the Wild Master Mode Edition", "", 60},
		{"content only", "souls", "Elden Ring", "from the souls series", 30},
		{"no match short title", "xy", "Celeste", "", 10},
		{"no match long title", "xy", strings.Repeat("a", 50), "", 0},
		{"long title prefix", "aaa", strings.Repeat("a", 60), "", 80},
		{"rune count not bytes", "é", strings.Repeat("é", 49), "", 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.query, tt.title, tt.secondary); got != tt.want {
				t.Errorf("Score(%q, %q, %q) = %v, want %v", tt.query, tt.title, tt.secondary, got, tt.want)
			}
		})
	}
}

func TestScoreExactMatchIsMaximal(t *testing.T) {
	titles := []string{"Portal", "Portal 2", "The Portal", "Portals of Time", "Celeste"}
	for _, secondary := range []string{"", "a portal game"} {
		exact := Score("portal", "Portal", secondary)
		for _, title := range titles {
			if got := Score("portal", title, secondary); got > exact {
				t.Errorf("title %q scored %v above exact match %v", title, got, exact)
			}
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	a := Score("ring", "Elden Ring", "An action RPG")
	for i := 0; i < 10; i++ {
		if b := Score("ring", "Elden Ring", "An action RPG"); b != a {
			t.Fatalf("Score changed between calls: %v then %v", a, b)
		}
	}
}
