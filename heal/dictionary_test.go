package heal

import (
	"strings"
	"testing"
)

func TestLoadDictionary(t *testing.T) {
	input := "ve 1000000\nbir 900000\n\nkitap 50000\nve 123\n"
	d, err := LoadDictionary(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Len() != 3 {
		t.Errorf("expected 3 words (duplicate skipped), got %d", d.Len())
	}
	if !d.Contains("ve") || !d.Contains("VE") {
		t.Error("lookup should be case-insensitive")
	}
	if d.Rank("ve") != 1 {
		t.Errorf("expected rank 1 for ve, got %d", d.Rank("ve"))
	}
	if d.Rank("kitap") != 3 {
		t.Errorf("expected rank 3 for kitap, got %d", d.Rank("kitap"))
	}
	if d.Rank("yok") != 0 {
		t.Errorf("expected rank 0 for unknown word, got %d", d.Rank("yok"))
	}
}

func TestCorrect(t *testing.T) {
	d := NewDictionary([]string{"kitap", "kalem", "masa", "kitaplar"})

	tests := []struct {
		word string
		want string
		ok   bool
	}{
		{"kitep", "kitap", true},   // one substitution
		{"kitapp", "kitap", true},  // one deletion
		{"ktap", "kitap", true},    // one insertion
		{"kxyzp", "", false},       // distance 3, over budget
		{"kitap", "", false},       // already correct
	}

	for _, tt := range tests {
		got, ok := d.Correct(tt.word, 2, 0)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Correct(%q) = %q, %v; want %q, %v", tt.word, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCorrectPrefersCloserThenBetterRanked(t *testing.T) {
	// "masa" (rank 1) and "kasa" (rank 2) are both distance 1 from "nasa".
	d := NewDictionary([]string{"masa", "kasa"})
	got, ok := d.Correct("nasa", 2, 0)
	if !ok || got != "masa" {
		t.Errorf("expected best-ranked candidate masa, got %q (%v)", got, ok)
	}
}

func TestCorrectRespectsRankCutoff(t *testing.T) {
	d := NewDictionary([]string{"alpha", "omega", "niche"})
	// "nichx" is distance 1 from rank-3 "niche", but the cutoff hides it.
	if got, ok := d.Correct("nichx", 2, 2); ok {
		t.Errorf("rank cutoff ignored, got %q", got)
	}
	if got, ok := d.Correct("nichx", 2, 3); !ok || got != "niche" {
		t.Errorf("expected niche within cutoff 3, got %q (%v)", got, ok)
	}
}

func TestBoundedEditDistance(t *testing.T) {
	tests := []struct {
		a, b  string
		bound int
		want  int
	}{
		{"abc", "abc", 2, 0},
		{"abc", "abd", 2, 1},
		{"abc", "xyz", 2, -1},
		{"kitap", "kitep", 1, 1},
		{"", "ab", 2, 2},
		{"ab", "", 1, -1},
	}

	for _, tt := range tests {
		got := boundedEditDistance([]rune(tt.a), []rune(tt.b), tt.bound)
		if got != tt.want {
			t.Errorf("boundedEditDistance(%q, %q, %d) = %d, want %d", tt.a, tt.b, tt.bound, got, tt.want)
		}
	}
}
