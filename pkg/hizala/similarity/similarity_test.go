package similarity

import (
	"math/rand"
	"testing"
	"unicode/utf8"
)

func TestExactMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Ali", "ali", true},
		{"GİTTİ", "gitti", true},
		{"ev", "eve", false},
		{".", ".", true},
		{"", "", true},
	}
	for _, tt := range tests {
		if got := ExactMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("ExactMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "kitap", "KITAP", true},
		{"long shared prefix", "kitabı", "kitap", true},
		{"prefix below half", "gelecektir", "gelmekteydi", false},
		{"prefix exactly half", "gelmek", "gel", true},
		{"short token", "ev", "eve", false},
		{"different first letter", "okudu", "akudu", false},
		{"prefix too short", "abxyz", "abqrs", false},
		{"unicode prefix", "çocuklar", "çocuğa", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FuzzyMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("FuzzyMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFuzzyFirstCharacterGate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcçdeğıioöşuü")
	word := func() string {
		n := 1 + rng.Intn(8)
		r := make([]rune, n)
		for i := range r {
			r[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(r)
	}

	for i := 0; i < 2000; i++ {
		a, b := word(), word()
		ra, _ := utf8.DecodeRuneInString(a)
		rb, _ := utf8.DecodeRuneInString(b)
		if ra != rb && FuzzyMatch(a, b) {
			t.Fatalf("FuzzyMatch(%q, %q) should be false: first characters differ", a, b)
		}
	}
}

func TestConcatRun(t *testing.T) {
	tokens := []string{"Kitab", "ı", "Oku", "du"}

	if got := ConcatRun(tokens, 0, 2); got != "kitabı" {
		t.Errorf("ConcatRun(0,2) = %q, want %q", got, "kitabı")
	}
	if got := ConcatRun(tokens, 2, 4); got != "okudu" {
		t.Errorf("ConcatRun should clip to bound, got %q", got)
	}
	if got := ConcatRun(tokens, 4, 2); got != "" {
		t.Errorf("ConcatRun past end should be empty, got %q", got)
	}
}

func TestTurkishFolder(t *testing.T) {
	f, err := NewFolder("tr")
	if err != nil {
		t.Fatalf("NewFolder: %v", err)
	}

	if got := f.Fold("ISLAK"); got != "ıslak" {
		t.Errorf("Turkish fold of ISLAK = %q, want ıslak", got)
	}
	if got := f.Fold("İstanbul"); got != "istanbul" {
		t.Errorf("Turkish fold of İstanbul = %q, want istanbul", got)
	}

	folded := f.FoldAll([]string{"IŞIK", "İz"})
	if folded[0] != "ışık" || folded[1] != "iz" {
		t.Errorf("FoldAll = %v", folded)
	}
}

func TestNewFolderRejectsUnknownLocale(t *testing.T) {
	if _, err := NewFolder("xx"); err == nil {
		t.Error("expected error for unknown locale")
	}
}

func TestSharedPrefix(t *testing.T) {
	if !SharedPrefix("gitti", "gitmek", 3) {
		t.Error("gitti/gitmek share 3 characters")
	}
	if SharedPrefix("ev", "eve", 3) {
		t.Error("short tokens never share a 3-character prefix")
	}
}
