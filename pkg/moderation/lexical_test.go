package moderation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask_Examples(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		wantMatched bool
	}{
		{"Single Word", "I said damn it", "I said d**n it", true},
		{"Clean Text", "What a lovely day for a picnic", "What a lovely day for a picnic", false},
		{"Empty", "", "", false},
		{"Upper Case Keeps Its Edges", "DAMN IT", "D**N IT", true},
		{"Mixed Case", "DaMn", "D**n", true},
		{"Every Occurrence", "damn, damn and damn", "d**n, d**n and d**n", true},
		{"Substring Match", "Hello there", "H**lo there", true},
		{"Two Words", "crap, what the hell", "c**p, what the h**l", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := Mask(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.wantMatched, matched)
		})
	}
}

func TestMask_EveryVocabularyWord(t *testing.T) {
	for _, w := range ProfanityWords() {
		t.Run(w, func(t *testing.T) {
			got, matched := Mask("<" + w + ">")
			want := "<" + w[:1] + strings.Repeat("*", len(w)-2) + w[len(w)-1:] + ">"
			assert.True(t, matched)
			assert.Equal(t, want, got)
		})
	}
}

func TestMask_Idempotent(t *testing.T) {
	inputs := []string{
		"I said damn it",
		"Hell no, that's a load of crap and you know it",
		"SHIT happens to every bastard",
		"nothing to see here",
	}
	for _, in := range inputs {
		once, _ := Mask(in)
		twice, matched := Mask(once)
		assert.Equal(t, once, twice, in)
		assert.False(t, matched, "mask characters must not form vocabulary words: %q", once)
	}
}

func TestFilter_ShortWordsAreFullyMasked(t *testing.T) {
	f := NewFilter([]string{"no"})
	got, matched := f.Apply("No way, NO!")
	assert.True(t, matched)
	assert.Equal(t, "** way, **!", got)
}

func TestFilter_OrderDecidesOverlaps(t *testing.T) {
	longFirst := NewFilter([]string{"hello", "hell"})
	got, _ := longFirst.Apply("hello")
	assert.Equal(t, "h***o", got)

	shortFirst := NewFilter([]string{"hell", "hello"})
	got, _ = shortFirst.Apply("hello")
	assert.Equal(t, "h**lo", got)
}

func TestFilter_RegexMetacharactersAreLiteral(t *testing.T) {
	f := NewFilter([]string{"a.b", "  "})
	got, matched := f.Apply("axb a.b")
	assert.True(t, matched)
	assert.Equal(t, "axb a*b", got)
}

func TestProfanityWords_ReturnsCopy(t *testing.T) {
	words := ProfanityWords()
	words[0] = "changed"
	assert.Equal(t, "damn", ProfanityWords()[0])
}
