package moderation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaskChar replaces the interior of a disallowed word.
const MaskChar = '*'

// profanityWords is applied in this order. Overlapping entries are resolved by the order
// alone, so do not sort or deduplicate it.
var profanityWords = []string{
	"damn", "hell", "shit", "fuck", "bitch", "ass", "bastard", "crap",
	"piss", "cock", "dick", "pussy", "whore", "slut", "fag", "nigger",
	"retard", "gay", "lesbian", "homo", "queer", "tranny",
}

// ProfanityWords returns a copy of the default vocabulary in application order.
func ProfanityWords() []string {
	out := make([]string, len(profanityWords))
	copy(out, profanityWords)
	return out
}

type rule struct {
	word    string
	pattern *regexp.Regexp
}

// Filter masks a fixed vocabulary of words. It is immutable and safe for concurrent use.
type Filter struct {
	rules []rule
}

// NewFilter compiles a case-insensitive filter for words, applied in the given order.
// Matching is by substring: "hell" also masks the first four letters of "hello".
func NewFilter(words []string) *Filter {
	f := &Filter{rules: make([]rule, 0, len(words))}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		f.rules = append(f.rules, rule{
			word:    w,
			pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(w)),
		})
	}
	return f
}

var defaultFilter = NewFilter(profanityWords)

// Default returns the filter built from the default vocabulary.
func Default() *Filter {
	return defaultFilter
}

// Mask applies the default filter.
func Mask(text string) (string, bool) {
	return defaultFilter.Apply(text)
}

// Apply replaces every occurrence of every vocabulary word, one word at a time, rewriting
// the text progressively. matched reports whether anything was replaced.
func (f *Filter) Apply(text string) (string, bool) {
	matched := false
	for _, r := range f.rules {
		if !r.pattern.MatchString(text) {
			continue
		}
		matched = true
		text = r.pattern.ReplaceAllStringFunc(text, maskWord)
	}
	return text, matched
}

// maskWord keeps the first and last rune of words longer than two runes.
func maskWord(w string) string {
	n := utf8.RuneCountInString(w)
	if n <= 2 {
		return strings.Repeat(string(MaskChar), n)
	}
	runes := []rune(w)
	var b strings.Builder
	b.Grow(len(w))
	b.WriteRune(runes[0])
	b.WriteString(strings.Repeat(string(MaskChar), n-2))
	b.WriteRune(runes[n-1])
	return b.String()
}
