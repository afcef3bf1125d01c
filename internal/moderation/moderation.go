// Package moderation detects and masks profanity in user supplied text.
package moderation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// MaskChar replaces every rune of a banned word.
const MaskChar = "*"

// BannedWords is the built-in word list used by Default.
var BannedWords = []string{
	"fuck", "fucking", "fucker", "motherfucker",
	"shit", "bullshit",
	"bitch", "asshole", "bastard", "cunt", "dick",
	"slut", "whore", "piss", "crap",
}

// Default is the filter behind the package-level functions.
var Default = New(BannedWords...)

// Result is the outcome of checking a piece of text.
type Result struct {
	Masked  string
	Flagged bool // The original text contained a banned word
}

// Filter matches a fixed list of words case-insensitively. It is safe
// for concurrent use.
type Filter struct {
	words   []string
	pattern *regexp.Regexp
}

// New builds a filter for words. Empty entries are ignored.
func New(words ...string) *Filter {
	f := &Filter{}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			f.words = append(f.words, w)
		}
	}
	if len(f.words) == 0 {
		return f
	}

	// RE2 alternation is leftmost-first, so longer words go first to mask
	// "fucking" as a whole rather than just its "fuck" prefix.
	alts := make([]string, len(f.words))
	for i, w := range f.words {
		alts[i] = regexp.QuoteMeta(w)
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	f.pattern = regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
	return f
}

// ContainsProfanity reports whether text contains any banned word as a
// substring. It uses the same matcher as Mask, so whatever Mask hides is
// also reported here.
func (f *Filter) ContainsProfanity(text string) bool {
	return f.pattern != nil && f.pattern.MatchString(text)
}

// Mask replaces each banned word occurrence with a run of MaskChar of the same length.
func (f *Filter) Mask(text string) string {
	if f.pattern == nil {
		return text
	}
	return f.pattern.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Repeat(MaskChar, utf8.RuneCountInString(m))
	})
}

// Check masks text and reports whether the original was profane.
func (f *Filter) Check(text string) Result {
	return Result{Masked: f.Mask(text), Flagged: f.ContainsProfanity(text)}
}

func ContainsProfanity(text string) bool { return Default.ContainsProfanity(text) }

func Mask(text string) string { return Default.Mask(text) }

func Check(text string) Result { return Default.Check(text) }
