package moderation

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestContainsProfanity(t *testing.T) {
	assert.True(t, ContainsProfanity("FUCK this"))
	assert.True(t, ContainsProfanity("what a load of BullShit"))
	assert.False(t, ContainsProfanity("hello world"))
	assert.False(t, ContainsProfanity("you absolute idiot"))
	assert.False(t, ContainsProfanity(""))
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"you fucking idiot", "you ******* idiot"},
		{"FUCK this", "**** this"},
		{"Shit, shit, SHIT!", "****, ****, ****!"},
		{"hello world", "hello world"},
		{"motherfucker 🙃", "************ 🙃"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Mask(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, utf8.RuneCountInString(tt.in), utf8.RuneCountInString(got))
		})
	}
}

func TestCheck(t *testing.T) {
	r := Check("you fucking idiot")
	assert.Equal(t, "you ******* idiot", r.Masked)
	assert.True(t, r.Flagged)

	r = Check("nice day")
	assert.Equal(t, "nice day", r.Masked)
	assert.False(t, r.Flagged)
}

func TestCustomFilter(t *testing.T) {
	f := New("Broccoli", " ", "")
	assert.True(t, f.ContainsProfanity("I hate broccoli"))
	assert.Equal(t, "I hate ********", f.Mask("I hate BROCCOLI"))

	empty := New()
	assert.False(t, empty.ContainsProfanity("fuck"))
	assert.Equal(t, "fuck", empty.Mask("fuck"))
}

func TestCheckFlagsWhateverItMasks(t *testing.T) {
	// U+017F folds to "s" under case-insensitive matching but not under ToLower.
	r := Check("ſhit happens")
	assert.Equal(t, "**** happens", r.Masked)
	assert.True(t, r.Flagged)

	for _, in := range []string{"ſhit happens", "BITCH please", "KİCK", "crap", "clean text", "ß"} {
		r := Check(in)
		assert.Equal(t, r.Masked != in, r.Flagged, in)
	}
}
