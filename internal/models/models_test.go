package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaKind(t *testing.T) {
	tests := []struct {
		name  string
		media *Media
		want  MediaType
	}{
		{"nil media", nil, MediaText},
		{"empty url", &Media{}, MediaText},
		{"explicit type wins", &Media{URL: "https://cdn/video.mp4", Type: MediaImage}, MediaImage},
		{"video inferred", &Media{URL: "https://cdn/my-video-clip"}, MediaVideo},
		{"image inferred", &Media{URL: "https://images.unsplash.com/photo-1"}, MediaImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.media.Kind())
		})
	}
}

func TestReactionsAddFloorsAtZero(t *testing.T) {
	var r Reactions
	r.Add(ReactionSad, -1)
	assert.Equal(t, 0, r.Sad)

	r.Add(ReactionHappy, 2)
	r.Add(ReactionAngry, 1)
	r.Add(ReactionKind("meh"), 5)
	assert.Equal(t, 3, r.Total())
	assert.Equal(t, 2, r.Get(ReactionHappy))
	assert.Equal(t, 0, r.Get(ReactionKind("meh")))
}

func TestReactionKindValid(t *testing.T) {
	for _, k := range ReactionKinds {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, ReactionKind("love").Valid())
	assert.False(t, ReactionKind("").Valid())
}
