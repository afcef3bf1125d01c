package ranking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/sujalbistaa/whisphaven/internal/models"
)

type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func pookies(posts []models.Post) []bool {
	out := make([]bool, len(posts))
	for i, p := range posts {
		out[i] = p.IsPookieOfDay
	}
	return out
}

func TestRerankEmpty(t *testing.T) {
	assert.Equal(t, -1, Rerank(nil, fixedRand(0)))
	assert.Equal(t, -1, Rerank([]models.Post{}, fixedRand(0)))
}

func TestRerankPicksHighestTotal(t *testing.T) {
	posts := []models.Post{
		{ID: "a", IsPookieOfDay: true, Reactions: models.Reactions{Happy: 1}},
		{ID: "b", Reactions: models.Reactions{Sad: 2, Angry: 1}},
		{ID: "c", Reactions: models.Reactions{Surprised: 2}},
	}
	idx := Rerank(posts, fixedRand(0))

	assert.Equal(t, 1, idx)
	if diff := cmp.Diff([]bool{false, true, false}, pookies(posts)); diff != "" {
		t.Errorf("pookie flags mismatch (-want +got):\n%s", diff)
	}
}

func TestRerankTieGoesToFirst(t *testing.T) {
	posts := []models.Post{
		{ID: "a"},
		{ID: "b", Reactions: models.Reactions{Happy: 3}},
		{ID: "c", Reactions: models.Reactions{Sad: 3}},
	}
	assert.Equal(t, 1, Rerank(posts, fixedRand(2)))
}

func TestRerankRandomFallback(t *testing.T) {
	posts := make([]models.Post, 4)
	assert.Equal(t, 2, Rerank(posts, fixedRand(2)))
	assert.Equal(t, []bool{false, false, true, false}, pookies(posts))

	// Unpinned source: only "exactly one" is guaranteed.
	for i := 0; i < 20; i++ {
		Rerank(posts, nil)
		n := 0
		for _, p := range posts {
			if p.IsPookieOfDay {
				n++
			}
		}
		assert.Equal(t, 1, n)
	}
}
