// Package ranking picks the "pookie of the day" among a set of posts.
package ranking

import (
	"math/rand/v2"

	"github.com/sujalbistaa/whisphaven/internal/models"
)

// Rand is the randomness source for the no-reactions fallback.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Default draws from the math/rand/v2 global generator.
var Default Rand = globalRand{}

// Rerank clears IsPookieOfDay on every post and sets it on exactly one,
// the post with the highest reaction total. Ties go to the first post in
// the current order. When no post has any reaction one is chosen
// uniformly at random from rng. Returns the chosen index, or -1 when
// posts is empty.
func Rerank(posts []models.Post, rng Rand) int {
	for i := range posts {
		posts[i].IsPookieOfDay = false
	}
	if len(posts) == 0 {
		return -1
	}
	if rng == nil {
		rng = Default
	}

	best, bestTotal := 0, posts[0].Reactions.Total()
	for i := 1; i < len(posts); i++ {
		if t := posts[i].Reactions.Total(); t > bestTotal {
			best, bestTotal = i, t
		}
	}
	if bestTotal == 0 {
		best = rng.IntN(len(posts))
	}

	posts[best].IsPookieOfDay = true
	return best
}
