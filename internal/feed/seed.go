package feed

import (
	"time"

	"github.com/sujalbistaa/whisphaven/internal/models"
	"github.com/sujalbistaa/whisphaven/internal/ranking"
)

// seed returns the demo collection shown until something is stored. Comment
// counters start at zero because no comment rows exist for these posts.
func (s *Service) seed() []models.Post {
	now := s.now()
	posts := []models.Post{
		{
			ID:        "post1",
			Content:   "I secretly love pineapple on pizza but pretend to hate it around my friends...",
			MediaType: models.MediaText,
			CreatedAt: now.Add(-2 * time.Hour),
			Likes:     42,
		},
		{
			ID:        "post2",
			Content:   "I've been pretending to know how to code for 3 years at my job and nobody has noticed yet. I just use AI for everything 🤫",
			MediaURL:  "https://images.unsplash.com/photo-1555066931-4365d14bab8c",
			MediaType: models.MediaImage,
			CreatedAt: now.Add(-5 * time.Hour),
			Likes:     128,
		},
		{
			ID:        "post3",
			Content:   "Sometimes I wear mismatched socks on purpose because it makes me feel rebellious 🧦",
			MediaType: models.MediaText,
			CreatedAt: now.Add(-12 * time.Hour),
			Likes:     73,
		},
		{
			ID:        "post4",
			Content:   "I rehearse conversations in the shower and then never use any of my prepared material",
			MediaURL:  "https://images.unsplash.com/photo-1561557944-6e7860d1a7eb",
			MediaType: models.MediaImage,
			CreatedAt: now.Add(-24 * time.Hour),
			Likes:     215,
		},
		{
			ID:        "post5",
			Content:   "I still sleep with my childhood stuffed animal and I'm 30 years old. No regrets! 🧸",
			MediaType: models.MediaText,
			CreatedAt: now.Add(-36 * time.Hour),
			Likes:     320,
		},
	}
	ranking.Rerank(posts, s.rng)
	return posts
}
