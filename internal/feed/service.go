// Package feed implements posts, comments, likes and reactions on top of a
// key-value store. Every collection is one JSON document that is read,
// modified and written back whole by each operation.
package feed

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/logging"
	"github.com/sujalbistaa/whisphaven/internal/models"
	"github.com/sujalbistaa/whisphaven/internal/moderation"
	"github.com/sujalbistaa/whisphaven/internal/ranking"
	"github.com/sujalbistaa/whisphaven/internal/store"
)

// Options configures a Service. Zero values pick the defaults.
type Options struct {
	Logger *zap.Logger
	Rand   ranking.Rand       // pookie-of-the-day fallback, ranking.Default if nil
	Clock  func() time.Time   // time.Now if nil
	Filter *moderation.Filter // moderation.Default if nil

	// Latency is slept before every operation to simulate a remote backend.
	Latency time.Duration
}

// Service is the feed backend.
//
// Operations are serialized by a mutex so read-modify-write cycles inside
// one process cannot lose updates. Processes sharing the same store are not
// coordinated: concurrent writers there still race and the last write wins.
type Service struct {
	store   store.Store
	log     *zap.Logger
	rng     ranking.Rand
	now     func() time.Time
	filter  *moderation.Filter
	latency time.Duration

	mu sync.Mutex
}

func New(st store.Store, opts Options) *Service {
	s := &Service{
		store:   st,
		log:     logging.OrNop(opts.Logger),
		rng:     opts.Rand,
		now:     opts.Clock,
		filter:  opts.Filter,
		latency: opts.Latency,
	}
	if s.rng == nil {
		s.rng = ranking.Default
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.filter == nil {
		s.filter = moderation.Default
	}
	return s
}

// begin waits out the simulated latency, then takes the service lock.
// The returned func releases it.
func (s *Service) begin(ctx context.Context) (func(), error) {
	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

// Reset deletes every stored collection. The next read sees the seed posts.
func (s *Service) Reset(ctx context.Context) error {
	unlock, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	for _, key := range []string{store.KeyPosts, store.KeyComments, store.KeyLikedPosts, store.KeyUserReactions} {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	s.log.Info("feed collections reset")
	return nil
}

func newID(prefix string) string {
	return prefix + "_" + ulid.Make().String()
}

// canModify is the ownership check for deletes. It is a weak
// authorization model, not a security boundary: anonymous content and
// anonymous requesters both pass.
func canModify(authorID, requesterID string) bool {
	return authorID == "" || requesterID == "" || authorID == requesterID
}

func sortPostsNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
