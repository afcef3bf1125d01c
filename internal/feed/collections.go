package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/models"
	"github.com/sujalbistaa/whisphaven/internal/store"
)

const anonymousScope = "anonymous"

// scope maps a user id to its key in the per-user collections. Callers
// without an id share one anonymous scope.
func scope(userID string) string {
	if userID == "" {
		return anonymousScope
	}
	return userID
}

// likedSets maps a user scope to the post ids that user has liked.
type likedSets map[string][]string

// reactionMaps maps a user scope to that user's reaction per post id.
type reactionMaps map[string]map[string]models.ReactionKind

// postSet is the loaded posts collection plus an id index. The slice keeps
// the stored order, the index makes single-post lookups O(1).
type postSet struct {
	items []models.Post
	index map[string]int
}

func newPostSet(items []models.Post) *postSet {
	p := &postSet{items: items}
	p.reindex()
	return p
}

func (p *postSet) reindex() {
	p.index = make(map[string]int, len(p.items))
	for i, post := range p.items {
		p.index[post.ID] = i
	}
}

func (p *postSet) find(id string) (*models.Post, bool) {
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return &p.items[i], true
}

func (p *postSet) prepend(post models.Post) {
	p.items = append([]models.Post{post}, p.items...)
	p.reindex()
}

// removeIDs drops every post whose id is in ids.
func (p *postSet) removeIDs(ids map[string]struct{}) {
	kept := p.items[:0]
	for _, post := range p.items {
		if _, drop := ids[post.ID]; !drop {
			kept = append(kept, post)
		}
	}
	p.items = kept
	p.reindex()
}

// load decodes the value under key into v. It reports false when the key is
// absent or holds malformed JSON; the latter is logged and otherwise treated
// as if the key were missing. Only store failures are returned as errors.
func (s *Service) load(ctx context.Context, key string, v any) (bool, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.log.Warn("discarding corrupt collection", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Service) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// restore writes back a collection after a later write in the same
// operation failed. The store has no transactions, so this is best effort:
// a failed restore is logged and the caller still reports the original error.
func (s *Service) restore(ctx context.Context, key string, v any) {
	if err := s.save(ctx, key, v); err != nil {
		s.log.Error("restoring collection failed", zap.String("key", key), zap.Error(err))
	}
}

// loadPosts falls back to the seed collection when nothing usable is stored.
// The seed is written back right away so its pookie of the day, picked at
// random, stays fixed until the next mutation.
func (s *Service) loadPosts(ctx context.Context) (*postSet, error) {
	var items []models.Post
	ok, err := s.load(ctx, store.KeyPosts, &items)
	if err != nil {
		return nil, err
	}
	if !ok {
		seeded := newPostSet(s.seed())
		if err := s.savePosts(ctx, seeded); err != nil {
			return nil, err
		}
		return seeded, nil
	}
	for i := range items {
		if items[i].MediaType == "" {
			items[i].MediaType = models.MediaText
		}
	}
	return newPostSet(items), nil
}

func (s *Service) savePosts(ctx context.Context, posts *postSet) error {
	items := posts.items
	if items == nil {
		items = []models.Post{}
	}
	return s.save(ctx, store.KeyPosts, items)
}

func (s *Service) loadComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if _, err := s.load(ctx, store.KeyComments, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Service) saveComments(ctx context.Context, comments []models.Comment) error {
	if comments == nil {
		comments = []models.Comment{}
	}
	return s.save(ctx, store.KeyComments, comments)
}

func (s *Service) loadLiked(ctx context.Context) (likedSets, error) {
	liked := likedSets{}
	ok, err := s.load(ctx, store.KeyLikedPosts, &liked)
	if err != nil {
		return nil, err
	}
	if !ok || liked == nil {
		liked = likedSets{}
	}
	return liked, nil
}

func (s *Service) loadReactions(ctx context.Context) (reactionMaps, error) {
	reactions := reactionMaps{}
	ok, err := s.load(ctx, store.KeyUserReactions, &reactions)
	if err != nil {
		return nil, err
	}
	if !ok || reactions == nil {
		reactions = reactionMaps{}
	}
	return reactions, nil
}
