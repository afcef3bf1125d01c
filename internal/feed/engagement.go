package feed

import (
	"context"
	"fmt"
	"slices"

	"github.com/sujalbistaa/whisphaven/internal/models"
	"github.com/sujalbistaa/whisphaven/internal/ranking"
	"github.com/sujalbistaa/whisphaven/internal/store"
)

// LikeResult is returned by ToggleLikePost.
type LikeResult struct {
	Post  models.Post `json:"post"`
	Liked bool        `json:"liked"`
}

// ToggleLikePost likes the post for userID, or unlikes it if already liked.
// An empty userID uses the shared anonymous scope.
func (s *Service) ToggleLikePost(ctx context.Context, userID, postID string) (LikeResult, error) {
	unlock, err := s.begin(ctx)
	if err != nil {
		return LikeResult{}, err
	}
	defer unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return LikeResult{}, err
	}
	p, ok := posts.find(postID)
	if !ok {
		return LikeResult{}, fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}
	liked, err := s.loadLiked(ctx)
	if err != nil {
		return LikeResult{}, err
	}

	key := scope(userID)
	set := liked[key]
	nowLiked := true
	if i := slices.Index(set, postID); i >= 0 {
		set = slices.Delete(set, i, i+1)
		p.Likes = max(0, p.Likes-1)
		nowLiked = false
	} else {
		set = append(set, postID)
		p.Likes++
	}
	if len(set) == 0 {
		delete(liked, key)
	} else {
		liked[key] = set
	}

	if err := s.save(ctx, store.KeyLikedPosts, liked); err != nil {
		return LikeResult{}, err
	}
	if err := s.savePosts(ctx, posts); err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Post: *p, Liked: nowLiked}, nil
}

// HasLiked reports whether userID currently likes postID.
func (s *Service) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	unlock, err := s.begin(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	liked, err := s.loadLiked(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(liked[scope(userID)], postID), nil
}

// AddReaction sets userID's reaction on a post. A user holds at most one
// reaction per post: a different kind replaces the previous one, and the
// same kind again clears it.
func (s *Service) AddReaction(ctx context.Context, postID string, kind models.ReactionKind, userID string) (models.Post, error) {
	if !kind.Valid() {
		return models.Post{}, fmt.Errorf("unknown reaction %q: %w", kind, ErrValidation)
	}
	unlock, err := s.begin(ctx)
	if err != nil {
		return models.Post{}, err
	}
	defer unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return models.Post{}, err
	}
	p, ok := posts.find(postID)
	if !ok {
		return models.Post{}, fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}
	reactions, err := s.loadReactions(ctx)
	if err != nil {
		return models.Post{}, err
	}

	key := scope(userID)
	mine := reactions[key]
	if mine == nil {
		mine = map[string]models.ReactionKind{}
	}

	prev, had := mine[postID]
	if had {
		p.Reactions.Add(prev, -1)
	}
	if had && prev == kind {
		delete(mine, postID)
	} else {
		p.Reactions.Add(kind, 1)
		mine[postID] = kind
	}
	if len(mine) == 0 {
		delete(reactions, key)
	} else {
		reactions[key] = mine
	}

	ranking.Rerank(posts.items, s.rng)

	if err := s.save(ctx, store.KeyUserReactions, reactions); err != nil {
		return models.Post{}, err
	}
	if err := s.savePosts(ctx, posts); err != nil {
		return models.Post{}, err
	}
	return *p, nil
}

// UserReaction returns userID's current reaction on postID, if any.
func (s *Service) UserReaction(ctx context.Context, userID, postID string) (models.ReactionKind, bool, error) {
	unlock, err := s.begin(ctx)
	if err != nil {
		return "", false, err
	}
	defer unlock()

	reactions, err := s.loadReactions(ctx)
	if err != nil {
		return "", false, err
	}
	k, ok := reactions[scope(userID)][postID]
	return k, ok, nil
}

// ClearUserState forgets userID's likes and reactions. Post counters are
// left untouched.
func (s *Service) ClearUserState(ctx context.Context, userID string) error {
	unlock, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	key := scope(userID)
	liked, err := s.loadLiked(ctx)
	if err != nil {
		return err
	}
	reactions, err := s.loadReactions(ctx)
	if err != nil {
		return err
	}
	delete(liked, key)
	delete(reactions, key)

	if err := s.save(ctx, store.KeyLikedPosts, liked); err != nil {
		return err
	}
	return s.save(ctx, store.KeyUserReactions, reactions)
}
