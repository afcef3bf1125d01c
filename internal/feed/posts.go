package feed

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/models"
	"github.com/sujalbistaa/whisphaven/internal/ranking"
	"github.com/sujalbistaa/whisphaven/internal/store"
)

// ListOptions filters ListPosts. Empty fields match everything.
type ListOptions struct {
	Type     models.MediaType    // image, video, text or all
	Reaction models.ReactionKind // keep posts with at least one such reaction
}

func (o ListOptions) validate() error {
	switch o.Type {
	case "", models.MediaAll, models.MediaImage, models.MediaVideo, models.MediaText:
	default:
		return fmt.Errorf("unknown post type %q: %w", o.Type, ErrValidation)
	}
	if o.Reaction != "" && !o.Reaction.Valid() {
		return fmt.Errorf("unknown reaction %q: %w", o.Reaction, ErrValidation)
	}
	return nil
}

// ListPosts returns every post matching opts, newest first.
func (s *Service) ListPosts(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	unlock, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Post, 0, len(posts.items))
	for _, p := range posts.items {
		if opts.Type != "" && opts.Type != models.MediaAll && p.MediaType != opts.Type {
			continue
		}
		if opts.Reaction != "" && p.Reactions.Get(opts.Reaction) <= 0 {
			continue
		}
		out = append(out, p)
	}
	sortPostsNewestFirst(out)
	return out, nil
}

// ListPostsByAuthor returns the posts written by authorID, newest first.
func (s *Service) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	unlock, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Post{}
	for _, p := range posts.items {
		if authorID != "" && p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	sortPostsNewestFirst(out)
	return out, nil
}

func (s *Service) GetPost(ctx context.Context, postID string) (models.Post, error) {
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
	return *p, nil
}

// CreatePost stores a new post at the head of the feed. Profane content is
// masked and the post flagged, but it is still created. author may be nil
// for anonymous posts.
func (s *Service) CreatePost(ctx context.Context, content string, media *models.Media, author *models.Author) (models.Post, error) {
	content = strings.TrimSpace(content)
	hasMedia := media != nil && strings.TrimSpace(media.URL) != ""
	if content == "" && !hasMedia {
		return models.Post{}, fmt.Errorf("post needs content or media: %w", ErrValidation)
	}
	if hasMedia {
		switch media.Type {
		case "", models.MediaImage, models.MediaVideo, models.MediaText:
		default:
			return models.Post{}, fmt.Errorf("unknown media type %q: %w", media.Type, ErrValidation)
		}
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

	checked := s.filter.Check(content)
	post := models.Post{
		ID:        newID("post"),
		Content:   checked.Masked,
		MediaType: models.MediaText,
		CreatedAt: s.now(),
		IsFlagged: checked.Flagged,
	}
	if hasMedia {
		post.MediaURL = strings.TrimSpace(media.URL)
		post.MediaType = media.Kind()
	}
	if author != nil {
		post.AuthorID = author.ID
		post.AuthorAvatar = author.Avatar
		post.AuthorEmoji = author.Emoji
	}

	posts.prepend(post)
	ranking.Rerank(posts.items, s.rng)
	if err := s.savePosts(ctx, posts); err != nil {
		return models.Post{}, err
	}

	if post.IsFlagged {
		s.log.Info("post flagged by moderation", zap.String("post_id", post.ID))
	}
	created, _ := posts.find(post.ID)
	return *created, nil
}

// DeletePost removes a post together with its comments and every like and
// reaction pointing at it.
func (s *Service) DeletePost(ctx context.Context, postID, requesterID string) error {
	unlock, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return err
	}
	p, ok := posts.find(postID)
	if !ok {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}
	if !canModify(p.AuthorID, requesterID) {
		return fmt.Errorf("post %q belongs to another user: %w", postID, ErrUnauthorized)
	}

	return s.removePosts(ctx, posts, map[string]struct{}{postID: {}})
}

// DeletePostsByAuthor removes every post written by authorID with the same
// cascades as DeletePost. It backs account deletion.
func (s *Service) DeletePostsByAuthor(ctx context.Context, authorID string) (int, error) {
	if authorID == "" {
		return 0, fmt.Errorf("author id required: %w", ErrValidation)
	}
	unlock, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return 0, err
	}
	ids := map[string]struct{}{}
	for _, p := range posts.items {
		if p.AuthorID == authorID {
			ids[p.ID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.removePosts(ctx, posts, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// removePosts drops ids from posts, cascades to the other collections,
// reranks and persists everything. Callers hold the lock.
func (s *Service) removePosts(ctx context.Context, posts *postSet, ids map[string]struct{}) error {
	comments, err := s.loadComments(ctx)
	if err != nil {
		return err
	}
	liked, err := s.loadLiked(ctx)
	if err != nil {
		return err
	}
	reactions, err := s.loadReactions(ctx)
	if err != nil {
		return err
	}

	posts.removeIDs(ids)

	keptComments := comments[:0]
	for _, c := range comments {
		if _, drop := ids[c.PostID]; !drop {
			keptComments = append(keptComments, c)
		}
	}

	for user, set := range liked {
		kept := set[:0]
		for _, id := range set {
			if _, drop := ids[id]; !drop {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(liked, user)
		} else {
			liked[user] = kept
		}
	}

	for user, m := range reactions {
		for id := range ids {
			delete(m, id)
		}
		if len(m) == 0 {
			delete(reactions, user)
		}
	}

	ranking.Rerank(posts.items, s.rng)

	if err := s.savePosts(ctx, posts); err != nil {
		return err
	}
	if err := s.saveComments(ctx, keptComments); err != nil {
		return err
	}
	if err := s.save(ctx, store.KeyLikedPosts, liked); err != nil {
		return err
	}
	return s.save(ctx, store.KeyUserReactions, reactions)
}

// FlagPost marks a post as flagged. Flagging twice is a no-op.
func (s *Service) FlagPost(ctx context.Context, postID string) (models.Post, error) {
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
	if !p.IsFlagged {
		p.IsFlagged = true
		if err := s.savePosts(ctx, posts); err != nil {
			return models.Post{}, err
		}
	}
	return *p, nil
}
