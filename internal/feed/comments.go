package feed

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sujalbistaa/whisphaven/internal/models"
	"github.com/sujalbistaa/whisphaven/internal/store"
)

// GetComments returns the comments on postID, newest first.
func (s *Service) GetComments(ctx context.Context, postID string) ([]models.Comment, error) {
	unlock, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	comments, err := s.loadComments(ctx)
	if err != nil {
		return nil, err
	}

	// Walk backwards so equal timestamps still come out newest first.
	out := []models.Comment{}
	for i := len(comments) - 1; i >= 0; i-- {
		if comments[i].PostID == postID {
			out = append(out, comments[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// AddComment masks content and appends a comment to postID. If the post
// no longer exists the comment is still stored, without a counter update.
func (s *Service) AddComment(ctx context.Context, postID, content string, author *models.Author) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, fmt.Errorf("comment is empty: %w", ErrValidation)
	}
	unlock, err := s.begin(ctx)
	if err != nil {
		return models.Comment{}, err
	}
	defer unlock()

	comments, err := s.loadComments(ctx)
	if err != nil {
		return models.Comment{}, err
	}
	posts, err := s.loadPosts(ctx)
	if err != nil {
		return models.Comment{}, err
	}

	c := models.Comment{
		ID:        newID("comment"),
		PostID:    postID,
		Content:   s.filter.Mask(content),
		CreatedAt: s.now(),
	}
	if author != nil {
		c.AuthorID = author.ID
		c.AuthorAvatar = author.Avatar
		c.AuthorEmoji = author.Emoji
	}

	if err := s.saveComments(ctx, append(comments, c)); err != nil {
		return models.Comment{}, err
	}
	if p, ok := posts.find(postID); ok {
		p.Comments++
		if err := s.savePosts(ctx, posts); err != nil {
			s.restore(ctx, store.KeyComments, comments)
			return models.Comment{}, err
		}
	}
	return c, nil
}

// DeleteComment removes a comment and decrements its post's counter. The
// ownership check is as lenient as DeletePost's.
func (s *Service) DeleteComment(ctx context.Context, commentID, requesterID string) error {
	unlock, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	comments, err := s.loadComments(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, c := range comments {
		if c.ID == commentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("comment %q: %w", commentID, ErrNotFound)
	}
	c := comments[idx]
	if !canModify(c.AuthorID, requesterID) {
		return fmt.Errorf("comment %q belongs to another user: %w", commentID, ErrUnauthorized)
	}

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return err
	}
	p, counted := posts.find(c.PostID)
	var before int
	if counted {
		before = p.Comments
		p.Comments = max(0, p.Comments-1)
		if err := s.savePosts(ctx, posts); err != nil {
			return err
		}
	}
	if err := s.saveComments(ctx, append(comments[:idx], comments[idx+1:]...)); err != nil {
		if counted {
			p.Comments = before
			s.restore(ctx, store.KeyPosts, posts.items)
		}
		return err
	}
	return nil
}
