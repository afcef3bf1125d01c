// Package identity manages anonymous user profiles. A Session is created by
// Login or Resume and handed explicitly to every operation that needs the
// current user; nothing is cached globally.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/logging"
	"github.com/sujalbistaa/whisphaven/internal/models"
	"github.com/sujalbistaa/whisphaven/internal/store"
)

// ErrNoUser is returned when there is no logged-in user for the request.
var ErrNoUser = errors.New("no user logged in")

const (
	defaultName  = "Anonymous Pookie"
	defaultEmail = "user@example.com"
)

var (
	cuteEmojis   = []string{"🐱", "🐶", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼", "🐨", "🐯", "🦁", "🐮", "🐷", "🐸", "🐵", "🐙", "🐢", "🦄", "🦋", "🐞"}
	avatarStyles = []string{"avataaars", "micah", "bottts", "open-peeps", "notionists", "adventurer", "lorelei"}
)

// Session carries the user behind one request.
type Session struct {
	User models.User
}

// UserID returns the session's user id, or "" for a nil session.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}

// Author returns the profile snapshot for new content, nil for a nil session.
func (s *Session) Author() *models.Author {
	if s == nil {
		return nil
	}
	return s.User.Author()
}

// AccountCleaner removes what a user left behind in the feed.
type AccountCleaner interface {
	DeletePostsByAuthor(ctx context.Context, authorID string) (int, error)
	ClearUserState(ctx context.Context, userID string) error
}

// Rand picks avatars and emojis.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type Provider struct {
	store   store.Store
	cleaner AccountCleaner
	rng     Rand
	log     *zap.Logger
}

// NewProvider returns a provider persisting profiles in st. cleaner is
// called on DeleteAccount. rng may be nil.
func NewProvider(st store.Store, cleaner AccountCleaner, rng Rand, log *zap.Logger) *Provider {
	if rng == nil {
		rng = globalRand{}
	}
	return &Provider{store: st, cleaner: cleaner, rng: rng, log: logging.OrNop(log)}
}

func (p *Provider) randomProfile() (avatar, emoji string) {
	style := avatarStyles[p.rng.IntN(len(avatarStyles))]
	seed := strconv.FormatInt(int64(p.rng.IntN(1<<30)), 36)
	avatar = fmt.Sprintf("https://api.dicebear.com/7.x/%s/svg?seed=%s", style, seed)
	emoji = cuteEmojis[p.rng.IntN(len(cuteEmojis))]
	return avatar, emoji
}

// Login creates a fresh anonymous user with a random avatar and emoji.
func (p *Provider) Login(ctx context.Context) (*Session, error) {
	avatar, emoji := p.randomProfile()
	u := models.User{
		ID:     "user_" + uuid.NewString(),
		Name:   defaultName,
		Email:  defaultEmail,
		Avatar: avatar,
		Emoji:  emoji,
	}
	if err := p.save(ctx, u); err != nil {
		return nil, err
	}
	p.log.Info("user logged in", zap.String("user_id", u.ID))
	return &Session{User: u}, nil
}

// Resume rebuilds the session of an existing user. A corrupt profile is
// discarded and reported as ErrNoUser.
func (p *Provider) Resume(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	raw, err := p.store.Get(ctx, store.UserKey(userID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoUser
	}
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID != userID {
		p.log.Warn("discarding corrupt user profile", zap.String("user_id", userID), zap.Error(err))
		if err := p.store.Delete(ctx, store.UserKey(userID)); err != nil {
			return nil, err
		}
		return nil, ErrNoUser
	}
	return &Session{User: u}, nil
}

// Logout forgets the user's profile. A later Resume with the same id fails.
func (p *Provider) Logout(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNoUser
	}
	if err := p.store.Delete(ctx, store.UserKey(s.User.ID)); err != nil {
		return err
	}
	p.log.Info("user logged out", zap.String("user_id", s.User.ID))
	return nil
}

// ToggleIncognito flips the incognito flag and persists it.
func (p *Provider) ToggleIncognito(ctx context.Context, s *Session) (models.User, error) {
	if s == nil {
		return models.User{}, ErrNoUser
	}
	s.User.IsIncognito = !s.User.IsIncognito
	if err := p.save(ctx, s.User); err != nil {
		s.User.IsIncognito = !s.User.IsIncognito
		return models.User{}, err
	}
	return s.User, nil
}

// DeleteAccount removes the user's posts, likes, reactions and profile.
func (p *Provider) DeleteAccount(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrNoUser
	}
	id := s.User.ID
	if p.cleaner != nil {
		n, err := p.cleaner.DeletePostsByAuthor(ctx, id)
		if err != nil {
			return fmt.Errorf("deleting posts of %s: %w", id, err)
		}
		if err := p.cleaner.ClearUserState(ctx, id); err != nil {
			return fmt.Errorf("clearing state of %s: %w", id, err)
		}
		p.log.Info("account content removed", zap.String("user_id", id), zap.Int("posts", n))
	}
	return p.store.Delete(ctx, store.UserKey(id))
}

func (p *Provider) save(ctx context.Context, u models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, store.UserKey(u.ID), raw)
}
