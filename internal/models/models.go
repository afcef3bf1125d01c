package models

import (
	"strings"
	"time"
)

// MediaType is the kind of media attached to a post.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaText  MediaType = "text"
	MediaAll   MediaType = "all" // Filter-only value, never stored
)

// ReactionKind is one of the four mood tags a user can attach to a post.
type ReactionKind string

const (
	ReactionHappy     ReactionKind = "happy"
	ReactionSad       ReactionKind = "sad"
	ReactionAngry     ReactionKind = "angry"
	ReactionSurprised ReactionKind = "surprised"
)

// ReactionKinds lists every valid reaction in display order.
var ReactionKinds = []ReactionKind{ReactionHappy, ReactionSad, ReactionAngry, ReactionSurprised}

// Valid reports whether k is one of the four known reactions.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionHappy, ReactionSad, ReactionAngry, ReactionSurprised:
		return true
	}
	return false
}

// Reactions holds the per-kind counters of a post.
type Reactions struct {
	Happy     int `json:"happy"`
	Sad       int `json:"sad"`
	Angry     int `json:"angry"`
	Surprised int `json:"surprised"`
}

// Get returns the counter for k, zero for an unknown kind.
func (r Reactions) Get(k ReactionKind) int {
	switch k {
	case ReactionHappy:
		return r.Happy
	case ReactionSad:
		return r.Sad
	case ReactionAngry:
		return r.Angry
	case ReactionSurprised:
		return r.Surprised
	}
	return 0
}

// Add applies delta to the counter for k. Counters never drop below zero.
func (r *Reactions) Add(k ReactionKind, delta int) {
	var c *int
	switch k {
	case ReactionHappy:
		c = &r.Happy
	case ReactionSad:
		c = &r.Sad
	case ReactionAngry:
		c = &r.Angry
	case ReactionSurprised:
		c = &r.Surprised
	default:
		return
	}
	*c = max(0, *c+delta)
}

// Total is the sum of all four counters.
func (r Reactions) Total() int {
	return r.Happy + r.Sad + r.Angry + r.Surprised
}

// Media is an optional attachment supplied when creating a post.
type Media struct {
	URL  string    `json:"url"`
	Type MediaType `json:"type,omitempty"`
}

// Kind resolves the media type: the explicit one if set, otherwise
// "video" when the URL mentions it, otherwise "image".
func (m *Media) Kind() MediaType {
	if m == nil || m.URL == "" {
		return MediaText
	}
	if m.Type != "" {
		return m.Type
	}
	if strings.Contains(m.URL, "video") {
		return MediaVideo
	}
	return MediaImage
}

// Author is a snapshot of a user's public profile, copied onto posts and
// comments when they are created. It is never refreshed afterwards.
type Author struct {
	ID     string `json:"id"`
	Avatar string `json:"avatar"`
	Emoji  string `json:"emoji"`
}

// Post represents a single anonymous post.
type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	MediaURL      string    `json:"mediaUrl,omitempty"`
	MediaType     MediaType `json:"mediaType"`
	CreatedAt     time.Time `json:"createdAt"`
	Likes         int       `json:"likes"`
	Comments      int       `json:"comments"` // Denormalized count of live comments
	AuthorID      string    `json:"userId,omitempty"`
	AuthorAvatar  string    `json:"userAvatar,omitempty"`
	AuthorEmoji   string    `json:"userEmoji,omitempty"`
	Reactions     Reactions `json:"reactions"`
	IsFlagged     bool      `json:"isFlagged"`
	IsPookieOfDay bool      `json:"isPookieOfDay"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID           string    `json:"id"`
	PostID       string    `json:"postId"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	AuthorID     string    `json:"userId,omitempty"`
	AuthorAvatar string    `json:"userAvatar,omitempty"`
	AuthorEmoji  string    `json:"userEmoji,omitempty"`
}

// User is an anonymous profile.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar"`
	Emoji       string `json:"emoji"`
	IsIncognito bool   `json:"isIncognito"`
}

// Author returns the snapshot of u used on new posts and comments.
func (u User) Author() *Author {
	return &Author{ID: u.ID, Avatar: u.Avatar, Emoji: u.Emoji}
}
