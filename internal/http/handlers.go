package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/events"
	"github.com/sujalbistaa/whisphaven/internal/feed"
	"github.com/sujalbistaa/whisphaven/internal/identity"
	"github.com/sujalbistaa/whisphaven/internal/models"
)

// --- Structs for request binding ---
type CreatePostInput struct {
	Content   string           `json:"content" binding:"max=1000"`
	MediaURL  string           `json:"mediaUrl"`
	MediaType models.MediaType `json:"mediaType"`
}
type CommentInput struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}
type ReactionInput struct {
	Type models.ReactionKind `json:"type" binding:"required"`
}

// PostView is a post plus the caller's own engagement with it.
type PostView struct {
	models.Post
	Liked    bool                `json:"liked"`
	Reaction models.ReactionKind `json:"reaction,omitempty"`
}

// LoginResponse is returned by Login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// --- Handlers ---
type Env struct {
	Feed     *feed.Service
	Identity *identity.Provider
	Tokens   *Tokens
	Events   events.Publisher
	Log      *zap.Logger
}

// fail maps service errors onto HTTP statuses.
func (e *Env) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, feed.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, feed.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, feed.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, identity.ErrNoUser):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		e.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// publish sends ev to live subscribers. Failures never fail the request.
func (e *Env) publish(c *gin.Context, typ string, data any) {
	if e.Events == nil {
		return
	}
	if err := e.Events.Publish(c.Request.Context(), events.Event{Type: typ, Data: data}); err != nil {
		e.Log.Warn("publishing event failed", zap.String("type", typ), zap.Error(err))
	}
}

func (e *Env) Login(c *gin.Context) {
	s, err := e.Identity.Login(c.Request.Context())
	if err != nil {
		e.fail(c, err)
		return
	}
	token, err := e.Tokens.Issue(s.User.ID)
	if err != nil {
		e.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, LoginResponse{Token: token, User: s.User})
}

func (e *Env) Logout(c *gin.Context) {
	if err := e.Identity.Logout(c.Request.Context(), sessionFrom(c)); err != nil {
		e.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (e *Env) Me(c *gin.Context) {
	c.JSON(http.StatusOK, sessionFrom(c).User)
}

func (e *Env) ToggleIncognito(c *gin.Context) {
	u, err := e.Identity.ToggleIncognito(c.Request.Context(), sessionFrom(c))
	if err != nil {
		e.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteAccount removes the caller and everything they posted. Subscribers
// get one delete_post event per removed post.
func (e *Env) DeleteAccount(c *gin.Context) {
	ctx := c.Request.Context()
	s := sessionFrom(c)
	owned, err := e.Feed.ListPostsByAuthor(ctx, s.User.ID)
	if err != nil {
		e.fail(c, err)
		return
	}
	if err := e.Identity.DeleteAccount(ctx, s); err != nil {
		e.fail(c, err)
		return
	}
	for _, p := range owned {
		e.publish(c, events.DeletePost, gin.H{"id": p.ID})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// GetPosts lists the feed. Incognito users do not see their own posts.
func (e *Env) GetPosts(c *gin.Context) {
	opts := feed.ListOptions{
		Type:     models.MediaType(c.Query("type")),
		Reaction: models.ReactionKind(c.Query("reaction")),
	}
	posts, err := e.Feed.ListPosts(c.Request.Context(), opts)
	if err != nil {
		e.fail(c, err)
		return
	}
	if s := sessionFrom(c); s != nil && s.User.IsIncognito {
		visible := posts[:0]
		for _, p := range posts {
			if p.AuthorID != s.User.ID {
				visible = append(visible, p)
			}
		}
		posts = visible
	}
	c.JSON(http.StatusOK, posts)
}

func (e *Env) GetUserPosts(c *gin.Context) {
	posts, err := e.Feed.ListPostsByAuthor(c.Request.Context(), c.Param("id"))
	if err != nil {
		e.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (e *Env) GetPost(c *gin.Context) {
	ctx := c.Request.Context()
	postID := c.Param("id")
	post, err := e.Feed.GetPost(ctx, postID)
	if err != nil {
		e.fail(c, err)
		return
	}
	view := PostView{Post: post}
	if s := sessionFrom(c); s != nil {
		if view.Liked, err = e.Feed.HasLiked(ctx, s.User.ID, postID); err != nil {
			e.fail(c, err)
			return
		}
		if view.Reaction, _, err = e.Feed.UserReaction(ctx, s.User.ID, postID); err != nil {
			e.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, view)
}

func (e *Env) CreatePost(c *gin.Context) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	var media *models.Media
	if input.MediaURL != "" {
		media = &models.Media{URL: input.MediaURL, Type: input.MediaType}
	}
	post, err := e.Feed.CreatePost(c.Request.Context(), input.Content, media, sessionFrom(c).Author())
	if err != nil {
		e.fail(c, err)
		return
	}
	e.publish(c, events.NewPost, post)
	c.JSON(http.StatusCreated, post)
}

func (e *Env) DeletePost(c *gin.Context) {
	postID := c.Param("id")
	if err := e.Feed.DeletePost(c.Request.Context(), postID, sessionFrom(c).UserID()); err != nil {
		e.fail(c, err)
		return
	}
	e.publish(c, events.DeletePost, gin.H{"id": postID})
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (e *Env) FlagPost(c *gin.Context) {
	post, err := e.Feed.FlagPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		e.fail(c, err)
		return
	}
	e.publish(c, events.FlagPost, gin.H{"id": post.ID})
	c.JSON(http.StatusOK, post)
}

func (e *Env) ToggleLike(c *gin.Context) {
	res, err := e.Feed.ToggleLikePost(c.Request.Context(), sessionFrom(c).UserID(), c.Param("id"))
	if err != nil {
		e.fail(c, err)
		return
	}
	e.publish(c, events.Like, gin.H{"id": res.Post.ID, "likes": res.Post.Likes})
	c.JSON(http.StatusOK, res)
}

// AddReaction may move the pookie of the day, so the whole post is sent.
func (e *Env) AddReaction(c *gin.Context) {
	var input ReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	post, err := e.Feed.AddReaction(c.Request.Context(), c.Param("id"), input.Type, sessionFrom(c).UserID())
	if err != nil {
		e.fail(c, err)
		return
	}
	e.publish(c, events.Reaction, post)
	c.JSON(http.StatusOK, post)
}

func (e *Env) GetComments(c *gin.Context) {
	comments, err := e.Feed.GetComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		e.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (e *Env) AddComment(c *gin.Context) {
	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	comment, err := e.Feed.AddComment(c.Request.Context(), c.Param("id"), input.Content, sessionFrom(c).Author())
	if err != nil {
		e.fail(c, err)
		return
	}
	e.publish(c, events.NewComment, comment)
	c.JSON(http.StatusCreated, comment)
}

func (e *Env) DeleteComment(c *gin.Context) {
	commentID := c.Param("id")
	if err := e.Feed.DeleteComment(c.Request.Context(), commentID, sessionFrom(c).UserID()); err != nil {
		e.fail(c, err)
		return
	}
	e.publish(c, events.DeleteComment, gin.H{"id": commentID})
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// ResetFeed wipes every collection; the next read sees the seed posts.
func (e *Env) ResetFeed(c *gin.Context) {
	if err := e.Feed.Reset(c.Request.Context()); err != nil {
		e.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feed reset"})
}
