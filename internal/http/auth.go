package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sujalbistaa/whisphaven/internal/identity"
)

const (
	tokenTTL    = 7 * 24 * time.Hour
	tokenIssuer = "whisphaven"
	sessionKey  = "session"
)

// Tokens issues and verifies the HS256 bearer tokens handed out at login.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue returns a signed token whose subject is userID.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies token and returns its subject.
func (t *Tokens) Parse(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	claims := jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.New("token expired")
		}
		return "", err
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.New("token is not valid")
	}
	return claims.Subject, nil
}

// OptionalAuth attaches the caller's session when a bearer token is sent.
// Requests without a token continue anonymously; a bad token is rejected.
func OptionalAuth(tokens *Tokens, users *identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Format should be: Bearer <token>"})
			return
		}
		userID, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token: " + err.Error()})
			return
		}
		s, err := users.Resume(c.Request.Context(), userID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, identity.ErrNoUser) {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": fmt.Sprintf("Cannot resume session: %v", err)})
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

// RequireAuth rejects requests that OptionalAuth left anonymous.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// sessionFrom returns the caller's session, nil when anonymous.
func sessionFrom(c *gin.Context) *identity.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*identity.Session)
	return s
}
