// apps/go-server/internal/auth/auth.go
//
// Authentication helpers shared by the HTTP layer.
// Responsibilities:
//   - Signup validation and bcrypt password hashing.
//   - HS256 JWT issue/verify carrying the user's id and username.
//   - Auth cookie handling and bearer/cookie token extraction.
//   - Carrying the signed-in user through request contexts.

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// User is placed into request context by the auth middleware.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Config holds token and cookie settings, read from the environment by main.
type Config struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Secure     bool // production: Secure + SameSite=None cookies
}

// NormalizeUsername trims whitespace; adjust here if you want stricter rules.
func NormalizeUsername(u string) string {
	return strings.TrimSpace(u)
}

// ValidateSignup enforces basic username/password rules.
func ValidateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3–24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8–100 chars")
	}
	return nil
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost) // cost=10
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Sign creates an HS256 JWT with id/username that expires after c.TTL.
func (c Config) Sign(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(c.TTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString(c.Secret)
	return ss, exp, err
}

// Parse verifies a token and returns the user it names.
func (c Config) Parse(token string) (*User, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, ErrInvalidToken
	}
	return &User{ID: id, Username: username}, nil
}

// SetCookie writes the auth token cookie with appropriate security attributes.
func (c Config) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
		Expires:  exp,
	})
}

// ClearCookie deletes the auth token cookie.
func (c Config) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
		MaxAge:   -1,
	})
}

func (c Config) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode // required for third‑party contexts when Secure
	}
	return http.SameSiteLaxMode
}

// TokenFromRequest extracts a bearer token from the Authorization header or the auth cookie.
func (c Config) TokenFromRequest(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if ck, err := r.Cookie(c.CookieName); err == nil {
		return ck.Value
	}
	return ""
}

type ctxUserKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

// UserFrom returns the signed-in user, or nil for guests.
func UserFrom(ctx context.Context) *User {
	u, _ := ctx.Value(ctxUserKey{}).(*User)
	return u
}

// GenID creates a 22‑char URL‑safe, crypto‑random identifier (no padding).
func GenID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
