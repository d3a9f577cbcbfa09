// apps/go-server/internal/httpserver/routes_auth.go
//
// Authentication and profile routes.
//   - POST /auth/signup, /auth/login, /auth/logout
//   - GET  /auth/me, /stats/me, /games/mine (require a signed-in user)
//
// Guests play under an anonymous cookie; signing up or logging in moves
// their anonymous games onto the account.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/match3/apps/go-server/internal/auth"
	"github.com/robalobadob/match3/apps/go-server/internal/records"
)

const anonCookieName = "match3_anon"

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuth registers authentication + gated routes (/auth/*, /stats/me, /games/mine).
func (s *Server) mountAuth(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, auth.UserFrom(r.Context()))
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/games/mine", s.handleMyGames)
	})
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims anon history.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	username := auth.NormalizeUsername(body.Username)
	if err := auth.ValidateSignup(username, body.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		log.Error().Err(err).Msg("hash password")
		writeError(w, http.StatusInternalServerError, "hash_failed")
		return
	}
	u, err := s.records.CreateUser(r.Context(), auth.GenID(), username, hash)
	if errors.Is(err, records.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "Username taken")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("create user")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	log.Info().Str("user", u.ID).Msg("signup")
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

// handleLogin authenticates user, sets cookie, and claims anon history.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.records.UserByUsername(r.Context(), auth.NormalizeUsername(body.Username))
	if err != nil || !auth.CheckPassword(u.PasswordHash, body.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

// signIn sets the auth cookie for u and attaches the caller's anonymous games.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *records.User) bool {
	tok, exp, err := s.cfg.Auth.Sign(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.cfg.Auth.SetCookie(w, tok, exp)
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		if err := s.records.ClaimAnon(r.Context(), c.Value, u.ID); err != nil {
			log.Warn().Err(err).Str("user", u.ID).Msg("claim anon games")
		}
	}
	return true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.cfg.Auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	me := auth.UserFrom(r.Context())
	u, err := s.records.UserByID(r.Context(), me.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          u.ID,
		"gamesPlayed": u.GamesPlayed,
		"bestScore":   u.BestScore,
	})
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	me := auth.UserFrom(r.Context())
	rows, err := s.records.Mine(r.Context(), me.ID, 50)
	if err != nil {
		log.Error().Err(err).Str("user", me.ID).Msg("list games")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// --------------------------- optional auth ---------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is present
// and its user still exists. It never 401s.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := s.cfg.Auth.TokenFromRequest(r); tok != "" {
			if claimed, err := s.cfg.Auth.Parse(tok); err == nil {
				if u, err := s.records.UserByID(r.Context(), claimed.ID); err == nil {
					r = r.WithContext(auth.WithUser(r.Context(), &auth.User{ID: u.ID, Username: u.Username}))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth 401s unless withOptionalAuth found a user.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFrom(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := auth.GenID()
	sameSite := http.SameSiteLaxMode
	if s.cfg.Auth.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Auth.Secure,
		SameSite: sameSite,
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}
