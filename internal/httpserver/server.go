// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the match-3 backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request logs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: /game/new (anyone), then /game/tap, /game/swap, /game/reset, /game/{id} for the game's owner.
//   - Step stream: /game/{id}/events (owner only, websocket, outside the handler timeout).
//   - Daily board (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine.
//   - Idle sweeper: live games untouched for Config.IdleTTL are dropped from the store.
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     routes can still run for guests.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/match3/apps/go-server/internal/auth"
	"github.com/robalobadob/match3/apps/go-server/internal/records"
	"github.com/robalobadob/match3/apps/go-server/internal/store"
)

// Config carries the settings main reads from the environment.
type Config struct {
	Auth         auth.Config
	ClientOrigin string           // CORS origin; defaults to http://localhost:5173
	DailySalt    string           // HMAC salt for the daily seed
	Now          func() time.Time // clock for the daily board; defaults to time.Now
	IdleTTL      time.Duration    // live games idle this long are evicted; defaults to 2h
}

// Server bundles router, in-memory game store, records DB and the step hub.
type Server struct {
	r       *chi.Mux
	store   store.Store
	records *records.Store
	hub     *Hub
	cfg     Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, rec *records.Store, cfg Config) *Server {
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5173"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), store: st, records: rec, hub: NewHub(), cfg: cfg}

	// --- middleware ---
	s.r.Use(chimw.RequestID)    // add X-Request-ID
	s.r.Use(chimw.RealIP)       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)      // zerolog access log
	s.r.Use(chimw.Recoverer)    // recover from panics
	s.r.Use(s.corsFromConfig)   // credentials-friendly CORS
	s.r.Use(s.withOptionalAuth) // guests allowed everywhere; gated routes check again

	// Websocket upgrades must not sit behind the handler timeout.
	s.r.Get("/game/{id}/events", s.handleEvents)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"match3-go","endpoints":["/health","POST /game/new","POST /game/tap","POST /game/swap","POST /game/reset","GET /game/{id}","GET /game/{id}/events","POST /daily/new","/auth/*","GET /stats/me","GET /games/mine"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		s.mountGame(r)
		s.mountDaily(r)
		s.mountAuth(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr and runs the idle sweeper until the
// listener stops.
func (s *Server) Start(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.sweepLoop(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// sweepLoop evicts idle games every quarter of the idle TTL.
func (s *Server) sweepLoop(ctx context.Context) {
	every := s.cfg.IdleTTL / 4
	if every < time.Second {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweepIdle(ctx, now.Add(-s.cfg.IdleTTL))
		}
	}
}

// sweepIdle deletes every live game last touched before cutoff and returns
// how many went. Their records rows stay as history.
func (s *Server) sweepIdle(ctx context.Context, cutoff time.Time) int {
	ids, err := s.store.IdleSince(ctx, cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("list idle games")
		return 0
	}
	for _, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("gameId", id).Msg("evict game")
		}
	}
	if len(ids) > 0 {
		log.Info().Int("evicted", len(ids)).Msg("idle games swept")
	}
	return len(ids)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Hub exposes the step hub (useful for tests).
func (s *Server) Hub() *Hub { return s.hub }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromConfig enables credentialed CORS for a single origin.
func (s *Server) corsFromConfig(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs method, path, status and duration for every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
