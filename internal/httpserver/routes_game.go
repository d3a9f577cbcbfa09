// apps/go-server/internal/httpserver/routes_game.go
//
// HTTP routes for free-play match-3 games.
//   - POST /game/new   → new game on a random quiescent board
//   - POST /game/tap   → one tap of the selection state machine
//   - POST /game/swap  → explicit swap request (both cells at once)
//   - POST /game/reset → fresh board, score 0, same game ID
//   - GET  /game/{id}  → current snapshot
//
// Games live in the session store; the records DB tracks moves/score for
// history and stats and says who owns each game. Only the owner (signed-in
// user or anonymous cookie) may read or play a game.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/match3/apps/go-server/internal/auth"
	"github.com/robalobadob/match3/apps/go-server/internal/game"
	"github.com/robalobadob/match3/apps/go-server/internal/records"
	"github.com/robalobadob/match3/apps/go-server/internal/store"
)

const (
	modeFree  = "free"
	modeDaily = "daily"
)

// mountGame registers the /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/tap", s.handleTap)
		r.Post("/swap", s.handleSwap)
		r.Post("/reset", s.handleReset)
		r.Get("/{id}", s.handleGetGame)
	})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	g := game.New()
	if !s.startGame(w, r, g, modeFree) {
		return
	}
	writeJSON(w, http.StatusOK, g.Snapshot())
}

// startGame hooks the step stream into g, saves it and records its owner.
// It writes the error response itself and reports whether to continue.
func (s *Server) startGame(w http.ResponseWriter, r *http.Request, g *game.Game, mode string) bool {
	g.SetObserver(s.observerFor(g.ID))
	// Record first; authorize reads the owner from it.
	if err := s.records.StartGame(r.Context(), g.ID, mode, s.owner(w, r)); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("insert game row")
		writeError(w, http.StatusInternalServerError, "db_error")
		return false
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return false
	}
	log.Info().Str("gameId", g.ID).Str("mode", mode).Msg("game started")
	return true
}

// owner is the signed-in user, or the anonymous cookie for guests.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) records.Owner {
	if me := auth.UserFrom(r.Context()); me != nil {
		return records.Owner{UserID: me.ID}
	}
	return records.Owner{AnonID: s.ensureAnonID(w, r)}
}

// authorize checks that the caller owns game id. It writes the error
// response itself and reports whether to continue.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, id string) bool {
	owner, err := s.records.GameOwner(r.Context(), id)
	if err != nil {
		s.writeGameError(w, id, err)
		return false
	}
	if me := auth.UserFrom(r.Context()); me != nil && me.ID == owner.UserID {
		return true
	}
	if owner.AnonID != "" {
		if c, err := r.Cookie(anonCookieName); err == nil && c.Value == owner.AnonID {
			return true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden")
	return false
}

type tapReq struct {
	GameID string `json:"gameId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type tapRes struct {
	Selected *game.Cell `json:"selected"`
	Swapped  bool       `json:"swapped"`
	Steps    int        `json:"steps"`
	Board    game.Board `json:"board"`
	Score    int        `json:"score"`
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	var req tapReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !s.authorize(w, r, req.GameID) {
		return
	}
	var res tapRes
	err := s.store.Update(r.Context(), req.GameID, func(g *game.Game) error {
		tr, err := g.Tap(req.Row, req.Col)
		if err != nil {
			return err
		}
		if tr.Swapped {
			s.recordMove(r.Context(), g)
		}
		res = tapRes{Selected: tr.Selected, Swapped: tr.Swapped, Steps: tr.Steps, Board: g.Board.Clone(), Score: g.Score}
		return nil
	})
	if err != nil {
		s.writeGameError(w, req.GameID, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type swapReq struct {
	GameID string    `json:"gameId"`
	From   game.Cell `json:"from"`
	To     game.Cell `json:"to"`
}

type swapRes struct {
	Swapped bool       `json:"swapped"`
	Steps   int        `json:"steps"`
	Board   game.Board `json:"board"`
	Score   int        `json:"score"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !s.authorize(w, r, req.GameID) {
		return
	}
	var res swapRes
	err := s.store.Update(r.Context(), req.GameID, func(g *game.Game) error {
		if !g.Board.InBounds(req.From) || !g.Board.InBounds(req.To) {
			return game.ErrOutOfRange
		}
		// An explicit swap abandons any half-made tap selection.
		g.Selected = nil
		steps, ok := g.Swap(req.From, req.To)
		if ok {
			s.recordMove(r.Context(), g)
		}
		res = swapRes{Swapped: ok, Steps: steps, Board: g.Board.Clone(), Score: g.Score}
		return nil
	})
	if err != nil {
		s.writeGameError(w, req.GameID, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type resetReq struct {
	GameID string `json:"gameId"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if !s.authorize(w, r, req.GameID) {
		return
	}
	var snap game.Snapshot
	err := s.store.Update(r.Context(), req.GameID, func(g *game.Game) error {
		g.NewGame()
		if err := s.records.ResetGame(r.Context(), g.ID); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("reset game row")
		}
		snap = g.Snapshot()
		return nil
	})
	if err != nil {
		s.writeGameError(w, req.GameID, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.authorize(w, r, id) {
		return
	}
	snap, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeGameError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// recordMove logs a committed swap. Callers hold the game's store lock so
// rows are written in commit order.
func (s *Server) recordMove(ctx context.Context, g *game.Game) {
	if err := s.records.RecordMove(ctx, g.ID, g.Score); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("record move")
	}
}

// writeGameError maps store/engine errors onto status codes.
func (s *Server) writeGameError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, records.ErrGameNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrOutOfRange):
		writeError(w, http.StatusBadRequest, "out_of_range")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout")
	default:
		log.Error().Err(err).Str("gameId", id).Msg("game update")
		writeError(w, http.StatusInternalServerError, "store_error")
	}
}
