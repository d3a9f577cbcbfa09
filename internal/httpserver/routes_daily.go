// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Board" mode.
//   - POST /daily/new → start a game whose token stream is seeded from today's date
//
// Everyone playing on the same UTC day gets the same starting board and,
// for the same moves, the same refills. The seed is an HMAC of the date
// key, so the salt keeps upcoming boards unguessable.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/match3/apps/go-server/internal/daily"
	"github.com/robalobadob/match3/apps/go-server/internal/game"
)

type dailyRes struct {
	game.Snapshot
	Date string `json:"date"`
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
	})
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	now := s.cfg.Now().UTC()
	g := game.New(game.WithSeed(daily.Seed(now, s.cfg.DailySalt)))
	if !s.startGame(w, r, g, modeDaily) {
		return
	}
	writeJSON(w, http.StatusOK, dailyRes{Snapshot: g.Snapshot(), Date: daily.DateKey(now)})
}
