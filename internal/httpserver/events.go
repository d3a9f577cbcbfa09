// apps/go-server/internal/httpserver/events.go
//
// Websocket stream of engine steps.
// A renderer opens GET /game/{id}/events and receives one JSON message per
// engine step (swap, remove, gravity, refill) for that game, in order. The
// renderer paces its own animation; the engine never waits for it.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/match3/apps/go-server/internal/game"
	"github.com/robalobadob/match3/apps/go-server/internal/store"
)

const (
	subscriberBuffer = 256
	writeWait        = 5 * time.Second
)

// StepMessage is the websocket payload for one engine step.
type StepMessage struct {
	Type   string    `json:"type"` // always "step"
	GameID string    `json:"gameId"`
	Step   game.Step `json:"step"`
}

type subscriber struct {
	send chan []byte
}

// Hub fans engine steps out to the websocket subscribers of each game.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{} // keyed by game ID
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) subscribe(gameID string) *subscriber {
	sub := &subscriber{send: make(chan []byte, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*subscriber]struct{})
	}
	h.subs[gameID][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(gameID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[gameID]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.send)
		}
		if len(set) == 0 {
			delete(h.subs, gameID)
		}
	}
}

// Subscribers returns how many streams are open for gameID.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

// Publish sends step to every subscriber of gameID without blocking.
// A subscriber whose buffer is full misses the step.
func (h *Hub) Publish(gameID string, step game.Step) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.subs[gameID]
	if len(set) == 0 {
		return
	}
	msg, err := json.Marshal(StepMessage{Type: "step", GameID: gameID, Step: step})
	if err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("marshal step")
		return
	}
	for sub := range set {
		select {
		case sub.send <- msg:
		default:
			log.Warn().Str("gameId", gameID).Msg("step dropped: subscriber too slow")
		}
	}
}

// observerFor returns the engine hook for a game: debug log plus fan-out.
func (s *Server) observerFor(gameID string) game.Observer {
	return func(step game.Step) {
		log.Debug().
			Str("gameId", gameID).
			Str("kind", string(step.Kind)).
			Int("cascade", step.Cascade).
			Int("matched", len(step.Matches)).
			Int("score", step.Score).
			Msg("engine step")
		s.hub.Publish(gameID, step)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleEvents upgrades to a websocket and streams the game's steps until
// the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.authorize(w, r, id) {
		return
	}
	if _, err := s.store.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store_error")
		return
	}

	origin := s.cfg.ClientOrigin
	up := upgrader
	up.CheckOrigin = func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || o == origin
	}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	sub := s.hub.subscribe(id)
	defer s.hub.unsubscribe(id, sub)

	// Reader: we never expect client messages, but reading notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Str("gameId", id).Msg("websocket write")
				return
			}
		case <-closed:
			return
		}
	}
}
