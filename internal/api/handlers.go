package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/calvinwijaya/blackjack-web/internal/db"
	"github.com/calvinwijaya/blackjack-web/internal/game"
	"github.com/calvinwijaya/blackjack-web/internal/logging"
	"github.com/calvinwijaya/blackjack-web/internal/store"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const SessionCookieName = "blackjack_session"

// Handlers contains all the API handlers
type Handlers struct {
	store       store.Store
	database    *db.Database
	hub         *Hub
	metrics     *Metrics
	logger      *zerolog.Logger
	sessionOpts []game.Option
}

// NewHandlers creates a new instance of Handlers. database may be nil, in
// which case rounds are not journaled. sessionOpts are applied to every
// new session.
func NewHandlers(store store.Store, database *db.Database, hub *Hub, metrics *Metrics, logger *zerolog.Logger, sessionOpts ...game.Option) *Handlers {
	if logger == nil {
		logger = logging.GetZeroLogger("api::handlers", nil)
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Handlers{
		store:       store,
		database:    database,
		hub:         hub,
		metrics:     metrics,
		logger:      logger,
		sessionOpts: sessionOpts,
	}
}

// RegisterRoutes registers all API routes
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	// Player endpoints
	r.HandleFunc("/api/player", h.RegisterPlayer).Methods("POST")
	r.HandleFunc("/api/player", h.LeaveGame).Methods("DELETE")
	r.HandleFunc("/api/player/stats", h.GetPlayerStats).Methods("GET")

	// Game endpoints
	r.HandleFunc("/api/game", h.GetGame).Methods("GET")
	r.HandleFunc("/api/game/bet", h.PlaceBet).Methods("POST")
	r.HandleFunc("/api/game/hit", h.Hit).Methods("POST")
	r.HandleFunc("/api/game/stand", h.Stand).Methods("POST")
	r.HandleFunc("/api/game/dealer/hit", h.DealerHit).Methods("POST")
	r.HandleFunc("/api/game/dealer/play", h.DealerPlay).Methods("POST")

	// WebSocket endpoint
	r.HandleFunc("/ws", h.WebSocket).Methods("GET")

	r.Handle("/metrics", h.metrics.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
}

// response helper function to send JSON responses
func response(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// error response helper function
func errorResponse(w http.ResponseWriter, status int, message string) {
	response(w, status, map[string]string{"error": message})
}

// gameErrorResponse maps core errors to HTTP statuses
func (h *Handlers) gameErrorResponse(w http.ResponseWriter, err error) {
	var (
		validation game.ValidationError
		bet        game.InvalidBetError
		transition game.InvalidTransitionError
		settled    game.AlreadySettledError
		empty      game.EmptyDeckError
	)

	switch {
	case errors.As(err, &validation):
		errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &bet):
		errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &transition), errors.As(err, &settled):
		errorResponse(w, http.StatusConflict, err.Error())
	case errors.As(err, &empty):
		h.logger.Error().Err(err).Msg("Deck ran out of cards")
		errorResponse(w, http.StatusInternalServerError, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Unexpected game error")
		errorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

func (h *Handlers) gameResponse(w http.ResponseWriter, status int, view game.View) {
	response(w, status, map[string]interface{}{
		"game":    view,
		"message": outcomeMessage(view),
	})
}

// RegisterPlayer registers the player of the browser session. A request
// without a valid session cookie starts a new session.
func (h *Handlers) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var view game.View
	entry, err := h.sessionEntry(r)
	if err != nil {
		sess := game.NewSession(h.sessionOpts...)
		if err := sess.RegisterPlayer(req.Name); err != nil {
			h.gameErrorResponse(w, err)
			return
		}
		view = sess.CurrentView()
		if _, err := h.store.SaveSession(sess); err != nil {
			h.logger.Error().Err(err).Msg("Failed to save session")
			errorResponse(w, http.StatusInternalServerError, "Failed to save session")
			return
		}
		h.metrics.SetActiveSessions(h.store.Count())
	} else {
		entry.Lock()
		err = entry.Session.RegisterPlayer(req.Name)
		view = entry.Session.CurrentView()
		entry.Unlock()
		if err != nil {
			h.gameErrorResponse(w, err)
			return
		}
	}

	setSessionCookie(w, view.ID)
	h.metrics.PlayerRegistered()
	h.logger.Info().Str(logging.SessionIDKey, view.ID).Str("name", view.Name).Int("balance", view.Balance).Msg("Player registered")

	if h.database != nil {
		if err := h.database.SavePlayer(r.Context(), view.ID, view.Name, view.Balance); err != nil {
			h.logger.Error().Err(err).Str(logging.SessionIDKey, view.ID).Msg("Failed to journal player")
		}
	}

	if h.hub != nil {
		h.hub.BroadcastView(view.ID, view)
	}
	h.gameResponse(w, http.StatusCreated, view)
}

// LeaveGame discards the session of the request
func (h *Handlers) LeaveGame(w http.ResponseWriter, r *http.Request) {
	entry, err := h.sessionEntry(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "No active session")
		return
	}

	if err := h.store.DeleteSession(entry.Session.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		errorResponse(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.metrics.SetActiveSessions(h.store.Count())
	clearSessionCookie(w)

	response(w, http.StatusOK, map[string]string{
		"success": "true",
		"message": "Successfully left the game",
	})
}

// GetPlayerStats returns the journaled statistics of the session's player
func (h *Handlers) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	entry, err := h.sessionEntry(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "No active session")
		return
	}

	if h.database == nil {
		errorResponse(w, http.StatusServiceUnavailable, "Database not available")
		return
	}

	stats, err := h.database.GetPlayerStats(r.Context(), entry.Session.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Error retrieving player statistics")
		errorResponse(w, http.StatusInternalServerError, "Error retrieving player statistics")
		return
	}
	if stats == nil {
		errorResponse(w, http.StatusNotFound, "Player not found")
		return
	}

	response(w, http.StatusOK, stats)
}

// GetGame returns the current view of the session
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	entry, err := h.sessionEntry(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "No active session")
		return
	}

	entry.Lock()
	view := entry.Session.CurrentView()
	entry.Unlock()

	h.gameResponse(w, http.StatusOK, view)
}

// PlaceBet starts a new round with the requested bet
func (h *Handlers) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.act(w, r, "bet", func(s *game.Session) (*game.Result, error) {
		res, err := s.StartRound(req.Amount)
		if err == nil {
			h.metrics.RoundStarted()
		}
		return res, err
	})
}

// Hit gives the player another card
func (h *Handlers) Hit(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "hit", (*game.Session).PlayerHit)
}

// Stand ends the player's turn
func (h *Handlers) Stand(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "stand", (*game.Session).PlayerStand)
}

// DealerHit draws one card for the dealer
func (h *Handlers) DealerHit(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "dealer hit", (*game.Session).DealerHit)
}

// DealerPlay draws for the dealer until the round is resolved
func (h *Handlers) DealerPlay(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "dealer play", (*game.Session).DealerAutoplay)
}

// WebSocket streams view updates of the session
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		errorResponse(w, http.StatusServiceUnavailable, "WebSocket not available")
		return
	}

	entry, err := h.sessionEntry(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "No active session")
		return
	}

	entry.Lock()
	view := entry.Session.CurrentView()
	entry.Unlock()

	h.hub.serveWs(w, r, view.ID, view)
}

// act runs one game action under the session lock, then journals a
// settled round and pushes the new view
func (h *Handlers) act(w http.ResponseWriter, r *http.Request, name string, action func(*game.Session) (*game.Result, error)) {
	entry, err := h.sessionEntry(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "No active session")
		return
	}

	entry.Lock()
	res, err := action(entry.Session)
	view := entry.Session.CurrentView()
	entry.Unlock()

	logger := h.logger.With().Str(logging.SessionIDKey, view.ID).Int(logging.RoundKey, view.Round).Logger()
	if err != nil {
		logger.Debug().Err(err).Str("action", name).Msg("Action rejected")
		h.gameErrorResponse(w, err)
		return
	}
	logger.Debug().Str("action", name).Str("turn", string(view.Turn)).Msg("Action applied")

	if res != nil {
		h.recordResult(r.Context(), &logger, view.ID, res)
	}

	if h.hub != nil {
		h.hub.BroadcastView(view.ID, view)
	}
	h.gameResponse(w, http.StatusOK, view)
}

func (h *Handlers) recordResult(ctx context.Context, logger *zerolog.Logger, sessionID string, res *game.Result) {
	h.metrics.RoundSettled(res.Outcome)
	logger.Info().
		Str("outcome", string(res.Outcome)).
		Int("bet", res.Bet).
		Int("delta", res.Delta).
		Int("balance", res.Balance).
		Msg("Round settled")

	if h.database == nil {
		return
	}
	if err := h.database.SaveRoundResult(ctx, sessionID, res); err != nil {
		// The round stands even if the journal write fails
		logger.Error().Err(err).Msg("Failed to journal round")
	}
}

// PruneSessions removes sessions idle for longer than maxIdle every
// interval until ctx is done
func (h *Handlers) PruneSessions(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := h.store.PruneIdle(time.Now().Add(-maxIdle))
			count := h.store.Count()
			h.metrics.SetActiveSessions(count)
			if removed > 0 {
				h.logger.Info().Int("removed", removed).Int("active", count).Msg("Pruned idle sessions")
			}
		}
	}
}
