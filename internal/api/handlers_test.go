package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/calvinwijaya/blackjack-web/internal/db"
	"github.com/calvinwijaya/blackjack-web/internal/game"
	"github.com/calvinwijaya/blackjack-web/internal/logging"
	"github.com/calvinwijaya/blackjack-web/internal/store"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gameBody struct {
	Game    game.View `json:"game"`
	Message string    `json:"message"`
}

type testServer struct {
	router   *mux.Router
	handlers *Handlers
	store    *store.MemoryStore
	hub      *Hub
}

func deck(ranks ...game.Rank) *game.Deck {
	cards := make([]game.Card, len(ranks))
	for i, r := range ranks {
		cards[i] = game.NewCard(game.Suits[i%len(game.Suits)], r)
	}
	return game.NewStackedDeck(cards...)
}

// newTestServer deals the given decks to rounds in order, across sessions
func newTestServer(t *testing.T, database *db.Database, decks ...*game.Deck) *testServer {
	t.Helper()

	var mu sync.Mutex
	source := func() *game.Deck {
		mu.Lock()
		defer mu.Unlock()
		if len(decks) == 0 {
			return game.NewShuffledDeck(nil)
		}
		d := decks[0]
		decks = decks[1:]
		return d
	}

	logger := logging.GetZeroLogger("test", io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub("", logger)
	go hub.Run(ctx)

	s := store.NewMemoryStore()
	h := NewHandlers(s, database, hub, NewMetrics(), logger,
		game.WithStartingBalance(100), game.WithDeckSource(source))

	r := mux.NewRouter()
	h.RegisterRoutes(r)

	return &testServer{router: r, handlers: h, store: s, hub: hub}
}

func (ts *testServer) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// register creates a player and returns the session cookie
func (ts *testServer) register(t *testing.T, name string) *http.Cookie {
	t.Helper()
	rec := ts.do(t, "POST", "/api/player", `{"name":"`+name+`"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func decodeGame(t *testing.T, rec *httptest.ResponseRecorder) gameBody {
	t.Helper()
	var body gameBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterPlayer(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, "POST", "/api/player", `{"name":"alice"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeGame(t, rec)
	assert.Equal(t, "Alice", body.Game.Name)
	assert.Equal(t, 100, body.Game.Balance)
	assert.Equal(t, "Welcome Alice, place a bet", body.Message)
	assert.Equal(t, 1, ts.store.Count())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, body.Game.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRegisterPlayerValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, "POST", "/api/player", `{"name":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, "POST", "/api/player", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, ts.store.Count())
}

func TestReRegisterKeepsSession(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := ts.register(t, "alice")

	rec := ts.do(t, "POST", "/api/player", `{"name":"bob"}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Bob", decodeGame(t, rec).Game.Name)
	assert.Equal(t, 1, ts.store.Count())
}

func TestRequiresSession(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, path := range []string{"/api/game", "/api/player/stats", "/ws"} {
		rec := ts.do(t, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := ts.do(t, "POST", "/api/game/hit", "", &http.Cookie{Name: SessionCookieName, Value: "not-a-uuid"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, "POST", "/api/game/hit", "", &http.Cookie{Name: SessionCookieName, Value: game.NewSession().ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoundDealerWins(t *testing.T) {
	ts := newTestServer(t, nil, deck(game.Ten, game.Five, game.Eight, game.Seven, game.Two, game.Five))
	cookie := ts.register(t, "alice")

	rec := ts.do(t, "POST", "/api/game/bet", `{"amount":20}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeGame(t, rec)
	assert.Equal(t, game.PlayerTurn, body.Game.Turn)
	assert.Equal(t, 18, body.Game.PlayerTotal)
	assert.Equal(t, 5, body.Game.DealerTotal)
	assert.False(t, body.Game.Dealer[1].Face)
	assert.Equal(t, "Alice has 18. Hit or stay?", body.Message)

	rec = ts.do(t, "POST", "/api/game/stand", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeGame(t, rec)
	assert.Equal(t, game.DealerTurn, body.Game.Turn)
	assert.Equal(t, "Dealer has 12 and must hit", body.Message)

	rec = ts.do(t, "POST", "/api/game/stand", "", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, "POST", "/api/game/dealer/play", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeGame(t, rec)
	assert.Equal(t, game.DealerWins, body.Game.Outcome)
	assert.Equal(t, 80, body.Game.Balance)
	assert.Equal(t, "Dealer won with a total of 19! You now have a balance of 80", body.Message)

	rec = ts.do(t, "POST", "/api/game/dealer/hit", "", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, "GET", "/api/game", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 80, decodeGame(t, rec).Game.Balance)
}

func TestRoundPlayerBlackjackOnDeal(t *testing.T) {
	ts := newTestServer(t, nil, deck(game.Ace, game.Five, game.King, game.Nine))
	cookie := ts.register(t, "alice")

	rec := ts.do(t, "POST", "/api/game/bet", `{"amount":10}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeGame(t, rec)
	assert.Equal(t, game.PlayerBlackjack, body.Game.Outcome)
	assert.Equal(t, 110, body.Game.Balance)
	assert.Equal(t, "Alice hit Blackjack and now has a balance of 110", body.Message)

	rec = ts.do(t, "POST", "/api/game/hit", "", cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDealerHitOneCardAtATime(t *testing.T) {
	ts := newTestServer(t, nil, deck(game.Ten, game.King, game.Ten, game.Six, game.Four))
	cookie := ts.register(t, "alice")

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/bet", `{"amount":10}`, cookie).Code)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/stand", "", cookie).Code)

	rec := ts.do(t, "POST", "/api/game/dealer/hit", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeGame(t, rec)
	assert.Equal(t, game.Tie, body.Game.Outcome)
	assert.Equal(t, 100, body.Game.Balance)
	assert.Equal(t, "It was a tie! Both players scored 20.", body.Message)
}

func TestPlaceBetErrors(t *testing.T) {
	ts := newTestServer(t, nil, deck(game.Two, game.Three, game.Four, game.Five))
	cookie := ts.register(t, "alice")

	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/game/bet", `{"amount":0}`, cookie).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/game/bet", `{"amount":101}`, cookie).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/api/game/bet", `{"amount":"ten"}`, cookie).Code)
	assert.Equal(t, http.StatusConflict, ts.do(t, "POST", "/api/game/hit", "", cookie).Code)

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/bet", `{"amount":100}`, cookie).Code)
	assert.Equal(t, http.StatusConflict, ts.do(t, "POST", "/api/game/bet", `{"amount":10}`, cookie).Code)
}

func TestLeaveGame(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := ts.register(t, "alice")

	rec := ts.do(t, "DELETE", "/api/player", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, ts.store.Count())

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, "GET", "/api/game", "", cookie).Code)
}

func TestPlayerStatsWithoutDatabase(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := ts.register(t, "alice")

	rec := ts.do(t, "GET", "/api/player/stats", "", cookie)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPlayerStatsJournal(t *testing.T) {
	database, err := db.NewDatabase(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer database.Close()

	ts := newTestServer(t, database,
		deck(game.Ace, game.Five, game.King, game.Nine),
		deck(game.Ten, game.Nine, game.Four, game.Eight, game.Ten),
	)
	cookie := ts.register(t, "alice")

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/bet", `{"amount":10}`, cookie).Code)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/bet", `{"amount":30}`, cookie).Code)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/hit", "", cookie).Code)

	rec := ts.do(t, "GET", "/api/player/stats", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats db.PlayerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "Alice", stats.PlayerName)
	assert.Equal(t, 2, stats.RoundsPlayed)
	assert.Equal(t, 1, stats.RoundsWon)
	assert.Equal(t, 1, stats.RoundsLost)
	assert.Equal(t, 1, stats.Blackjacks)
	assert.Equal(t, -20, stats.NetWinnings)
}

func TestMetricsAndHealth(t *testing.T) {
	ts := newTestServer(t, nil, deck(game.Ace, game.Five, game.King, game.Nine))
	cookie := ts.register(t, "alice")
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/bet", `{"amount":10}`, cookie).Code)

	rec := ts.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `rounds_settled_total{outcome="playerBlackjack"} 1`)
	assert.Contains(t, out, "rounds_started_total 1")
	assert.Contains(t, out, "active_sessions 1")

	rec = ts.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPruneSessions(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.register(t, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ts.handlers.PruneSessions(ctx, 10*time.Millisecond, 0)

	assert.Eventually(t, func() bool { return ts.store.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketPushesViews(t *testing.T) {
	ts := newTestServer(t, nil, deck(game.Ten, game.Five, game.Eight, game.Seven, game.Two, game.Five))
	cookie := ts.register(t, "alice")

	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	header := http.Header{}
	header.Add("Cookie", SessionCookieName+"="+cookie.Value)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	var msg struct {
		Type      string    `json:"type"`
		SessionID string    `json:"sessionId"`
		Data      game.View `json:"data"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "welcome", msg.Type)
	assert.Equal(t, cookie.Value, msg.SessionID)
	assert.Equal(t, "Alice", msg.Data.Name)

	require.Eventually(t, func() bool { return ts.hub.ClientCount(cookie.Value) == 1 }, time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/api/game/bet", `{"amount":10}`, cookie).Code)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "gameUpdate", msg.Type)
	assert.Equal(t, game.PlayerTurn, msg.Data.Turn)
	assert.Equal(t, 10, msg.Data.Bet)
}
