package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tilekeeper/internal/api"
	"github.com/mcoot/tilekeeper/internal/api/apierr"
	"github.com/mcoot/tilekeeper/internal/api/response"
	"github.com/mcoot/tilekeeper/internal/factory"
	"github.com/mcoot/tilekeeper/internal/services/auth"
	"github.com/mcoot/tilekeeper/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{
		AuthConfig: auth.Config{BcryptCost: bcrypt.MinCost},
		Logger:     logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	app.DictionaryService.LoadWords([]string{"cat", "cab", "tab", "at"})

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		Dictionary:     app.DictionaryService,
		Letters:        app.Letters,
		Archive:        app.Archive,
		HubManager:     app.HubManager,
		Layout:         app.Layout,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[apierr.ErrorResponse](t, rr).Error.Code
}

// table is a created game and its key
type table struct {
	id  string
	key string
}

func (ts *testServer) path(tbl table, suffix string) string {
	return "/api/v1/games/" + tbl.id + suffix
}

func createGame(t *testing.T, ts *testServer, languages ...string) table {
	t.Helper()

	var body any
	if languages != nil {
		body = map[string][]string{"languages": languages}
	}
	rr := ts.request(http.MethodPost, "/api/v1/games", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	resp := decodeBody[response.CreatedGame](t, rr)
	require.NotEmpty(t, resp.TableKey)
	return table{id: resp.Game.ID, key: resp.TableKey}
}

// startedGame creates a game with Alice and Bob seated and started
func startedGame(t *testing.T, ts *testServer) table {
	t.Helper()

	tbl := createGame(t, ts)
	for _, name := range []string{"Alice", "Bob"} {
		rr := ts.request(http.MethodPost, ts.path(tbl, "/players"), map[string]string{"name": name}, tbl.key)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	rr := ts.request(http.MethodPost, ts.path(tbl, "/start"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return tbl
}

func propose(ts *testServer, tbl table, row, col int, dir, word string) *httptest.ResponseRecorder {
	body := map[string]any{"row": row, "col": col, "direction": dir, "word": word}
	return ts.request(http.MethodPut, ts.path(tbl, "/placement"), body, tbl.key)
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateAndGetGame(t *testing.T) {
	ts := newTestServer(t)
	tbl := createGame(t, ts)
	assert.True(t, strings.HasPrefix(tbl.key, auth.KeyPrefix))

	rr := ts.request(http.MethodGet, ts.path(tbl, ""), nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hash")

	game := decodeBody[response.Game](t, rr)
	assert.Equal(t, tbl.id, game.ID)
	assert.Equal(t, "setup", game.State)
	assert.Equal(t, 15, game.Board.Layout.Size)
	assert.Empty(t, game.Board.Tiles)
	assert.Nil(t, game.CurrentPlayer)
}

func TestCreateGameUnknownLanguage(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string][]string{"languages": {"klingon"}}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeUnknownLanguage, errorCode(t, rr))
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/NOPE", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, errorCode(t, rr))
}

func TestListGames(t *testing.T) {
	ts := newTestServer(t)
	createGame(t, ts)
	createGame(t, ts)

	rr := ts.request(http.MethodGet, "/api/v1/games", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[response.GameList](t, rr).Games, 2)
}

func TestMutationsRequireTableKey(t *testing.T) {
	ts := newTestServer(t)
	tbl := createGame(t, ts)
	other := createGame(t, ts)

	// No key
	rr := ts.request(http.MethodPost, ts.path(tbl, "/players"), map[string]string{"name": "Alice"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, errorCode(t, rr))

	// Another table's key
	rr = ts.request(http.MethodPost, ts.path(tbl, "/players"), map[string]string{"name": "Alice"}, other.key)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Unknown game
	rr = ts.request(http.MethodPost, "/api/v1/games/NOPE/start", nil, tbl.key)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Right key
	rr = ts.request(http.MethodPost, ts.path(tbl, "/players"), map[string]string{"name": "Alice"}, tbl.key)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPlayerManagement(t *testing.T) {
	ts := newTestServer(t)
	tbl := createGame(t, ts)

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		rr := ts.request(http.MethodPost, ts.path(tbl, "/players"), map[string]string{"name": name}, tbl.key)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	// Empty names are rejected
	rr := ts.request(http.MethodPost, ts.path(tbl, "/players"), map[string]string{"name": "  "}, tbl.key)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Duplicate name is a silent no-op
	rr = ts.request(http.MethodPost, ts.path(tbl, "/players"), map[string]string{"name": "alice"}, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[response.Mutation](t, rr).Changed)

	// Rename
	rr = ts.request(http.MethodPatch, ts.path(tbl, "/players/p2"), map[string]string{"name": "Robert"}, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	mut := decodeBody[response.Mutation](t, rr)
	assert.True(t, mut.Changed)
	assert.Equal(t, "Robert", mut.Game.Players[1].Name)

	// Reorder
	rr = ts.request(http.MethodPut, ts.path(tbl, "/players/order"), map[string][]string{"order": {"p3", "p1", "p2"}}, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	mut = decodeBody[response.Mutation](t, rr)
	assert.Equal(t, "Carol", mut.Game.Players[0].Name)

	// Remove
	rr = ts.request(http.MethodDelete, ts.path(tbl, "/players/p3"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[response.Mutation](t, rr).Game.Players, 2)

	// Unknown player
	rr = ts.request(http.MethodDelete, ts.path(tbl, "/players/p9"), nil, tbl.key)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))
}

func TestProposePreviewCommit(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)

	rr := propose(ts, tbl, 7, 7, "horizontal", "CAT")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Len(t, decodeBody[response.Mutation](t, rr).Game.Pending, 3)

	rr = ts.request(http.MethodGet, ts.path(tbl, "/preview"), nil, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	preview := decodeBody[response.Preview](t, rr)
	assert.Equal(t, 10, preview.Total)
	require.Len(t, preview.Words, 1)
	assert.Equal(t, "CAT", preview.Words[0].Word)
	require.NotNil(t, preview.Words[0].Valid)
	assert.True(t, *preview.Words[0].Valid)

	rr = ts.request(http.MethodPost, ts.path(tbl, "/commit"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	mut := decodeBody[response.Mutation](t, rr)
	assert.True(t, mut.Changed)
	require.NotNil(t, mut.Play)
	assert.Equal(t, 10, mut.Play.Score)
	assert.Equal(t, 10, mut.Game.Players[0].Score)
	assert.Equal(t, "p2", *mut.Game.CurrentPlayer)
	assert.Len(t, mut.Game.Board.Tiles, 3)

	// Bob plays CAB down through the C
	rr = propose(ts, tbl, 7, 7, "vertical", "CAB")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = ts.request(http.MethodPost, ts.path(tbl, "/commit"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 7, decodeBody[response.Mutation](t, rr).Play.Score)

	// Undo takes Bob's play back
	rr = ts.request(http.MethodPost, ts.path(tbl, "/undo"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	mut = decodeBody[response.Mutation](t, rr)
	assert.Equal(t, 0, mut.Game.Players[1].Score)
	assert.Len(t, mut.Game.Board.Tiles, 3)
}

func TestCommitWithNothingStagedIsNoOp(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)

	rr := ts.request(http.MethodPost, ts.path(tbl, "/commit"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[response.Mutation](t, rr).Changed)
}

func TestPlacementErrors(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)

	tests := []struct {
		name   string
		row    int
		col    int
		dir    string
		word   string
		status int
		code   string
	}{
		{"misses centre", 0, 0, "horizontal", "CAT", http.StatusUnprocessableEntity, apierr.CodeMustCoverCenter},
		{"off the board", 7, 13, "horizontal", "CAT", http.StatusUnprocessableEntity, apierr.CodeOutOfBounds},
		{"bad direction", 7, 7, "diagonal", "CAT", http.StatusBadRequest, apierr.CodeBadDirection},
		{"bad letter", 7, 7, "horizontal", "C4T", http.StatusBadRequest, apierr.CodeInvalidLetter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := propose(ts, tbl, tt.row, tt.col, tt.dir, tt.word)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}
}

func TestLetterConflictAndDisconnected(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)

	require.Equal(t, http.StatusOK, propose(ts, tbl, 7, 7, "horizontal", "CAT").Code)
	require.Equal(t, http.StatusOK, ts.request(http.MethodPost, ts.path(tbl, "/commit"), nil, tbl.key).Code)

	rr := propose(ts, tbl, 7, 7, "vertical", "BAT")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, apierr.CodeLetterConflict, errorCode(t, rr))

	rr = propose(ts, tbl, 0, 0, "horizontal", "TAB")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, apierr.CodeDisconnected, errorCode(t, rr))
}

func TestSingleTileStaging(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)

	for i, letter := range []string{"A", "T"} {
		body := map[string]any{"row": 7, "col": 7 + i, "letter": letter}
		rr := ts.request(http.MethodPost, ts.path(tbl, "/pending"), body, tbl.key)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := ts.request(http.MethodDelete, ts.path(tbl, "/pending/7/8"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[response.Mutation](t, rr).Game.Pending, 1)

	rr = ts.request(http.MethodDelete, ts.path(tbl, "/pending"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[response.Mutation](t, rr).Game.Pending)

	rr = ts.request(http.MethodPost, ts.path(tbl, "/pending"), map[string]any{"row": 7, "col": 7, "letter": "AB"}, tbl.key)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPassScoreAndCurrentPlayer(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)

	rr := ts.request(http.MethodPost, ts.path(tbl, "/pass"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "p2", *decodeBody[response.Mutation](t, rr).Game.CurrentPlayer)

	rr = ts.request(http.MethodPut, ts.path(tbl, "/current-player"), map[string]string{"player_id": "p1"}, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "p1", *decodeBody[response.Mutation](t, rr).Game.CurrentPlayer)

	rr = ts.request(http.MethodPatch, ts.path(tbl, "/players/p2"), map[string]int{"score": 42}, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 42, decodeBody[response.Mutation](t, rr).Game.Players[1].Score)

	rr = ts.request(http.MethodPatch, ts.path(tbl, "/players/p2"), map[string]int{"score": -1}, tbl.key)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestResets(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)
	require.Equal(t, http.StatusOK, propose(ts, tbl, 7, 7, "horizontal", "CAT").Code)
	require.Equal(t, http.StatusOK, ts.request(http.MethodPost, ts.path(tbl, "/commit"), nil, tbl.key).Code)

	rr := ts.request(http.MethodPost, ts.path(tbl, "/reset"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	mut := decodeBody[response.Mutation](t, rr)
	assert.Len(t, mut.Game.Players, 2)
	assert.Zero(t, mut.Game.Players[0].Score)
	assert.Empty(t, mut.Game.Board.Tiles)

	rr = ts.request(http.MethodPost, ts.path(tbl, "/full-reset"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code)
	mut = decodeBody[response.Mutation](t, rr)
	assert.Empty(t, mut.Game.Players)
	assert.Equal(t, "setup", mut.Game.State)
}

func TestFinishHistoryAndStats(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)

	// Nothing played yet
	rr := ts.request(http.MethodPost, ts.path(tbl, "/finish"), nil, tbl.key)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNothingToArchive, errorCode(t, rr))

	require.Equal(t, http.StatusOK, propose(ts, tbl, 7, 7, "horizontal", "CAT").Code)
	require.Equal(t, http.StatusOK, ts.request(http.MethodPost, ts.path(tbl, "/commit"), nil, tbl.key).Code)

	rr = ts.request(http.MethodPost, ts.path(tbl, "/finish"), nil, tbl.key)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	mut := decodeBody[response.Mutation](t, rr)
	require.Positive(t, mut.ArchiveID)
	assert.Empty(t, mut.Game.Board.Tiles)

	rr = ts.request(http.MethodGet, "/api/v1/history", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	history := decodeBody[response.History](t, rr)
	require.Len(t, history.Games, 1)
	assert.Equal(t, "Alice", history.Games[0].Winner)
	assert.Equal(t, tbl.id, history.Games[0].GameID)

	rr = ts.request(http.MethodGet, "/api/v1/history/"+jsonInt(mut.ArchiveID), nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 10, decodeBody[response.ArchivedGame](t, rr).TopScore)

	rr = ts.request(http.MethodGet, "/api/v1/history/999", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeArchiveNotFound, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/history?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decodeBody[response.Stats](t, rr)
	assert.Equal(t, 1, stats.GamesFinished)
	assert.Equal(t, 10, stats.Points)
	require.NotNil(t, stats.HighestWord)
	assert.Equal(t, "CAT", stats.HighestWord.Word)
}

func TestDeleteGame(t *testing.T) {
	ts := newTestServer(t)
	tbl := createGame(t, ts)

	rr := ts.request(http.MethodDelete, ts.path(tbl, ""), nil, tbl.key)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, ts.path(tbl, ""), nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWordCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/words/cat", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	check := decodeBody[response.WordCheck](t, rr)
	assert.Equal(t, "CAT", check.Word)
	assert.True(t, check.Valid)
	assert.True(t, check.DictionaryLoaded)

	rr = ts.request(http.MethodGet, "/api/v1/words/xyzzy", nil, "")
	assert.False(t, decodeBody[response.WordCheck](t, rr).Valid)
}

func TestLettersAndLayout(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/letters?lang=de", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	letters := decodeBody[response.Letters](t, rr)
	assert.Equal(t, []string{"de"}, letters.Languages)
	assert.Equal(t, 6, letters.Values["Ä"])
	assert.Equal(t, 10, letters.Values["Z"])
	assert.Contains(t, letters.Available, "fr")

	rr = ts.request(http.MethodGet, "/api/v1/letters?lang=xx", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/layout", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	layout := decodeBody[response.Layout](t, rr)
	assert.Equal(t, 15, layout.Size)
	assert.Equal(t, response.Position{Row: 7, Col: 7}, layout.Center)
}

func TestEventsForMissingGame(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/NOPE/events", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInvalidBody(t *testing.T) {
	ts := newTestServer(t)
	tbl := createGame(t, ts)

	req := httptest.NewRequest(http.MethodPost, ts.path(tbl, "/players"), strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+tbl.key)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestOversizedBody(t *testing.T) {
	ts := newTestServer(t)
	tbl := startedGame(t, ts)

	rr := propose(ts, tbl, 7, 7, "horizontal", strings.Repeat("A", 1<<17))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, apierr.CodeTooLarge, errorCode(t, rr))

	// Nothing was staged
	game := decodeBody[response.Game](t, ts.request(http.MethodGet, ts.path(tbl, ""), nil, ""))
	assert.Empty(t, game.Pending)
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
