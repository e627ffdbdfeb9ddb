package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tilekeeper/internal/api/response"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func miniBoard() response.Board {
	return response.Board{
		Layout: response.Layout{
			Size:   3,
			Rows:   []string{`= '`, ` * `, `" -`},
			Center: response.Position{Row: 1, Col: 1},
		},
		Tiles: []response.Tile{
			{Row: 1, Col: 0, Letter: "C"},
			{Row: 1, Col: 1, Letter: "A", Blank: true},
		},
	}
}

func TestRenderBoard(t *testing.T) {
	pending := []response.Tile{{Row: 1, Col: 2, Letter: "T"}}

	lines := strings.Split(plain(RenderBoard(miniBoard(), pending)), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "     0 1 2", lines[0])
	assert.Equal(t, " 0   = . '", lines[1])
	assert.Equal(t, " 1   C a T", lines[2])
	assert.Equal(t, ` 2   " . -`, lines[3])
	assert.Empty(t, lines[4])
}

func TestRenderBoard_Empty(t *testing.T) {
	assert.Empty(t, RenderBoard(response.Board{}, nil))
}

func TestPrintMutation(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "text", w: &buf}

	current := "p2"
	out.Print(response.Mutation{
		Changed: true,
		Game: response.Game{
			ID:            "ABCD",
			State:         "in_progress",
			Players:       []response.Player{{ID: "p1", Name: "Alice", Score: 10}, {ID: "p2", Name: "Bob"}},
			CurrentPlayer: &current,
			Board:         miniBoard(),
		},
		Play: &response.Play{
			PlayerID: "p1",
			Score:    10,
			Words:    []response.WordScore{{Word: "CAT", Score: 10}},
		},
	})

	text := plain(buf.String())
	assert.Contains(t, text, "Alice scored 10: CAT (10)")
	assert.Contains(t, text, "Game: ABCD")
	assert.Contains(t, text, "> Bob (p2): 0")
	assert.Contains(t, text, "  Alice (p1): 10")
}

func TestPrintMutation_NoChange(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "text", w: &buf}

	out.Print(response.Mutation{Changed: false})
	assert.Equal(t, "No change\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "json", w: &buf}

	out.Print(response.Health{Status: "ok"})
	assert.JSONEq(t, `{"status":"ok"}`, buf.String())
}

func TestPrintPreview(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{format: "text", w: &buf}
	valid, invalid := true, false

	out.Print(response.Preview{
		Words: []response.WordScore{
			{Word: "CAT", Score: 10, Valid: &valid},
			{Word: "XQ", Score: 4, Valid: &invalid},
		},
		BingoBonus: 50,
		Total:      64,
		NewTiles:   7,
	})

	text := buf.String()
	assert.Contains(t, text, "CAT")
	assert.Contains(t, text, "ok")
	assert.Contains(t, text, "not in dictionary")
	assert.Contains(t, text, "bingo")
	assert.Contains(t, text, "Total: 64 (7 new tiles)")
}

func TestConfigKeys(t *testing.T) {
	c := &Config{KeyDir: filepath.Join(t.TempDir(), "keys")}

	key, err := c.KeyFor("ABCD")
	require.NoError(t, err)
	assert.Empty(t, key, "missing key is not an error")

	require.NoError(t, c.SaveKey("ABCD", "secret"))
	key, err = c.KeyFor("ABCD")
	require.NoError(t, err)
	assert.Equal(t, "secret", key)

	// Explicit key wins
	c.Key = "override"
	key, err = c.KeyFor("ABCD")
	require.NoError(t, err)
	assert.Equal(t, "override", key)
	c.Key = ""

	// Game IDs cannot escape the key directory
	assert.Equal(t, filepath.Join(c.KeyDir, "passwd"), c.keyPath("../../etc/passwd"))

	require.NoError(t, c.RemoveKey("ABCD"))
	require.NoError(t, c.RemoveKey("ABCD"))
	key, err = c.KeyFor("ABCD")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/api/v1/games/ABCD/start":
			if r.Header.Get("Authorization") != "Bearer secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Table key required"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"changed":true,"game":{"id":"ABCD","state":"in_progress"}}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "")

	var health response.Health
	require.NoError(t, c.Get("/api/v1/health", &health))
	assert.Equal(t, "ok", health.Status)

	var m response.Mutation
	err := c.Post("/api/v1/games/ABCD/start", nil, &m)
	require.Error(t, err)
	assert.Equal(t, "Table key required (UNAUTHORIZED)", err.Error())

	c.SetToken("secret")
	require.NoError(t, c.Post("/api/v1/games/ABCD/start", nil, &m))
	assert.Equal(t, "in_progress", m.Game.State)

	err = c.Get("/elsewhere", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"h", "H", "horizontal", "across"} {
		d, err := parseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, "horizontal", d, in)
	}
	for _, in := range []string{"v", "vertical", "down"} {
		d, err := parseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, "vertical", d, in)
	}
	_, err := parseDirection("diagonal")
	assert.Error(t, err)
}
