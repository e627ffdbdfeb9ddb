package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/mcoot/tilekeeper/internal/api/response"
	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/services/dictionary"
	"github.com/mcoot/tilekeeper/internal/services/letters"
)

// ArchiveReader reads finished games and statistics
type ArchiveReader interface {
	Get(ctx context.Context, id int64) (*model.ArchivedGame, error)
	History(ctx context.Context, limit int) ([]*model.ArchivedGame, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

// InfoHandler handles the read-only lookup endpoints
type InfoHandler struct {
	dictionary *dictionary.Service
	letters    *letters.Registry
	archive    ArchiveReader
	layout     model.Layout
}

// NewInfoHandler creates a new info handler
func NewInfoHandler(dictionary *dictionary.Service, letters *letters.Registry, archive ArchiveReader, layout model.Layout) *InfoHandler {
	return &InfoHandler{
		dictionary: dictionary,
		letters:    letters,
		archive:    archive,
		layout:     layout,
	}
}

// CheckWord handles GET /api/v1/words/{word}
func (h *InfoHandler) CheckWord(w http.ResponseWriter, r *http.Request) {
	word := strings.ToUpper(mux.Vars(r)["word"])
	response.JSON(w, http.StatusOK, response.WordCheck{
		Word:             word,
		Valid:            h.dictionary.IsValidWord(word),
		DictionaryLoaded: h.dictionary.IsLoaded(),
	})
}

// Letters handles GET /api/v1/letters?lang=de,fr
func (h *InfoHandler) Letters(w http.ResponseWriter, r *http.Request) {
	languages := lo.FilterMap(strings.Split(r.URL.Query().Get("lang"), ","), func(l string, _ int) (string, bool) {
		l = strings.ToLower(strings.TrimSpace(l))
		return l, l != ""
	})

	table, err := h.letters.Table(languages...)
	if err != nil {
		WriteError(w, err)
		return
	}

	values := make(map[string]int, len(table))
	for letter, value := range table {
		values[string(letter)] = value
	}
	response.JSON(w, http.StatusOK, response.Letters{
		Languages: lo.Ternary(languages == nil, []string{}, languages),
		Available: h.letters.Names(),
		Values:    values,
	})
}

// Layout handles GET /api/v1/layout
func (h *InfoHandler) Layout(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.LayoutFromModel(h.layout))
}

// History handles GET /api/v1/history?limit=
func (h *InfoHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("Limit must be a non-negative number"))
			return
		}
		limit = n
	}

	games, err := h.archive.History(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.History{
		Games: lo.Map(games, func(g *model.ArchivedGame, _ int) response.ArchivedGame {
			return response.ArchivedGameFromModel(g)
		}),
	})
}

// ArchivedGame handles GET /api/v1/history/{id}
func (h *InfoHandler) ArchivedGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		WriteError(w, NewInvalidRequestError("Archive ID must be a number"))
		return
	}

	game, err := h.archive.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ArchivedGameFromModel(game))
}

// Stats handles GET /api/v1/stats
func (h *InfoHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.archive.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatsFromModel(stats))
}
