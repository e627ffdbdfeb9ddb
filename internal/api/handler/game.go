package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/tilekeeper/internal/api/request"
	"github.com/mcoot/tilekeeper/internal/api/response"
	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/services/dictionary"
	"github.com/mcoot/tilekeeper/internal/services/game"
	"github.com/mcoot/tilekeeper/internal/sse"
)

// GameHandler handles game lifecycle, staging and turn endpoints
type GameHandler struct {
	controller *game.Controller
	dictionary *dictionary.Service
	hubManager *sse.HubManager
}

// NewGameHandler creates a new game handler
func NewGameHandler(controller *game.Controller, dictionary *dictionary.Service, hubManager *sse.HubManager) *GameHandler {
	return &GameHandler{
		controller: controller,
		dictionary: dictionary,
		hubManager: hubManager,
	}
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

// writeOutcome writes the result of a transition
func writeOutcome(w http.ResponseWriter, outcome *game.Outcome) {
	resp := response.Mutation{
		Changed:   outcome.Changed,
		Game:      response.GameFromModel(outcome.Game),
		ArchiveID: outcome.ArchiveID,
	}
	if outcome.Play != nil {
		play := response.PlayFromModel(*outcome.Play)
		resp.Play = &play
	}
	response.JSON(w, http.StatusOK, resp)
}

func respond(w http.ResponseWriter, outcome *game.Outcome, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}
	writeOutcome(w, outcome)
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			WriteError(w, err)
			return
		}
	}

	g, key, err := h.controller.Create(r.Context(), req.Languages)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreatedGame{
		Game:     response.GameFromModel(g),
		TableKey: key,
	})
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.controller.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.GameList{Games: make([]response.GameSummary, len(games))}
	for i, g := range games {
		resp.Games[i] = response.GameSummaryFromModel(g)
	}
	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.controller.Get(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Delete(r.Context(), gameID(r)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Events handles GET /api/v1/games/{id}/events
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	if _, err := h.controller.Get(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	h.hubManager.ServeSSE(w, r, id)
}

// Preview handles GET /api/v1/games/{id}/preview
func (h *GameHandler) Preview(w http.ResponseWriter, r *http.Request) {
	g, breakdown, err := h.controller.Preview(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	words := make([]string, len(breakdown.Words))
	for i, ws := range breakdown.Words {
		words[i] = ws.Word
	}
	response.JSON(w, http.StatusOK, response.PreviewFromModel(g, breakdown, h.dictionary.Check(words...)))
}

// Start handles POST /api/v1/games/{id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.controller.Start(r.Context(), gameID(r))
	respond(w, outcome, err)
}

// Propose handles PUT /api/v1/games/{id}/placement
func (h *GameHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req request.PlacementRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	p, err := req.ToModel()
	if err != nil {
		WriteError(w, err)
		return
	}

	outcome, err := h.controller.Propose(r.Context(), gameID(r), p)
	respond(w, outcome, err)
}

// PlaceTile handles POST /api/v1/games/{id}/pending
func (h *GameHandler) PlaceTile(w http.ResponseWriter, r *http.Request) {
	var req request.TileRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	pos, tile, err := req.ToModel()
	if err != nil {
		WriteError(w, err)
		return
	}

	outcome, err := h.controller.PlaceTile(r.Context(), gameID(r), pos, tile)
	respond(w, outcome, err)
}

// RemovePending handles DELETE /api/v1/games/{id}/pending/{row}/{col}
func (h *GameHandler) RemovePending(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	row, rowErr := strconv.Atoi(vars["row"])
	col, colErr := strconv.Atoi(vars["col"])
	if rowErr != nil || colErr != nil {
		WriteError(w, NewInvalidRequestError("Row and column must be numbers"))
		return
	}

	outcome, err := h.controller.RemovePending(r.Context(), gameID(r), model.Position{Row: row, Col: col})
	respond(w, outcome, err)
}

// ClearPending handles DELETE /api/v1/games/{id}/pending
func (h *GameHandler) ClearPending(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.controller.ClearPending(r.Context(), gameID(r))
	respond(w, outcome, err)
}

// Commit handles POST /api/v1/games/{id}/commit
func (h *GameHandler) Commit(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.controller.Commit(r.Context(), gameID(r))
	respond(w, outcome, err)
}

// Pass handles POST /api/v1/games/{id}/pass
func (h *GameHandler) Pass(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.controller.Pass(r.Context(), gameID(r))
	respond(w, outcome, err)
}

// Undo handles POST /api/v1/games/{id}/undo
func (h *GameHandler) Undo(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.controller.Undo(r.Context(), gameID(r))
	respond(w, outcome, err)
}

// Reset handles POST /api/v1/games/{id}/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.controller.Reset(r.Context(), gameID(r))
	respond(w, outcome, err)
}

// FullReset handles POST /api/v1/games/{id}/full-reset
func (h *GameHandler) FullReset(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.controller.FullReset(r.Context(), gameID(r))
	respond(w, outcome, err)
}

// Finish handles POST /api/v1/games/{id}/finish
func (h *GameHandler) Finish(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.controller.Finish(r.Context(), gameID(r))
	respond(w, outcome, err)
}
