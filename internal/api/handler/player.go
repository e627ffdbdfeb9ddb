package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/tilekeeper/internal/api/request"
	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/services/game"
)

// PlayerHandler handles seating and turn-order endpoints
type PlayerHandler struct {
	controller *game.Controller
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(controller *game.Controller) *PlayerHandler {
	return &PlayerHandler{controller: controller}
}

func playerID(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["player_id"])
}

// Add handles POST /api/v1/games/{id}/players
func (h *PlayerHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req request.AddPlayerRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		WriteError(w, NewInvalidRequestError("Name is required"))
		return
	}

	outcome, err := h.controller.AddPlayer(r.Context(), gameID(r), req.Name)
	respond(w, outcome, err)
}

// Update handles PATCH /api/v1/games/{id}/players/{player_id}
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePlayerRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Name == nil && req.Score == nil {
		WriteError(w, NewInvalidRequestError("Name or score is required"))
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		WriteError(w, NewInvalidRequestError("Name must not be empty"))
		return
	}
	if req.Score != nil && *req.Score < 0 {
		WriteError(w, NewInvalidRequestError("Score must not be negative"))
		return
	}

	id, player := gameID(r), playerID(r)
	if err := h.requirePlayer(r, id, player); err != nil {
		WriteError(w, err)
		return
	}

	var outcome *game.Outcome
	changed := false
	if req.Name != nil {
		o, err := h.controller.RenamePlayer(r.Context(), id, player, *req.Name)
		if err != nil {
			WriteError(w, err)
			return
		}
		outcome, changed = o, o.Changed
	}
	if req.Score != nil {
		o, err := h.controller.SetScore(r.Context(), id, player, *req.Score)
		if err != nil {
			WriteError(w, err)
			return
		}
		outcome, changed = o, changed || o.Changed
	}
	outcome.Changed = changed
	writeOutcome(w, outcome)
}

// Remove handles DELETE /api/v1/games/{id}/players/{player_id}
func (h *PlayerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, player := gameID(r), playerID(r)
	if err := h.requirePlayer(r, id, player); err != nil {
		WriteError(w, err)
		return
	}

	outcome, err := h.controller.RemovePlayer(r.Context(), id, player)
	respond(w, outcome, err)
}

// Reorder handles PUT /api/v1/games/{id}/players/order
func (h *PlayerHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req request.ReorderPlayersRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	outcome, err := h.controller.ReorderPlayers(r.Context(), gameID(r), req.PlayerIDs())
	respond(w, outcome, err)
}

// SetCurrent handles PUT /api/v1/games/{id}/current-player
func (h *PlayerHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var req request.SetCurrentPlayerRequest
	if err := decode(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	id, player := gameID(r), model.PlayerID(req.PlayerID)
	if err := h.requirePlayer(r, id, player); err != nil {
		WriteError(w, err)
		return
	}

	outcome, err := h.controller.SetCurrentPlayer(r.Context(), id, player)
	respond(w, outcome, err)
}

// requirePlayer turns an unknown player ID into a 404 instead of a no-op
func (h *PlayerHandler) requirePlayer(r *http.Request, id model.GameID, player model.PlayerID) error {
	g, err := h.controller.Get(r.Context(), id)
	if err != nil {
		return err
	}
	if g.PlayerIndex(player) < 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}
