package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tilekeeper/internal/api/handler"
	"github.com/mcoot/tilekeeper/internal/api/middleware"
	"github.com/mcoot/tilekeeper/internal/api/response"
	"github.com/mcoot/tilekeeper/internal/model"
	"github.com/mcoot/tilekeeper/internal/services/dictionary"
	"github.com/mcoot/tilekeeper/internal/services/game"
	"github.com/mcoot/tilekeeper/internal/services/letters"
	"github.com/mcoot/tilekeeper/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController *game.Controller
	Dictionary     *dictionary.Service
	Letters        *letters.Registry
	Archive        handler.ArchiveReader
	HubManager     *sse.HubManager
	Layout         model.Layout
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Dictionary, cfg.HubManager)
	playerHandler := handler.NewPlayerHandler(cfg.GameController)
	infoHandler := handler.NewInfoHandler(cfg.Dictionary, cfg.Letters, cfg.Archive, cfg.Layout)

	// Create middleware
	tableKey := middleware.TableKey(cfg.GameController)
	protected := func(h http.HandlerFunc) http.Handler {
		return tableKey(h)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Open game routes
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/preview", gameHandler.Preview).Methods(http.MethodGet)

	// Player routes (table key required)
	api.Handle("/games/{id}/players", protected(playerHandler.Add)).Methods(http.MethodPost)
	api.Handle("/games/{id}/players/order", protected(playerHandler.Reorder)).Methods(http.MethodPut)
	api.Handle("/games/{id}/players/{player_id}", protected(playerHandler.Update)).Methods(http.MethodPatch)
	api.Handle("/games/{id}/players/{player_id}", protected(playerHandler.Remove)).Methods(http.MethodDelete)
	api.Handle("/games/{id}/current-player", protected(playerHandler.SetCurrent)).Methods(http.MethodPut)

	// Turn routes (table key required)
	api.Handle("/games/{id}", protected(gameHandler.Delete)).Methods(http.MethodDelete)
	api.Handle("/games/{id}/start", protected(gameHandler.Start)).Methods(http.MethodPost)
	api.Handle("/games/{id}/placement", protected(gameHandler.Propose)).Methods(http.MethodPut)
	api.Handle("/games/{id}/pending", protected(gameHandler.PlaceTile)).Methods(http.MethodPost)
	api.Handle("/games/{id}/pending", protected(gameHandler.ClearPending)).Methods(http.MethodDelete)
	api.Handle("/games/{id}/pending/{row:[0-9]+}/{col:[0-9]+}", protected(gameHandler.RemovePending)).Methods(http.MethodDelete)
	api.Handle("/games/{id}/commit", protected(gameHandler.Commit)).Methods(http.MethodPost)
	api.Handle("/games/{id}/pass", protected(gameHandler.Pass)).Methods(http.MethodPost)
	api.Handle("/games/{id}/undo", protected(gameHandler.Undo)).Methods(http.MethodPost)
	api.Handle("/games/{id}/reset", protected(gameHandler.Reset)).Methods(http.MethodPost)
	api.Handle("/games/{id}/full-reset", protected(gameHandler.FullReset)).Methods(http.MethodPost)
	api.Handle("/games/{id}/finish", protected(gameHandler.Finish)).Methods(http.MethodPost)

	// Lookups
	api.HandleFunc("/words/{word}", infoHandler.CheckWord).Methods(http.MethodGet)
	api.HandleFunc("/letters", infoHandler.Letters).Methods(http.MethodGet)
	api.HandleFunc("/layout", infoHandler.Layout).Methods(http.MethodGet)
	api.HandleFunc("/history", infoHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/history/{id:[0-9]+}", infoHandler.ArchivedGame).Methods(http.MethodGet)
	api.HandleFunc("/stats", infoHandler.Stats).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
