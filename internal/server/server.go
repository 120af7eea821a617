// Package server exposes the round store and sync engine over a thin JSON
// HTTP API. It carries no domain logic of its own.
package server

import (
	"net/http"

	"golf-tracker/internal/store"
	syncer "golf-tracker/internal/sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Server struct {
	store  *store.Store
	engine *syncer.Engine
	logger zerolog.Logger
}

func New(store *store.Store, engine *syncer.Engine, logger zerolog.Logger) *Server {
	return &Server{store: store, engine: engine, logger: logger}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/rounds", s.handleListRounds).Methods(http.MethodGet)
	api.HandleFunc("/rounds", s.handleAddRound).Methods(http.MethodPost)
	api.HandleFunc("/rounds/{id}", s.handleGetRound).Methods(http.MethodGet)
	api.HandleFunc("/rounds/{id}", s.handleUpdateRound).Methods(http.MethodPut)
	api.HandleFunc("/rounds/{id}", s.handleDeleteRound).Methods(http.MethodDelete)

	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/handicap/course", s.handleCourseHandicap).Methods(http.MethodGet)

	api.HandleFunc("/sync", s.handleSyncNow).Methods(http.MethodPost)
	api.HandleFunc("/sync/enable", s.handleEnableSync).Methods(http.MethodPost)
	api.HandleFunc("/sync/disable", s.handleDisableSync).Methods(http.MethodPost)
	api.HandleFunc("/sync/status", s.handleSyncStatus).Methods(http.MethodGet)

	return r
}
