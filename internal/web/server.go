// Package web serves a local review UI: scan a vault for rename and
// conversion candidates, apply confirmed batches, and stream progress
// over a websocket.
package web

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/config"
)

type Server struct {
	router  *mux.Router
	hub     *Hub
	store   *config.Store
	version string

	mu       sync.RWMutex
	settings *config.Settings
}

// NewServer creates a review server. A nil settings falls back to the
// stored settings, or the defaults when nothing has been stored.
func NewServer(settings *config.Settings) *Server {
	store, err := config.NewStore()
	if err != nil {
		store = nil
	}

	if settings == nil {
		if store != nil {
			settings, _ = store.LoadSettings()
		}
		if settings == nil {
			settings = config.DefaultSettings()
		}
	}

	s := &Server{
		router:   mux.NewRouter(),
		hub:      NewHub(),
		store:    store,
		version:  "unknown",
		settings: settings,
	}

	go s.hub.Run()

	s.setupRoutes()
	return s
}

func (s *Server) SetVersion(v string) {
	s.version = v
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/version", s.handleVersion).Methods("GET")
	api.HandleFunc("/settings", s.handleGetSettings).Methods("GET")
	api.HandleFunc("/settings", s.handleSaveSettings).Methods("POST")
	api.HandleFunc("/scan", s.handleScan).Methods("POST")
	api.HandleFunc("/apply", s.handleApply).Methods("POST")
	api.HandleFunc("/undo", s.handleUndo).Methods("POST")
	api.HandleFunc("/vaults", s.handleRecentVaults).Methods("GET")
	api.HandleFunc("/ws", s.handleWebSocket)

	// Preset routes
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets", s.handleSavePreset).Methods("POST")
	api.HandleFunc("/presets/load", s.handleLoadPreset).Methods("GET")
	api.HandleFunc("/presets/delete", s.handleDeletePreset).Methods("DELETE")

	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("web/static")))
}

func (s *Server) currentSettings() *config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Server) Start(addr string) error {
	fmt.Printf("Starting attachment review UI at http://%s\n", addr)
	return http.ListenAndServe(addr, s.router)
}
