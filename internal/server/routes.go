package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/scythe504/tunequiz-backend/internal/game"
	"github.com/scythe504/tunequiz-backend/internal/utils"
	"github.com/scythe504/tunequiz-backend/internal/websocket"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)
	r.Use(s.banMiddleware)

	r.HandleFunc("/", s.HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/rooms", s.RoomsHandler).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/ws/{roomId}", s.WebSocketHandler)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS Headers
		w.Header().Set("Access-Control-Allow-Origin", "*") // Wildcard allows all origins
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false") // Credentials not allowed with wildcard origins

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// banMiddleware turns away banned addresses with the time left on the ban.
func (s *Server) banMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache")

		address := websocket.ClientAddress(r)
		ttl, err := s.bans.TTL(r.Context(), address)
		if err != nil {
			s.logger.Error().Err(err).Str("address", address).Msg("ban lookup failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		if ttl <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		s.logger.Info().Str("address", address).Dur("ttl", ttl).Msg("banned address refused")
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error":     "banned",
			"remaining": utils.BanRemaining(ttl),
		})
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// RoomsHandler returns the player count of every room.
func (s *Server) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rooms.Overview())
}

func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["roomId"]
	room, err := s.rooms.Room(name)
	if errors.Is(err, game.ErrUnknownRoom) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown room"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("room", name).Msg("room lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	s.hub.Serve(w, r, room)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
