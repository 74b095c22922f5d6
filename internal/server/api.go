package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/protocol"
)

// Routes builds the HTTP router: the room API, the health check and the
// WebSocket endpoint.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/api/create", s.handleCreateRoom).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/exists/{hash}", s.handleRoomExists).Methods(http.MethodGet)
	r.HandleFunc("/api/needs/{hash}", s.handleRoomNeeds).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleCreateRoom creates a room for a registered namespace and returns
// its code.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Namespace == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}
	if req.HasPassword && req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password required"})
		return
	}

	password := ""
	if req.HasPassword {
		password = req.Password
	}

	code, err := s.manager.CreateRoom(req.Namespace, password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrNotRegistered) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": apperrors.Describe(err)})
		return
	}

	writeJSON(w, http.StatusCreated, protocol.CreateRoomResponse{Hash: code})
}

// handleRoomExists reports whether a room code is live.
func (s *Server) handleRoomExists(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["hash"]
	if !s.manager.RoomExists(code) {
		writeJSON(w, http.StatusNotFound, map[string]bool{"exists": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": true})
}

// handleRoomNeeds reports a room's namespace and whether joining needs a
// password.
func (s *Server) handleRoomNeeds(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["hash"]
	namespace, needsPassword, ok := s.manager.RoomNeeds(code)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}
	writeJSON(w, http.StatusOK, protocol.RoomNeedsResponse{
		Namespace: namespace,
		Password:  needsPassword,
	})
}

// handleHealth reports liveness and mirror reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	redisUp := false
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		redisUp = s.store.Ping(ctx) == nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  s.manager.RoomCount(),
		"redis":  redisUp,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
