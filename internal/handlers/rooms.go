// internal/handlers/rooms.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jason-s-yu/arcade/internal/models"
	"github.com/jason-s-yu/arcade/internal/session"
	"github.com/sirupsen/logrus"
)

const snapshotTimeout = 2 * time.Second

// HealthzHandler reports liveness.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// roomsResponse is the body of GET /rooms.
type roomsResponse struct {
	Rooms []models.RoomView `json:"rooms"`
}

// ListRoomsHandler returns a diagnostic snapshot of every live room. The
// snapshot is taken on the hub goroutine, so it never observes a room
// mid-update.
func ListRoomsHandler(logger logrus.FieldLogger, hub *session.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
		defer cancel()
		views, err := hub.Rooms(ctx)
		if err != nil {
			logger.WithError(err).Warn("room snapshot failed")
			http.Error(w, "room snapshot unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, roomsResponse{Rooms: views})
	}
}
