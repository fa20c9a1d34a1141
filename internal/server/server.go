package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/tunequiz-backend/internal"
	"github.com/scythe504/tunequiz-backend/internal/game"
	"github.com/scythe504/tunequiz-backend/internal/websocket"
)

// Rooms is the read side of the room manager used by the HTTP layer.
type Rooms interface {
	Room(name string) (*game.Room, error)
	Overview() []internal.RoomInfo
}

// BanChecker tells how long an address stays banned.
type BanChecker interface {
	TTL(ctx context.Context, address string) (time.Duration, error)
}

type Server struct {
	port   int
	rooms  Rooms
	hub    *websocket.Hub
	bans   BanChecker
	logger zerolog.Logger
}

func New(port int, rooms Rooms, hub *websocket.Hub, bans BanChecker) *Server {
	return &Server{
		port:   port,
		rooms:  rooms,
		hub:    hub,
		bans:   bans,
		logger: log.With().Str("module", "server").Logger(),
	}
}

// HTTPServer wraps the routes in an http.Server listening on the configured
// port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
