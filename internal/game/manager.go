package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/scythe504/tunequiz-backend/internal"
)

// Manager owns the fixed set of rooms. The name to room map is built once
// and never written afterwards.
type Manager struct {
	names []string
	rooms map[string]*Room
}

func NewManager(names []string, cfg Config, deps Deps, opts ...Option) *Manager {
	m := &Manager{
		names: append([]string(nil), names...),
		rooms: make(map[string]*Room, len(names)),
	}
	for _, name := range names {
		m.rooms[name] = NewRoom(name, cfg, deps, opts...)
	}
	return m
}

// Run runs every room until ctx is done. A room that fails stops alone; the
// first failure is returned once all rooms have stopped.
func (m *Manager) Run(ctx context.Context) error {
	logger := log.With().Str("module", "game.manager").Logger()

	var g errgroup.Group
	for _, name := range m.names {
		room := m.rooms[name]
		g.Go(func() error {
			if err := room.Run(ctx); err != nil {
				logger.Error().Err(err).Str("room", room.Name()).Msg("room stopped with an error")
				return fmt.Errorf("room %s: %w", room.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (m *Manager) Room(name string) (*Room, error) {
	room, ok := m.rooms[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownRoom)
	}
	return room, nil
}

func (m *Manager) Names() []string {
	return append([]string(nil), m.names...)
}

// Overview returns the player count of every room, in configuration order.
func (m *Manager) Overview() []internal.RoomInfo {
	infos := make([]internal.RoomInfo, 0, len(m.names))
	for _, name := range m.names {
		infos = append(infos, m.rooms[name].Info())
	}
	return infos
}
