package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/tunequiz-backend/internal"
	"github.com/scythe504/tunequiz-backend/internal/utils"
)

type banEntry struct {
	ban     internal.Ban
	expires time.Time
}

// MemoryStore keeps everything in process memory. It serves the CSV
// catalog and local runs without a database.
type MemoryStore struct {
	clock  clockwork.Clock
	logger zerolog.Logger

	mu     sync.RWMutex
	rooms  map[string][]string
	tracks map[string]internal.TrackMetadata
	roles  map[string]int
	bans   map[string]banEntry
	stats  map[string]*UserStats
}

func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		clock:  clock,
		logger: log.With().Str("module", "store.memory").Logger(),
		rooms:  make(map[string][]string),
		tracks: make(map[string]internal.TrackMetadata),
		roles:  make(map[string]int),
		bans:   make(map[string]banEntry),
		stats:  make(map[string]*UserStats),
	}
}

// NewMemoryStoreFromFile loads a catalog CSV file.
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	entries, err := utils.ReadTracksFile(path)
	if err != nil {
		return nil, err
	}
	s := NewMemoryStore(nil)
	s.AddTracks(entries)
	s.logger.Info().Str("file", path).Int("tracks", len(entries)).Msg("catalog loaded")
	return s, nil
}

// AddTracks appends entries to their rooms in order.
func (s *MemoryStore) AddTracks(entries []utils.CatalogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if !slices.Contains(s.rooms[e.Room], e.ID) {
			s.rooms[e.Room] = append(s.rooms[e.Room], e.ID)
		}
		s.tracks[e.ID] = e.TrackMetadata
	}
}

// AddUser registers an account with the given role.
func (s *MemoryStore) AddUser(nickname string, role int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[nickname] = role
}

// =============================================================================
// CATALOG
// =============================================================================

func (s *MemoryStore) Count(_ context.Context, room string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[room]), nil
}

func (s *MemoryStore) TrackAt(_ context.Context, room string, index int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.rooms[room]
	if index < 0 || index >= len(ids) {
		return "", fmt.Errorf("track %d of room %s: %w", index, room, ErrNotFound)
	}
	return ids[index], nil
}

func (s *MemoryStore) Metadata(_ context.Context, trackID string) (internal.TrackMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.tracks[trackID]
	if !ok {
		return internal.TrackMetadata{}, fmt.Errorf("track %s: %w", trackID, ErrNotFound)
	}
	return meta, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *MemoryStore) Exists(_ context.Context, nickname string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roles[nickname]
	return ok, nil
}

// RoleOf returns 0 for unknown nicknames.
func (s *MemoryStore) RoleOf(_ context.Context, nickname string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles[nickname], nil
}

// =============================================================================
// BANS
// =============================================================================

func (s *MemoryStore) SetBan(_ context.Context, ban internal.Ban) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans[ban.Address] = banEntry{ban: ban, expires: s.clock.Now().Add(ban.Duration)}
	return nil
}

// TTL returns how long address stays banned, zero when it is not.
func (s *MemoryStore) TTL(_ context.Context, address string) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.bans[address]
	if !ok {
		return 0, nil
	}
	return max(entry.expires.Sub(s.clock.Now()), 0), nil
}

func (s *MemoryStore) PurgeExpiredBans(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	var n int64
	for address, entry := range s.bans {
		if !entry.expires.After(now) {
			delete(s.bans, address)
			n++
		}
	}
	return n, nil
}

// =============================================================================
// STATS
// =============================================================================

func (s *MemoryStore) Record(_ context.Context, nickname string, update internal.StatsUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[nickname]
	if !ok {
		st = &UserStats{Nickname: nickname}
		s.stats[nickname] = st
	}
	st.apply(deltaOf(update))
	return nil
}

func (s *MemoryStore) Stats(_ context.Context, nickname string) (UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stats[nickname]
	if !ok {
		return UserStats{}, fmt.Errorf("stats of %s: %w", nickname, ErrNotFound)
	}
	return *st, nil
}
