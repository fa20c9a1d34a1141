package game

import (
	"context"

	"github.com/scythe504/tunequiz-backend/internal"
)

//go:generate mockgen -destination=../mocks/mock_deps.go -package=mocks . Catalog,Directory,BanStore

// Catalog is the read side of the track catalog.
type Catalog interface {
	Count(ctx context.Context, room string) (int, error)
	TrackAt(ctx context.Context, room string, index int) (string, error)
	Metadata(ctx context.Context, trackID string) (internal.TrackMetadata, error)
}

// Directory answers questions about persistent accounts.
type Directory interface {
	Exists(ctx context.Context, nickname string) (bool, error)
	RoleOf(ctx context.Context, nickname string) (int, error)
}

type BanStore interface {
	SetBan(ctx context.Context, ban internal.Ban) error
}

// Stats records long-term per-user statistics. Calls are fire-and-forget.
type Stats interface {
	Record(ctx context.Context, nickname string, update internal.StatsUpdate) error
}

type Matcher interface {
	Matches(answer, guess string, exact bool) bool
}

// Transport delivers messages to connections. Implementations must not
// block on slow peers.
type Transport interface {
	Send(conn internal.ConnID, msg any)
	Broadcast(room string, msg any)
	BroadcastExcept(room string, except internal.ConnID, msg any)
	BroadcastAll(msg any)
	Join(conn internal.ConnID, room string)
	Terminate(conn internal.ConnID)
	IsAlive(conn internal.ConnID) bool
	Address(conn internal.ConnID) string
}

// Deps bundles the collaborators of a room.
type Deps struct {
	Catalog   Catalog
	Directory Directory
	Bans      BanStore
	Stats     Stats
	Matcher   Matcher
	Transport Transport
}
