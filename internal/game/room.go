package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/tunequiz-backend/internal"
)

var (
	ErrUnknownRoom = errors.New("unknown room")
	ErrNoTracks    = errors.New("room has no tracks")
)

const eventQueueSize = 256

// Config holds the fixed pacing and rules shared by every room.
type Config struct {
	TracksPerRun     int
	RunsBeforeRepeat int

	PreloadDelay  time.Duration
	RoundDuration time.Duration
	EndingDelay   time.Duration
	RestartDelay  time.Duration
	TickInterval  time.Duration

	// SystemName authors server chat lines and cannot be used as a nickname.
	SystemName     string
	MaxNicknameLen int
	KickMinRole    int
}

func DefaultConfig() Config {
	return Config{
		TracksPerRun:     15,
		RunsBeforeRepeat: 4,
		PreloadDelay:     5 * time.Second,
		RoundDuration:    30 * time.Second,
		EndingDelay:      5 * time.Second,
		RestartDelay:     5 * time.Second,
		TickInterval:     50 * time.Millisecond,
		SystemName:       "binb",
		MaxNicknameLen:   15,
		KickMinRole:      1,
	}
}

// Room is one game room. All of its state is owned by the goroutine running
// Run; everything else talks to it by posting events.
type Room struct {
	name   string
	cfg    Config
	deps   Deps
	clock  clockwork.Clock
	randN  func(int) int
	logger zerolog.Logger

	events chan func()
	done   chan struct{}
	ctx    context.Context
	err    error

	// Game state
	status       internal.RoomStatus
	tracksCount  int
	played       *playedTracks
	track        internal.Track
	generation   uint64
	songCounter  int
	playStart    time.Time
	deadline     time.Time
	songTimeLeft time.Duration
	finishLine   int

	// Roster
	users      map[string]*internal.UserRecord
	order      []string
	byNick     map[string]internal.ConnID
	byConn     map[internal.ConnID]string
	totalUsers int
}

type Option func(*Room)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(r *Room) { r.clock = c }
}

// WithRandIntN replaces the track index generator.
func WithRandIntN(f func(int) int) Option {
	return func(r *Room) { r.randN = f }
}

func NewRoom(name string, cfg Config, deps Deps, opts ...Option) *Room {
	r := &Room{
		name:       name,
		cfg:        cfg,
		deps:       deps,
		clock:      clockwork.NewRealClock(),
		randN:      rand.IntN,
		logger:     log.With().Str("module", "game.room").Str("room", name).Logger(),
		events:     make(chan func(), eventQueueSize),
		done:       make(chan struct{}),
		ctx:        context.Background(),
		status:     internal.StatusStarting,
		played:     newPlayedTracks(cfg.TracksPerRun, cfg.RunsBeforeRepeat),
		finishLine: 1,
		users:      make(map[string]*internal.UserRecord),
		byNick:     make(map[string]internal.ConnID),
		byConn:     make(map[internal.ConnID]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Room) Name() string { return r.name }

// Run processes the room's events until ctx is done or the game loop hits
// an unrecoverable catalog error, which is returned.
func (r *Room) Run(ctx context.Context) error {
	r.ctx = ctx
	defer close(r.done)

	r.logger.Info().Msg("room started")
	r.initialize()

	for {
		if r.err != nil {
			r.logger.Error().Err(r.err).Msg("room halted")
			return r.err
		}
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("room stopped")
			return nil
		case fn := <-r.events:
			fn()
		}
	}
}

// fail stops the loop after the current event.
func (r *Room) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// post queues fn on the room loop. It reports false once the loop is gone.
func (r *Room) post(fn func()) bool {
	select {
	case r.events <- fn:
		return true
	case <-r.done:
		return false
	}
}

// query runs fn on the room loop and waits for it.
func (r *Room) query(fn func()) bool {
	finished := make(chan struct{})
	if !r.post(func() { fn(); close(finished) }) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-r.done:
		return false
	}
}

// await runs call off the loop and posts then back onto it with the result.
// then runs after an arbitrary number of other events and must re-validate
// whatever it relies on before mutating state.
func await[T any](r *Room, call func(ctx context.Context) (T, error), then func(T, error)) {
	ctx := r.ctx
	go func() {
		v, err := call(ctx)
		if !r.post(func() { then(v, err) }) {
			r.logger.Debug().Msg("room gone, dropping continuation")
		}
	}()
}

// record sends a stats update without waiting for it.
func (r *Room) record(nickname string, update internal.StatsUpdate) {
	if r.deps.Stats == nil {
		return
	}
	ctx := r.ctx
	go func() {
		if err := r.deps.Stats.Record(ctx, nickname, update); err != nil {
			r.logger.Warn().Err(err).Str("nickname", nickname).Msg("failed to record stats")
		}
	}()
}

// =============================================================================
// EVENTS FROM THE TRANSPORT
// =============================================================================

// Join asks for nickname on behalf of an anonymous connection.
func (r *Room) Join(conn internal.ConnID, nickname string) {
	r.post(func() { r.join(conn, nickname) })
}

// JoinRegistered adds a connection whose account was already authenticated.
func (r *Room) JoinRegistered(conn internal.ConnID, nickname string) {
	r.post(func() { r.joinRegistered(conn, nickname) })
}

// Leave handles a closed connection.
func (r *Room) Leave(conn internal.ConnID) {
	r.post(func() {
		if nickname, ok := r.byConn[conn]; ok {
			r.removeUser(nickname)
		}
	})
}

func (r *Room) Guess(conn internal.ConnID, guess string) {
	r.post(func() { r.onGuess(conn, guess) })
}

func (r *Room) Chat(conn internal.ConnID, msg, to string) {
	r.post(func() { r.onChatMessage(conn, msg, to) })
}

func (r *Room) Kick(conn internal.ConnID, target, why string, ban time.Duration) {
	r.post(func() { r.kick(conn, target, why, ban) })
}

func (r *Room) Ignore(conn internal.ConnID, target string) {
	r.post(func() { r.onIgnore(conn, target) })
}

func (r *Room) Unignore(conn internal.ConnID, target string) {
	r.post(func() { r.onUnignore(conn, target) })
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Snapshot is a copy of the room state taken on the room loop.
type Snapshot struct {
	Name         string
	Status       internal.RoomStatus
	TracksCount  int
	Track        internal.Track
	Generation   uint64
	SongCounter  int
	SongTimeLeft time.Duration
	FinishLine   int
	PlayedTracks []string
	TotalUsers   int
	Users        internal.UsersData
	Order        []string
}

// Snapshot returns the current state, or false when the room has stopped.
func (r *Room) Snapshot() (Snapshot, bool) {
	var s Snapshot
	ok := r.query(func() { s = r.snapshot() })
	return s, ok
}

func (r *Room) snapshot() Snapshot {
	return Snapshot{
		Name:         r.name,
		Status:       r.status,
		TracksCount:  r.tracksCount,
		Track:        r.track,
		Generation:   r.generation,
		SongCounter:  r.songCounter,
		SongTimeLeft: r.songTimeLeft,
		FinishLine:   r.finishLine,
		PlayedTracks: r.played.list(),
		TotalUsers:   r.totalUsers,
		Users:        r.usersData(),
		Order:        append([]string(nil), r.order...),
	}
}

// Info returns the overview of the room.
func (r *Room) Info() internal.RoomInfo {
	info := internal.RoomInfo{Name: r.name}
	r.query(func() { info.TotalUsers = r.totalUsers })
	return info
}

func (r *Room) usersData() internal.UsersData {
	data := make(internal.UsersData, len(r.users))
	for nickname, u := range r.users {
		data[nickname] = *u
	}
	return data
}
