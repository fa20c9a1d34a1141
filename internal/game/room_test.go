package game

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/scythe504/tunequiz-backend/internal"
	"github.com/scythe504/tunequiz-backend/internal/match"
	"github.com/scythe504/tunequiz-backend/internal/mocks"
	"github.com/scythe504/tunequiz-backend/internal/store"
	"github.com/scythe504/tunequiz-backend/internal/utils"
)

const testCatalog = `id,room,artistName,trackName,previewUrl,artworkUrl,trackViewUrl
1,mixed,Queen,Bohemian Rhapsody,p1,a1,v1
2,mixed,Weezer,Weezer,p2,a2,v2
3,mixed,Daft Punk,Get Lucky (feat. Pharrell Williams),p3,a3,v3
4,mixed,Nirvana,Lithium,p4,a4,v4
`

// =============================================================================
// FAKE TRANSPORT
// =============================================================================

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (e envelope) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

type fakeTransport struct {
	mu         sync.Mutex
	inbox      map[internal.ConnID][]envelope
	addresses  map[internal.ConnID]string
	dead       map[internal.ConnID]bool
	groups     map[string]map[internal.ConnID]bool
	broadcasts []envelope
	log        []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbox:     make(map[internal.ConnID][]envelope),
		addresses: make(map[internal.ConnID]string),
		dead:      make(map[internal.ConnID]bool),
		groups:    make(map[string]map[internal.ConnID]bool),
	}
}

func (f *fakeTransport) connect(conn internal.ConnID, address string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox[conn] = nil
	f.addresses[conn] = address
}

// disconnect drops conn the way the hub does before the room hears about it.
func (f *fakeTransport) disconnect(conn internal.ConnID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead[conn] = true
	for _, group := range f.groups {
		delete(group, conn)
	}
}

func (f *fakeTransport) note(entry string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = append(f.log, entry)
}

func encodeEnvelope(msg any) envelope {
	data, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		panic(err)
	}
	return e
}

func (f *fakeTransport) deliver(conn internal.ConnID, e envelope) {
	if _, ok := f.inbox[conn]; ok && !f.dead[conn] {
		f.inbox[conn] = append(f.inbox[conn], e)
	}
}

func (f *fakeTransport) Send(conn internal.ConnID, msg any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliver(conn, encodeEnvelope(msg))
}

func (f *fakeTransport) Broadcast(room string, msg any) {
	f.BroadcastExcept(room, "", msg)
}

func (f *fakeTransport) BroadcastExcept(room string, except internal.ConnID, msg any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := encodeEnvelope(msg)
	f.broadcasts = append(f.broadcasts, e)
	for conn := range f.groups[room] {
		if conn != except {
			f.deliver(conn, e)
		}
	}
}

func (f *fakeTransport) BroadcastAll(msg any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := encodeEnvelope(msg)
	for conn := range f.inbox {
		f.deliver(conn, e)
	}
}

func (f *fakeTransport) Join(conn internal.ConnID, room string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groups[room] == nil {
		f.groups[room] = make(map[internal.ConnID]bool)
	}
	f.groups[room][conn] = true
}

func (f *fakeTransport) Terminate(conn internal.ConnID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead[conn] = true
	f.log = append(f.log, "terminate:"+string(conn))
}

func (f *fakeTransport) IsAlive(conn internal.ConnID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.inbox[conn]
	return ok && !f.dead[conn]
}

func (f *fakeTransport) Address(conn internal.ConnID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addresses[conn]
}

// messages returns what conn received of type typ, in order.
func (f *fakeTransport) messages(conn internal.ConnID, typ string) []envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []envelope
	for _, e := range f.inbox[conn] {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeTransport) received(conn internal.ConnID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inbox[conn])
}

func (f *fakeTransport) broadcastCount(typ string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.broadcasts {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func (f *fakeTransport) lastBroadcast(typ string) (envelope, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.broadcasts) - 1; i >= 0; i-- {
		if f.broadcasts[i].Type == typ {
			return f.broadcasts[i], true
		}
	}
	return envelope{}, false
}

func (f *fakeTransport) entries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	t         *testing.T
	cfg       Config
	room      *Room
	transport *fakeTransport
	store     *store.MemoryStore
	clock     *clockwork.FakeClock
	runErr    chan error
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TracksPerRun = 2
	cfg.RunsBeforeRepeat = 2
	return cfg
}

// sequential returns 0, 1, 2, ... modulo n.
func sequential() func(int) int {
	next := 0
	return func(n int) int {
		i := next % n
		next++
		return i
	}
}

func newHarness(t *testing.T, cfg Config, tweak ...func(*Deps)) *harness {
	t.Helper()

	clock := clockwork.NewFakeClock()
	s := store.NewMemoryStore(clock)
	entries, err := utils.ReadTracks(strings.NewReader(testCatalog))
	require.NoError(t, err)
	s.AddTracks(entries)

	transport := newFakeTransport()
	deps := Deps{
		Catalog:   s,
		Directory: s,
		Bans:      s,
		Stats:     s,
		Matcher:   match.New(),
		Transport: transport,
	}
	for _, f := range tweak {
		f(&deps)
	}

	return &harness{
		t:         t,
		cfg:       cfg,
		room:      NewRoom("mixed", cfg, deps, WithClock(clock), WithRandIntN(sequential())),
		transport: transport,
		store:     s,
		clock:     clock,
		runErr:    make(chan error, 1),
	}
}

func (h *harness) start() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() { h.runErr <- h.room.Run(ctx) }()
	h.t.Cleanup(func() {
		cancel()
		<-h.room.done
	})
}

func (h *harness) snapshot() Snapshot {
	h.t.Helper()
	s, ok := h.room.Snapshot()
	require.True(h.t, ok, "room stopped")
	return s
}

func (h *harness) waitFor(msg string, cond func(Snapshot) bool) Snapshot {
	h.t.Helper()
	var s Snapshot
	require.Eventually(h.t, func() bool {
		var ok bool
		s, ok = h.room.Snapshot()
		return ok && cond(s)
	}, 2*time.Second, 5*time.Millisecond, msg)
	return s
}

func (h *harness) waitBroadcasts(typ string, n int) {
	h.t.Helper()
	require.Eventually(h.t, func() bool {
		return h.transport.broadcastCount(typ) >= n
	}, 2*time.Second, 5*time.Millisecond, "waiting for %d %s", n, typ)
}

// join connects conn and waits until nickname is in the room.
func (h *harness) join(conn internal.ConnID, nickname string) {
	h.t.Helper()
	h.transport.connect(conn, "198.51.100."+string(conn))
	h.room.Join(conn, nickname)
	h.waitFor("join "+nickname, func(s Snapshot) bool {
		_, ok := s.Users[nickname]
		return ok
	})
}

func (h *harness) joinRegistered(conn internal.ConnID, nickname string, role int) {
	h.t.Helper()
	h.store.AddUser(nickname, role)
	h.transport.connect(conn, "198.51.100."+string(conn))
	h.room.JoinRegistered(conn, nickname)
	h.waitFor("join "+nickname, func(s Snapshot) bool {
		_, ok := s.Users[nickname]
		return ok
	})
}

// play waits for the n-th track to be loaded and starts it.
func (h *harness) play(n int) Snapshot {
	h.t.Helper()
	h.waitBroadcasts(internal.EventLoadTrack, n)
	h.clock.Advance(h.cfg.PreloadDelay)
	return h.waitFor("track playing", func(s Snapshot) bool {
		return s.Status == internal.StatusPlaying
	})
}

// reveal ends the playing track.
func (h *harness) reveal(n int) {
	h.t.Helper()
	h.clock.Advance(h.cfg.RoundDuration)
	h.waitBroadcasts(internal.EventTrackInfo, n)
}

// =============================================================================
// GAME FLOW
// =============================================================================

func TestRoomPlaysRunsAndRestarts(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.join("a", "alice")

	s := h.play(1)
	assert.Equal(t, 1, s.SongCounter)
	assert.Equal(t, "1", s.Track.ID)
	assert.Equal(t, "queen", s.Track.Artist)
	assert.Equal(t, "bohemian rhapsody", s.Track.Title)
	assert.Equal(t, h.cfg.RoundDuration, s.SongTimeLeft)

	played := h.transport.messages("a", internal.EventPlayTrack)
	require.Len(t, played, 1)
	var pt internal.PlayTrackData
	played[0].decode(t, &pt)
	assert.Equal(t, 1, pt.Counter)
	assert.Equal(t, 2, pt.Tot)
	assert.Contains(t, pt.Users, "alice")

	h.room.Guess("a", "queen")
	h.waitFor("artist matched", func(s Snapshot) bool {
		return s.Users["alice"].Matched == internal.MatchArtist
	})

	h.reveal(1)
	info, ok := h.transport.lastBroadcast(internal.EventTrackInfo)
	require.True(t, ok)
	var ti internal.TrackInfoData
	info.decode(t, &ti)
	assert.Equal(t, internal.TrackInfoData{ArtworkURL: "a1", ArtistName: "Queen", TrackName: "Bohemian Rhapsody", ViewURL: "v1"}, ti)

	// Round fields reset, cumulative ones survive.
	s = h.waitFor("next track loading", func(s Snapshot) bool { return s.Status == internal.StatusLoading })
	assert.Equal(t, internal.MatchNone, s.Users["alice"].Matched)
	assert.Zero(t, s.Users["alice"].RoundPoints)
	assert.Equal(t, 1, s.Users["alice"].Points)
	assert.Equal(t, 1, s.FinishLine)

	s = h.play(2)
	assert.Equal(t, 2, s.SongCounter)
	assert.Equal(t, "2", s.Track.ID)

	h.room.Guess("a", "weezer")
	h.waitFor("both matched", func(s Snapshot) bool {
		return s.Users["alice"].Matched == internal.MatchBoth
	})

	h.reveal(2)
	s = h.waitFor("run ending", func(s Snapshot) bool { return s.Status == internal.StatusEnding })
	assert.Equal(t, 7, s.Users["alice"].Points)

	h.clock.Advance(h.cfg.EndingDelay)
	h.waitBroadcasts(internal.EventGameOver, 1)

	over, ok := h.transport.lastBroadcast(internal.EventGameOver)
	require.True(t, ok)
	var podium []internal.UserRecord
	over.decode(t, &podium)
	require.Len(t, podium, 1)
	assert.Equal(t, "alice", podium[0].Nickname)
	assert.Equal(t, 7, podium[0].Points)
	assert.Equal(t, 1, podium[0].Golds)

	s = h.waitFor("restarting", func(s Snapshot) bool { return s.Status == internal.StatusStarting })
	assert.Zero(t, s.SongCounter)
	assert.Equal(t, internal.UserRecord{Nickname: "alice"}, s.Users["alice"])
	assert.Equal(t, []string{"1", "2"}, s.PlayedTracks)

	h.clock.Advance(h.cfg.RestartDelay)
	s = h.play(3)
	assert.Equal(t, 1, s.SongCounter)
	assert.Equal(t, "3", s.Track.ID)
	assert.Equal(t, "get lucky (feat. pharrell williams)", s.Track.Title)
	assert.Equal(t, "pharrell williams", s.Track.Feat)
}

func TestTimerCountsDown(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.play(1)

	h.clock.Advance(h.cfg.TickInterval)
	s := h.waitFor("tick", func(s Snapshot) bool {
		return s.SongTimeLeft == h.cfg.RoundDuration-h.cfg.TickInterval
	})
	assert.Equal(t, internal.StatusPlaying, s.Status)
}

func TestReadyCarriesTheRoomState(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.play(1)
	h.join("a", "alice")

	ready := h.transport.messages("a", internal.EventReady)
	require.Len(t, ready, 1)
	var data internal.ReadyData
	ready[0].decode(t, &data)
	assert.Equal(t, 4, data.TracksCount)
	assert.Equal(t, "alice", data.Nickname)
	assert.False(t, data.LoggedIn)
	assert.Equal(t, "p1", data.State.PreviewURL)
	assert.Equal(t, internal.StatusPlaying, data.State.Status)
	assert.Equal(t, h.cfg.RoundDuration.Milliseconds(), data.State.TimeLeft)
}

func TestRoomWithoutTracksHalts(t *testing.T) {
	h := newHarness(t, testConfig())
	h.room = NewRoom("jazz", h.cfg, h.room.deps, WithClock(h.clock))
	h.start()

	select {
	case err := <-h.runErr:
		assert.ErrorIs(t, err, ErrNoTracks)
	case <-time.After(2 * time.Second):
		t.Fatal("room kept running")
	}
	_, ok := h.room.Snapshot()
	assert.False(t, ok)
}

func TestCatalogFailureHaltsTheRoom(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalog(ctrl)
	boom := errors.New("catalog down")
	catalog.EXPECT().Count(gomock.Any(), "mixed").Return(3, nil)
	catalog.EXPECT().TrackAt(gomock.Any(), "mixed", 0).Return("1", nil)
	catalog.EXPECT().Metadata(gomock.Any(), "1").Return(internal.TrackMetadata{}, boom)

	h := newHarness(t, testConfig(), func(d *Deps) { d.Catalog = catalog })
	h.start()

	select {
	case err := <-h.runErr:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("room kept running")
	}
}

func TestRecentTracksAreNotRepeated(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalog(ctrl)
	catalog.EXPECT().Count(gomock.Any(), "mixed").Return(3, nil)
	gomock.InOrder(
		catalog.EXPECT().TrackAt(gomock.Any(), "mixed", 0).Return("x", nil),
		catalog.EXPECT().TrackAt(gomock.Any(), "mixed", 1).Return("x", nil),
		catalog.EXPECT().TrackAt(gomock.Any(), "mixed", 2).Return("y", nil),
	)
	catalog.EXPECT().Metadata(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id string) (internal.TrackMetadata, error) {
			return internal.TrackMetadata{ArtistName: "artist " + id, TrackName: "title " + id}, nil
		}).Times(2)

	h := newHarness(t, testConfig(), func(d *Deps) { d.Catalog = catalog })
	h.start()

	h.play(1)
	h.reveal(1)
	s := h.play(2)
	assert.Equal(t, "y", s.Track.ID)
	assert.Equal(t, []string{"x", "y"}, s.PlayedTracks)
}

func TestSmallCatalogForgetsOldRuns(t *testing.T) {
	// Four tracks, but two runs of two have to be remembered: the third game
	// can only start by forgetting the first run.
	cfg := testConfig()
	cfg.RunsBeforeRepeat = 3
	h := newHarness(t, cfg)
	h.start()

	for i := 1; i <= 4; i++ {
		h.play(i)
		h.reveal(i)
		if i%2 == 0 {
			h.waitFor("run ending", func(s Snapshot) bool { return s.Status == internal.StatusEnding })
			h.clock.Advance(cfg.EndingDelay)
			h.waitBroadcasts(internal.EventGameOver, i/2)
			h.waitFor("restarting", func(s Snapshot) bool { return s.Status == internal.StatusStarting })
			h.clock.Advance(cfg.RestartDelay)
		}
	}

	s := h.play(5)
	assert.Equal(t, "1", s.Track.ID)
	assert.Equal(t, []string{"3", "4", "1"}, s.PlayedTracks)
}

func TestLeaveRemovesTheRecord(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.join("a", "alice")
	h.join("b", "bob")

	h.transport.disconnect("b")
	h.room.Leave("b")
	s := h.waitFor("bob gone", func(s Snapshot) bool { return s.TotalUsers == 1 })
	assert.NotContains(t, s.Users, "bob")
	assert.Equal(t, []string{"alice"}, s.Order)

	left := h.transport.messages("a", internal.EventUserLeft)
	require.Len(t, left, 1)
	var data internal.UserEventData
	left[0].decode(t, &data)
	assert.Equal(t, "bob", data.Nickname)
	assert.NotContains(t, data.UsersData, "bob")

	// Leaving twice is harmless.
	h.room.Leave("b")
	assert.Equal(t, 1, h.snapshot().TotalUsers)
}

func TestInfo(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.join("a", "alice")

	assert.Equal(t, internal.RoomInfo{Name: "mixed", TotalUsers: 1}, h.room.Info())

	overview := h.transport.messages("a", internal.EventUpdateOverview)
	require.NotEmpty(t, overview)
	var info internal.RoomInfo
	overview[len(overview)-1].decode(t, &info)
	assert.Equal(t, internal.RoomInfo{Name: "mixed", TotalUsers: 1}, info)
}
