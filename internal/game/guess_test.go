package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/tunequiz-backend/internal"
)

// playing starts a room on the track at index and joins the given players.
func playing(t *testing.T, index int, players ...string) *harness {
	t.Helper()
	h := newHarness(t, testConfig())
	h.room.randN = func(int) int { return index }
	h.start()
	for _, nickname := range players {
		h.join(internal.ConnID(nickname), nickname)
	}
	h.play(1)
	return h
}

func (h *harness) guess(conn internal.ConnID, guess string) Snapshot {
	h.t.Helper()
	h.room.Guess(conn, guess)
	return h.snapshot()
}

func TestSequentialCompletion(t *testing.T) {
	h := playing(t, 0, "alice")

	s := h.guess("alice", "Bohemian Rhapsody")
	alice := s.Users["alice"]
	assert.Equal(t, internal.MatchTitle, alice.Matched)
	assert.Equal(t, 1, alice.Points)
	assert.Equal(t, 1, alice.RoundPoints)
	assert.Len(t, h.transport.messages("alice", internal.EventTitleMatched), 1)

	h.clock.Advance(1500 * time.Millisecond)
	s = h.guess("alice", "queen")
	alice = s.Users["alice"]
	assert.Equal(t, internal.MatchBoth, alice.Matched)
	assert.Equal(t, 6, alice.Points)
	assert.Equal(t, 6, alice.RoundPoints)
	assert.Equal(t, 1, alice.Golds)
	assert.Equal(t, 1, alice.Guessed)
	assert.Equal(t, int64(1500), alice.GuessTime)
	assert.Equal(t, int64(1500), alice.TotalGuessTime)
	assert.Equal(t, 2, s.FinishLine)
	assert.Len(t, h.transport.messages("alice", internal.EventBothMatched), 1)

	s = h.guess("alice", "queen")
	assert.Equal(t, 6, s.Users["alice"].Points)
	assert.Len(t, h.transport.messages("alice", internal.EventStopTrying), 1)
}

func TestArtistThenTitle(t *testing.T) {
	h := playing(t, 0, "alice")

	s := h.guess("alice", "Queen")
	assert.Equal(t, internal.MatchArtist, s.Users["alice"].Matched)
	assert.Len(t, h.transport.messages("alice", internal.EventArtistMatched), 1)

	// Only the title counts from here.
	s = h.guess("alice", "queen")
	assert.Equal(t, internal.MatchArtist, s.Users["alice"].Matched)
	assert.Len(t, h.transport.messages("alice", internal.EventNoMatch), 1)

	s = h.guess("alice", "bohemian rapsody")
	assert.Equal(t, internal.MatchBoth, s.Users["alice"].Matched)
	assert.Equal(t, 6, s.Users["alice"].Points)
}

func TestSelfTitledCompletion(t *testing.T) {
	h := playing(t, 1, "alice", "bob")

	s := h.guess("alice", "weezer")
	assert.Equal(t, 6, s.Users["alice"].Points)
	assert.Equal(t, 2, s.FinishLine)

	s = h.guess("bob", "Weezer")
	bob := s.Users["bob"]
	assert.Equal(t, internal.MatchBoth, bob.Matched)
	assert.Equal(t, 5, bob.Points)
	assert.Equal(t, 5, bob.RoundPoints)
	assert.Equal(t, 1, bob.Silvers)
	assert.Zero(t, bob.Golds)
	assert.Equal(t, 3, s.FinishLine)
	assert.Empty(t, h.transport.messages("bob", internal.EventArtistMatched))
}

func TestTiersFollowTheFinishLine(t *testing.T) {
	h := playing(t, 1, "a", "b", "c", "d", "e")

	for _, conn := range []internal.ConnID{"a", "b", "c", "d", "e"} {
		h.guess(conn, "weezer")
	}
	s := h.snapshot()

	points := []int{s.Users["a"].Points, s.Users["b"].Points, s.Users["c"].Points, s.Users["d"].Points, s.Users["e"].Points}
	assert.Equal(t, []int{6, 5, 4, 3, 3}, points)
	assert.Equal(t, 1, s.Users["a"].Golds)
	assert.Equal(t, 1, s.Users["b"].Silvers)
	assert.Equal(t, 1, s.Users["c"].Bronzes)
	assert.Equal(t, internal.UserRecord{Nickname: "d", Points: 3, RoundPoints: 3, Guessed: 1, Matched: internal.MatchBoth}, s.Users["d"])
	assert.Equal(t, 6, s.FinishLine)
}

func TestFeaturedArtistCounts(t *testing.T) {
	h := playing(t, 2, "alice", "bob")

	s := h.guess("alice", "Pharrell Williams")
	assert.Equal(t, internal.MatchArtist, s.Users["alice"].Matched)

	s = h.guess("alice", "get lucky")
	assert.Equal(t, internal.MatchBoth, s.Users["alice"].Matched)

	s = h.guess("bob", "daft punk")
	assert.Equal(t, internal.MatchArtist, s.Users["bob"].Matched)
}

func TestWrongGuess(t *testing.T) {
	h := playing(t, 0, "alice")

	s := h.guess("alice", "freddie")
	assert.Equal(t, internal.MatchNone, s.Users["alice"].Matched)
	assert.Zero(t, s.Users["alice"].Points)
	assert.Len(t, h.transport.messages("alice", internal.EventNoMatch), 1)
}

func TestGuessWhileLoadingIsIgnored(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.join("alice", "alice")
	h.waitBroadcasts(internal.EventLoadTrack, 1)

	before := h.snapshot()
	received := h.transport.received("alice")
	updates := h.transport.broadcastCount(internal.EventUpdateUsers)

	s := h.guess("alice", "queen")
	assert.Equal(t, internal.StatusLoading, s.Status)
	assert.Equal(t, before.Users, s.Users)
	assert.Equal(t, received, h.transport.received("alice"))
	assert.Equal(t, updates, h.transport.broadcastCount(internal.EventUpdateUsers))
}

func TestGuessFromOutsiderIsIgnored(t *testing.T) {
	h := playing(t, 0, "alice")
	h.transport.connect("mallory", "203.0.113.1")

	h.guess("mallory", "queen")
	assert.Zero(t, h.transport.received("mallory"))
}

func TestMatchesAreBroadcast(t *testing.T) {
	h := playing(t, 0, "alice", "bob")

	h.guess("alice", "queen")
	updates := h.transport.messages("bob", internal.EventUpdateUsers)
	require.Len(t, updates, 1)
	var users internal.UsersData
	updates[0].decode(t, &users)
	assert.Equal(t, internal.MatchArtist, users["alice"].Matched)
	assert.Equal(t, 1, users["alice"].Points)
}

func TestRegisteredPlayersGetStats(t *testing.T) {
	h := newHarness(t, testConfig())
	h.room.randN = func(int) int { return 0 }
	h.start()
	h.joinRegistered("bob", "bob", 0)
	h.play(1)

	h.guess("bob", "bohemian rhapsody")
	h.clock.Advance(2 * time.Second)
	h.guess("bob", "queen")

	require.Eventually(t, func() bool {
		st, err := h.store.Stats(context.Background(), "bob")
		return err == nil && st.Guessed == 1 && st.Points == 6
	}, 2*time.Second, 5*time.Millisecond)

	st, err := h.store.Stats(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(6), st.Points)
	assert.Equal(t, 6, st.BestScore)
	assert.Equal(t, 1, st.Golds)
	assert.Equal(t, int64(2000), st.BestGuessTime)
}
