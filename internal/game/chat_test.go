package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/tunequiz-backend/internal"
)

func TestPublicChat(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.join("a", "alice")
	h.join("b", "bob")

	h.room.Chat("a", "hello there", "")
	h.snapshot()

	want := internal.ChatData{Msg: "hello there", From: "alice"}
	assert.Equal(t, []internal.ChatData{want}, chatLines(t, h, "a"))
	assert.Equal(t, []internal.ChatData{want}, chatLines(t, h, "b"))
}

func TestDirectMessage(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.join("a", "alice")
	h.join("b", "bob")
	h.join("c", "carol")

	h.room.Chat("a", "psst", "bob")
	h.room.Chat("a", "to nobody", "dave")
	h.room.Chat("a", "note to self", "alice")
	h.snapshot()

	psst := internal.ChatData{Msg: "psst", From: "alice", To: "bob"}
	self := internal.ChatData{Msg: "note to self", From: "alice", To: "alice"}
	assert.Equal(t, []internal.ChatData{psst, self}, chatLines(t, h, "a"))
	assert.Equal(t, []internal.ChatData{psst}, chatLines(t, h, "b"))
	assert.Empty(t, chatLines(t, h, "c"))
}

func TestChatCannotGiveAwayTheAnswer(t *testing.T) {
	h := playing(t, 0, "alice", "bob")

	h.room.Chat("alice", "QUEEN", "")
	h.room.Chat("alice", "Bohemian Rhapsody!", "")
	h.room.Chat("alice", "no idea", "")
	h.snapshot()

	lines := chatLines(t, h, "alice")
	require.Len(t, lines, 3)
	assert.Equal(t, internal.ChatData{Msg: noticeUseGuessBox, From: "binb", To: "alice"}, lines[0])
	assert.Equal(t, noticeUseGuessBox, lines[1].Msg)
	assert.Equal(t, internal.ChatData{Msg: "no idea", From: "alice"}, lines[2])

	assert.Equal(t, []internal.ChatData{{Msg: "no idea", From: "alice"}}, chatLines(t, h, "bob"))
}

func TestChatIsFreeBetweenTracks(t *testing.T) {
	h := newHarness(t, testConfig())
	h.start()
	h.join("a", "alice")
	h.waitBroadcasts(internal.EventLoadTrack, 1)

	h.room.Chat("a", "queen", "")
	h.snapshot()
	assert.Equal(t, []internal.ChatData{{Msg: "queen", From: "alice"}}, chatLines(t, h, "a"))
}
