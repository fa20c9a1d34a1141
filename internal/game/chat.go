package game

import (
	"strings"

	"github.com/scythe504/tunequiz-backend/internal"
)

const noticeUseGuessBox = "You are probably right, but you have to use the box above."

// onChatMessage relays a chat line. A line sent to a nickname only reaches
// the sender and that player; a public line that gives away the answer of
// the playing track is swallowed.
func (r *Room) onChatMessage(conn internal.ConnID, msg, to string) {
	from, ok := r.byConn[conn]
	if !ok {
		return
	}

	if to != "" {
		toConn, ok := r.byNick[to]
		if !ok {
			return
		}
		line := internal.ChatData{Msg: msg, From: from, To: to}
		r.send(conn, internal.EventChatMessage, line)
		if toConn != conn {
			r.send(toConn, internal.EventChatMessage, line)
		}
		return
	}

	if r.status == internal.StatusPlaying && r.revealsAnswer(strings.ToLower(msg)) {
		r.systemNotice(conn, from, noticeUseGuessBox)
		return
	}

	r.broadcast(internal.EventChatMessage, internal.ChatData{Msg: msg, From: from})
}

func (r *Room) revealsAnswer(msg string) bool {
	return r.matchesArtist(msg) || r.deps.Matcher.Matches(r.track.Title, msg, false)
}
