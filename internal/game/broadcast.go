package game

import "github.com/scythe504/tunequiz-backend/internal"

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

func message[T any](typ string, data T) internal.Message[T] {
	return internal.Message[T]{Type: typ, Data: data}
}

// send delivers an event to one connection.
func (r *Room) send(conn internal.ConnID, typ string, data any) {
	r.deps.Transport.Send(conn, message(typ, data))
}

// broadcast delivers an event to every player of the room.
func (r *Room) broadcast(typ string, data any) {
	r.deps.Transport.Broadcast(r.name, message(typ, data))
}

func (r *Room) broadcastExcept(except internal.ConnID, typ string, data any) {
	r.deps.Transport.BroadcastExcept(r.name, except, message(typ, data))
}

// broadcastOverview tells every connection of every room how many players
// this room has.
func (r *Room) broadcastOverview() {
	r.deps.Transport.BroadcastAll(message(internal.EventUpdateOverview, internal.RoomInfo{
		Name:       r.name,
		TotalUsers: r.totalUsers,
	}))
}

// systemNotice sends a chat line authored by the server to one connection.
func (r *Room) systemNotice(conn internal.ConnID, to, msg string) {
	r.send(conn, internal.EventChatMessage, internal.ChatData{
		Msg:  msg,
		From: r.cfg.SystemName,
		To:   to,
	})
}
