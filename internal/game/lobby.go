package game

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/scythe504/tunequiz-backend/internal"
	"github.com/scythe504/tunequiz-backend/internal/utils"
)

// =============================================================================
// ROSTER - JOIN, LEAVE & MODERATION
// =============================================================================

const (
	feedbackReserved     = "That name is reserved."
	feedbackInvalid      = "Name must contain only alphanumeric characters."
	feedbackTaken        = "Name already taken."
	feedbackLookupFailed = "Could not check name availability."
	feedbackRegistered   = "That name belongs to a registered user."

	noticeKickDenied = "You are not allowed to kick other players."
	noticeKickFailed = "Could not kick %s, try again later."
)

// join validates nickname, checks it against the directory and adds the
// connection to the room.
func (r *Room) join(conn internal.ConnID, nickname string) {
	if _, joined := r.byConn[conn]; joined {
		return
	}

	switch {
	case nickname == r.cfg.SystemName:
		r.rejectNickname(conn, feedbackReserved)
		return
	case !utils.IsUsername(nickname, r.cfg.MaxNicknameLen):
		r.rejectNickname(conn, feedbackInvalid)
		return
	case r.taken(nickname):
		r.rejectNickname(conn, feedbackTaken)
		return
	}

	await(r, func(ctx context.Context) (bool, error) {
		return r.deps.Directory.Exists(ctx, nickname)
	}, func(exists bool, err error) {
		logger := r.logger.With().Str("conn", string(conn)).Str("nickname", nickname).Logger()

		// The connection may have dropped, or joined under another name,
		// while the directory was answering.
		if !r.deps.Transport.IsAlive(conn) {
			if err != nil {
				logger.Warn().Err(err).Msg("directory lookup failed for a closed connection")
			}
			return
		}
		if err != nil {
			logger.Warn().Err(err).Msg("directory lookup failed")
			r.rejectNickname(conn, feedbackLookupFailed)
			return
		}
		if exists {
			r.rejectNickname(conn, feedbackRegistered)
			return
		}
		if _, joined := r.byConn[conn]; joined {
			return
		}
		if r.taken(nickname) {
			r.rejectNickname(conn, feedbackTaken)
			return
		}

		r.claim(conn, nickname, false)
	})
}

// joinRegistered adds a connection whose account was authenticated by the
// HTTP layer. There is nothing to look up.
func (r *Room) joinRegistered(conn internal.ConnID, nickname string) {
	if _, joined := r.byConn[conn]; joined || !r.deps.Transport.IsAlive(conn) {
		return
	}
	if r.taken(nickname) {
		r.rejectNickname(conn, feedbackTaken)
		return
	}
	r.claim(conn, nickname, true)
}

func (r *Room) taken(nickname string) bool {
	_, ok := r.byNick[nickname]
	return ok
}

func (r *Room) rejectNickname(conn internal.ConnID, feedback string) {
	r.send(conn, internal.EventNickname, feedback)
}

func (r *Room) claim(conn internal.ConnID, nickname string, registered bool) {
	r.byNick[nickname] = conn
	r.byConn[conn] = nickname
	r.deps.Transport.Join(conn, r.name)
	r.addUser(conn, nickname, registered)
}

// addUser creates the record of a freshly claimed nickname and announces it.
func (r *Room) addUser(conn internal.ConnID, nickname string, registered bool) {
	r.users[nickname] = internal.NewUserRecord(nickname, registered)
	r.order = append(r.order, nickname)
	r.totalUsers++

	r.logger.Info().Str("nickname", nickname).Bool("registered", registered).Int("users", r.totalUsers).Msg("user joined")

	usersData := r.usersData()
	r.broadcastOverview()
	r.send(conn, internal.EventReady, internal.ReadyData{
		TracksCount: r.tracksCount,
		UsersData:   usersData,
		Nickname:    nickname,
		LoggedIn:    registered,
		State: internal.ReadyState{
			PreviewURL: r.track.PreviewURL,
			TimeLeft:   r.songTimeLeft.Milliseconds(),
			Status:     r.status,
		},
	})
	r.broadcastExcept(conn, internal.EventNewUser, internal.UserEventData{
		Nickname:  nickname,
		UsersData: usersData,
	})
}

// removeUser drops a player from the room.
func (r *Room) removeUser(nickname string) {
	conn, ok := r.byNick[nickname]
	if !ok {
		return
	}
	delete(r.byNick, nickname)
	delete(r.byConn, conn)
	delete(r.users, nickname)
	if i := slices.Index(r.order, nickname); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	r.totalUsers--

	r.logger.Info().Str("nickname", nickname).Int("users", r.totalUsers).Msg("user left")

	r.broadcastOverview()
	r.broadcast(internal.EventUserLeft, internal.UserEventData{
		Nickname:  nickname,
		UsersData: r.usersData(),
	})
}

// kick disconnects target, and bans its address first when ban is set.
// The record goes away through the disconnect path like any other leave.
func (r *Room) kick(conn internal.ConnID, target, why string, ban time.Duration) {
	executor, ok := r.byConn[conn]
	if !ok {
		return
	}

	await(r, func(ctx context.Context) (int, error) {
		return r.deps.Directory.RoleOf(ctx, executor)
	}, func(role int, err error) {
		if r.byNick[executor] != conn {
			return
		}
		logger := r.logger.With().Str("executor", executor).Str("target", target).Logger()
		if err != nil {
			logger.Warn().Err(err).Msg("role lookup failed")
			r.systemNotice(conn, executor, fmt.Sprintf(noticeKickFailed, target))
			return
		}
		if role < r.cfg.KickMinRole {
			r.systemNotice(conn, executor, noticeKickDenied)
			return
		}

		targetConn, ok := r.byNick[target]
		if !ok {
			return
		}
		if ban <= 0 {
			r.expel(targetConn, target, executor, why)
			return
		}

		entry := internal.Ban{
			Address:  r.deps.Transport.Address(targetConn),
			Nickname: target,
			Reason:   why,
			Duration: ban,
		}
		await(r, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, r.deps.Bans.SetBan(ctx, entry)
		}, func(_ struct{}, err error) {
			if err != nil {
				logger.Warn().Err(err).Str("address", entry.Address).Msg("failed to write ban")
			}
			if r.byNick[target] != targetConn {
				return
			}
			r.expel(targetConn, target, executor, why)
		})
	})
}

func (r *Room) expel(conn internal.ConnID, nickname, executor, why string) {
	r.logger.Info().Str("nickname", nickname).Str("executor", executor).Msg("user kicked")
	r.systemNotice(conn, nickname, utils.KickNotice(executor, why))
	r.deps.Transport.Terminate(conn)
}

// onIgnore tells target it is being ignored and acknowledges the executor.
func (r *Room) onIgnore(conn internal.ConnID, target string) {
	executor, ok := r.byConn[conn]
	if !ok {
		return
	}
	targetConn, ok := r.byNick[target]
	if !ok {
		r.send(conn, internal.EventIgnored, internal.IgnoredData{Who: target})
		return
	}
	r.systemNotice(targetConn, target, executor+" is ignoring you.")
	r.send(conn, internal.EventIgnored, internal.IgnoredData{Who: target, OK: true})
}

func (r *Room) onUnignore(conn internal.ConnID, target string) {
	executor, ok := r.byConn[conn]
	if !ok {
		return
	}
	if targetConn, ok := r.byNick[target]; ok {
		r.systemNotice(targetConn, target, executor+" has stopped ignoring you.")
	}
}
