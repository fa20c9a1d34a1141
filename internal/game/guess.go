package game

import (
	"github.com/scythe504/tunequiz-backend/internal"
)

// =============================================================================
// GUESS HANDLING
// =============================================================================

// onGuess moves the player along none -> artist|title -> both. Guesses
// outside PLAYING are late by definition and dropped.
func (r *Room) onGuess(conn internal.ConnID, guess string) {
	if r.status != internal.StatusPlaying {
		return
	}
	nickname, ok := r.byConn[conn]
	if !ok {
		return
	}
	user := r.users[nickname]
	track := r.track

	switch user.Matched {
	case internal.MatchNone:
		switch {
		case track.Artist == track.Title && r.deps.Matcher.Matches(track.Title, guess, true):
			r.onPair(conn, user, true)
		case r.matchesArtist(guess):
			r.onMatch(conn, user, internal.MatchArtist)
		case r.deps.Matcher.Matches(track.Title, guess, false):
			r.onMatch(conn, user, internal.MatchTitle)
		default:
			r.send(conn, internal.EventNoMatch, nil)
		}
	case internal.MatchArtist:
		if r.deps.Matcher.Matches(track.Title, guess, false) {
			r.onPair(conn, user, false)
			return
		}
		r.send(conn, internal.EventNoMatch, nil)
	case internal.MatchTitle:
		if r.matchesArtist(guess) {
			r.onPair(conn, user, false)
			return
		}
		r.send(conn, internal.EventNoMatch, nil)
	default:
		r.send(conn, internal.EventStopTrying, nil)
	}
}

// matchesArtist checks the main artist and the featured one, if any.
func (r *Room) matchesArtist(guess string) bool {
	if r.deps.Matcher.Matches(r.track.Artist, guess, true) {
		return true
	}
	return r.track.Feat != "" && r.deps.Matcher.Matches(r.track.Feat, guess, true)
}

// onMatch records a partial match.
func (r *Room) onMatch(conn internal.ConnID, user *internal.UserRecord, what internal.Match) {
	user.Matched = what
	user.Points++
	user.RoundPoints++

	event := internal.EventArtistMatched
	if what == internal.MatchTitle {
		event = internal.EventTitleMatched
	}
	r.send(conn, event, nil)
	r.broadcast(internal.EventUpdateUsers, r.usersData())

	if user.Registered {
		r.record(user.Nickname, internal.StatsUpdate{
			Points:    internal.IntPtr(1),
			UserScore: internal.IntPtr(user.Points),
		})
	}
}

// onPair records a full completion.
func (r *Room) onPair(conn internal.ConnID, user *internal.UserRecord, simultaneous bool) {
	r.addPointsAndStats(user, simultaneous)
	r.send(conn, internal.EventBothMatched, nil)
	r.broadcast(internal.EventUpdateUsers, r.usersData())
}

func (r *Room) addPointsAndStats(user *internal.UserRecord, simultaneous bool) {
	award := ScoreCompletion(r.finishLine, simultaneous)
	r.finishLine++

	user.Points += award.Points
	user.RoundPoints = award.RoundPoints

	stats := internal.StatsUpdate{Points: internal.IntPtr(award.Points)}
	switch award.Tier {
	case internal.TierGold:
		user.Golds++
		stats.Gold = true
	case internal.TierSilver:
		user.Silvers++
		stats.Silver = true
	case internal.TierBronze:
		user.Bronzes++
		stats.Bronze = true
	}

	user.Guessed++
	user.GuessTime = r.clock.Since(r.playStart).Milliseconds()
	user.Matched = internal.MatchBoth
	user.TotalGuessTime += user.GuessTime

	r.logger.Debug().
		Str("nickname", user.Nickname).
		Str("tier", award.Tier.String()).
		Int("points", award.Points).
		Int64("guesstime", user.GuessTime).
		Msg("track completed")

	if user.Registered {
		stats.GuessTime = internal.Int64Ptr(user.GuessTime)
		stats.UserScore = internal.IntPtr(user.Points)
		r.record(user.Nickname, stats)
	}
}
