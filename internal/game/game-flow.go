package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/scythe504/tunequiz-backend/internal"
	"github.com/scythe504/tunequiz-backend/internal/utils"
)

// =============================================================================
// GAME FLOW - TRACK CYCLE
// =============================================================================

// initialize reads the catalog size and loads the first track.
func (r *Room) initialize() {
	await(r, func(ctx context.Context) (int, error) {
		return r.deps.Catalog.Count(ctx, r.name)
	}, func(count int, err error) {
		if err != nil {
			r.fail(fmt.Errorf("count tracks of %s: %w", r.name, err))
			return
		}
		if count <= 0 {
			r.fail(fmt.Errorf("%s: %w", r.name, ErrNoTracks))
			return
		}
		r.tracksCount = count
		r.logger.Info().Int("tracks", count).Msg("catalog loaded")
		r.loadTrack()
	})
}

// loadTrack draws a track that was not played recently, fetches its
// metadata and tells the clients to preload it.
func (r *Room) loadTrack() {
	r.status = internal.StatusLoading
	r.generation++
	gen := r.generation

	// A catalog smaller than the played list would never yield a new track.
	for r.played.len() > 0 && r.played.len() >= r.tracksCount {
		r.logger.Warn().Int("tracks", r.tracksCount).Int("played", r.played.len()).Msg("catalog exhausted, forgetting the oldest run")
		r.played.evictRun()
	}

	index := r.randN(r.tracksCount)
	await(r, func(ctx context.Context) (string, error) {
		return r.deps.Catalog.TrackAt(ctx, r.name, index)
	}, func(id string, err error) {
		if gen != r.generation {
			return
		}
		if err != nil {
			r.fail(fmt.Errorf("track %d of %s: %w", index, r.name, err))
			return
		}
		if r.played.contains(id) {
			r.logger.Debug().Str("track", id).Msg("track played recently, drawing again")
			r.loadTrack()
			return
		}
		r.played.push(id)
		r.fetchTrack(gen, id)
	})
}

func (r *Room) fetchTrack(gen uint64, id string) {
	await(r, func(ctx context.Context) (internal.TrackMetadata, error) {
		return r.deps.Catalog.Metadata(ctx, id)
	}, func(meta internal.TrackMetadata, err error) {
		if gen != r.generation {
			return
		}
		if err != nil {
			r.fail(fmt.Errorf("metadata of track %s: %w", id, err))
			return
		}

		title := strings.ToLower(meta.TrackName)
		r.track = internal.Track{
			ID:            id,
			Artist:        strings.ToLower(meta.ArtistName),
			Title:         title,
			Feat:          utils.ExtractFeat(title),
			TrackMetadata: meta,
		}

		r.logger.Debug().Str("track", id).Uint64("generation", gen).Msg("track loaded")

		r.schedule(r.cfg.PreloadDelay, r.playTrack)
		r.broadcast(internal.EventLoadTrack, internal.LoadTrackData{PreviewURL: meta.PreviewURL})
	})
}

// playTrack starts the countdown of the loaded track.
func (r *Room) playTrack() {
	r.status = internal.StatusPlaying
	r.songCounter++

	now := r.clock.Now()
	r.playStart = now
	r.startTimer(now.Add(r.cfg.RoundDuration))
	r.schedule(r.cfg.RoundDuration, r.revealTrack)

	r.logger.Debug().Int("counter", r.songCounter).Int("tot", r.cfg.TracksPerRun).Msg("track playing")

	r.broadcast(internal.EventPlayTrack, internal.PlayTrackData{
		Counter: r.songCounter,
		Tot:     r.cfg.TracksPerRun,
		Users:   r.usersData(),
	})
}

// revealTrack discloses the answer and moves on to the next track, or ends
// the run after its last one.
func (r *Room) revealTrack() {
	r.broadcast(internal.EventTrackInfo, internal.TrackInfoData{
		ArtworkURL: r.track.ArtworkURL,
		ArtistName: r.track.ArtistName,
		TrackName:  r.track.TrackName,
		ViewURL:    r.track.ViewURL,
	})

	r.finishLine = 1

	if r.songCounter < r.cfg.TracksPerRun {
		r.resetPoints(true)
		r.loadTrack()
		return
	}

	r.status = internal.StatusEnding
	r.schedule(r.cfg.EndingDelay, r.gameOver)
}

// gameOver publishes the podium and starts a new game.
func (r *Room) gameOver() {
	records := make([]internal.UserRecord, 0, len(r.order))
	for _, nickname := range r.order {
		records = append(records, *r.users[nickname])
	}
	podium := Podium(records)

	for i, u := range podium {
		if u.Registered {
			r.record(u.Nickname, internal.StatsUpdate{PodiumPlace: internal.IntPtr(i + 1)})
		}
	}

	r.resetPoints(false)
	r.songCounter = 0

	if r.played.full() {
		r.played.evictRun()
	}

	r.status = internal.StatusStarting
	r.schedule(r.cfg.RestartDelay, r.loadTrack)

	r.logger.Info().Int("podium", len(podium)).Msg("game over")
	r.broadcast(internal.EventGameOver, podium)
}

// resetPoints clears round state, and game state too unless roundOnly.
func (r *Room) resetPoints(roundOnly bool) {
	for _, u := range r.users {
		if roundOnly {
			u.ResetRound()
		} else {
			u.ResetGame()
		}
	}
}
