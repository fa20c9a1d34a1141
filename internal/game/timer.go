package game

import "time"

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// schedule runs step on the room loop after d. The step is dropped if a new
// track started loading in the meantime.
func (r *Room) schedule(d time.Duration, step func()) {
	gen := r.generation
	r.clock.AfterFunc(d, func() {
		r.post(func() {
			if gen != r.generation {
				r.logger.Debug().Uint64("generation", gen).Msg("dropping stale timer")
				return
			}
			step()
		})
	})
}

// startTimer keeps songTimeLeft up to date until less than one tick is left.
func (r *Room) startTimer(deadline time.Time) {
	r.deadline = deadline
	r.songTimeLeft = r.deadline.Sub(r.clock.Now())
	r.schedule(r.cfg.TickInterval, r.tick)
}

func (r *Room) tick() {
	r.songTimeLeft = max(r.deadline.Sub(r.clock.Now()), 0)
	if r.songTimeLeft < r.cfg.TickInterval {
		return
	}
	r.schedule(r.cfg.TickInterval, r.tick)
}
