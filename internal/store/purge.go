package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type BanPurger interface {
	PurgeExpiredBans(ctx context.Context) (int64, error)
}

// StartBanPurge deletes expired bans every interval until ctx is done.
// A nil clock means the wall clock.
func StartBanPurge(ctx context.Context, purger BanPurger, interval time.Duration, clock clockwork.Clock) error {
	logger := log.With().Str("module", "store.purge").Logger()

	opts := []gocron.SchedulerOption{}
	if clock != nil {
		opts = append(opts, gocron.WithClock(clock))
	}
	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := purger.PurgeExpiredBans(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to purge bans")
				return
			}
			if n > 0 {
				logger.Info().Int64("purged", n).Msg("expired bans purged")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule ban purge: %w", err)
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			logger.Warn().Err(err).Msg("ban purge scheduler did not stop cleanly")
		}
	}()
	return nil
}
