package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/tunequiz-backend/internal"
	"github.com/scythe504/tunequiz-backend/internal/utils"
)

//go:embed schema.sql
var schema string

// PostgresStore implements every store concern on one connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return &PostgresStore{
		pool:   pool,
		logger: log.With().Str("module", "store.postgres").Logger(),
	}, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

// Migrate creates the tables that do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.Info().Msg("schema applied")
	return nil
}

// ImportTracks adds entries to the catalog, appending each one to the end of
// its room. Tracks already in a room keep their position.
func (s *PostgresStore) ImportTracks(ctx context.Context, entries []utils.CatalogEntry) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(`
				INSERT INTO tracks (id, artist_name, track_name, preview_url, artwork_url, track_view_url)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET
					artist_name = EXCLUDED.artist_name,
					track_name = EXCLUDED.track_name,
					preview_url = EXCLUDED.preview_url,
					artwork_url = EXCLUDED.artwork_url,
					track_view_url = EXCLUDED.track_view_url`,
				e.ID, e.ArtistName, e.TrackName, e.PreviewURL, e.ArtworkURL, e.ViewURL)
			batch.Queue(`
				INSERT INTO room_tracks (room, position, track_id)
				SELECT $1, COALESCE(MAX(position) + 1, 0), $2 FROM room_tracks WHERE room = $1
				ON CONFLICT (room, track_id) DO NOTHING`,
				e.Room, e.ID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to import %d tracks: %w", len(entries), err)
		}
		s.logger.Info().Int("tracks", len(entries)).Msg("catalog imported")
		return nil
	})
}

// =============================================================================
// CATALOG
// =============================================================================

func (s *PostgresStore) Count(ctx context.Context, room string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM room_tracks WHERE room = $1`, room).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tracks of room %s: %w", room, err)
	}
	return n, nil
}

func (s *PostgresStore) TrackAt(ctx context.Context, room string, index int) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT track_id FROM room_tracks
		WHERE room = $1
		ORDER BY position
		OFFSET $2 LIMIT 1`, room, index).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("track %d of room %s: %w", index, room, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("track %d of room %s: %w", index, room, err)
	}
	return id, nil
}

func (s *PostgresStore) Metadata(ctx context.Context, trackID string) (internal.TrackMetadata, error) {
	var m internal.TrackMetadata
	err := s.pool.QueryRow(ctx, `
		SELECT artist_name, track_name, preview_url, artwork_url, track_view_url
		FROM tracks WHERE id = $1`, trackID).
		Scan(&m.ArtistName, &m.TrackName, &m.PreviewURL, &m.ArtworkURL, &m.ViewURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return m, fmt.Errorf("track %s: %w", trackID, ErrNotFound)
	}
	if err != nil {
		return m, fmt.Errorf("track %s: %w", trackID, err)
	}
	return m, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

// AddUser creates an account, or updates its role.
func (s *PostgresStore) AddUser(ctx context.Context, nickname string, role int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (nickname, role) VALUES ($1, $2)
		ON CONFLICT (nickname) DO UPDATE SET role = EXCLUDED.role`, nickname, role)
	if err != nil {
		return fmt.Errorf("add user %s: %w", nickname, err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, nickname string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE nickname = $1)`, nickname).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup user %s: %w", nickname, err)
	}
	return exists, nil
}

// RoleOf returns 0 for unknown nicknames.
func (s *PostgresStore) RoleOf(ctx context.Context, nickname string) (int, error) {
	var role int
	err := s.pool.QueryRow(ctx, `SELECT role FROM users WHERE nickname = $1`, nickname).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("role of %s: %w", nickname, err)
	}
	return role, nil
}

// =============================================================================
// BANS
// =============================================================================

func (s *PostgresStore) SetBan(ctx context.Context, ban internal.Ban) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bans (address, nickname, reason, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			reason = EXCLUDED.reason,
			expires_at = EXCLUDED.expires_at`,
		ban.Address, ban.Nickname, ban.Reason, time.Now().Add(ban.Duration))
	if err != nil {
		return fmt.Errorf("ban %s: %w", ban.Address, err)
	}
	return nil
}

// TTL returns how long address stays banned, zero when it is not.
func (s *PostgresStore) TTL(ctx context.Context, address string) (time.Duration, error) {
	var expires time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT expires_at FROM bans
		WHERE address = $1 AND expires_at > now()`, address).Scan(&expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ban of %s: %w", address, err)
	}
	return max(time.Until(expires), 0), nil
}

func (s *PostgresStore) PurgeExpiredBans(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bans WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge bans: %w", err)
	}
	return tag.RowsAffected(), nil
}

// =============================================================================
// STATS
// =============================================================================

func (s *PostgresStore) Record(ctx context.Context, nickname string, update internal.StatsUpdate) error {
	d := deltaOf(update)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_stats AS s (
			nickname, points, best_score, guessed, total_guess_time, best_guess_time,
			golds, silvers, bronzes, first_places, second_places, third_places
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (nickname) DO UPDATE SET
			points = s.points + EXCLUDED.points,
			best_score = GREATEST(s.best_score, EXCLUDED.best_score),
			guessed = s.guessed + EXCLUDED.guessed,
			total_guess_time = s.total_guess_time + EXCLUDED.total_guess_time,
			best_guess_time = LEAST(s.best_guess_time, EXCLUDED.best_guess_time),
			golds = s.golds + EXCLUDED.golds,
			silvers = s.silvers + EXCLUDED.silvers,
			bronzes = s.bronzes + EXCLUDED.bronzes,
			first_places = s.first_places + EXCLUDED.first_places,
			second_places = s.second_places + EXCLUDED.second_places,
			third_places = s.third_places + EXCLUDED.third_places`,
		nickname, d.points, d.bestScore, d.guessed, d.guessTime, d.bestGuessTime,
		d.golds, d.silvers, d.bronzes, d.firsts, d.seconds, d.thirds)
	if err != nil {
		return fmt.Errorf("record stats of %s: %w", nickname, err)
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context, nickname string) (UserStats, error) {
	st := UserStats{Nickname: nickname}
	var best *int64
	err := s.pool.QueryRow(ctx, `
		SELECT points, best_score, guessed, total_guess_time, best_guess_time,
			golds, silvers, bronzes, first_places, second_places, third_places
		FROM user_stats WHERE nickname = $1`, nickname).
		Scan(&st.Points, &st.BestScore, &st.Guessed, &st.TotalGuessTime, &best,
			&st.Golds, &st.Silvers, &st.Bronzes, &st.FirstPlaces, &st.SecondPlaces, &st.ThirdPlaces)
	if errors.Is(err, pgx.ErrNoRows) {
		return st, fmt.Errorf("stats of %s: %w", nickname, ErrNotFound)
	}
	if err != nil {
		return st, fmt.Errorf("stats of %s: %w", nickname, err)
	}
	if best != nil {
		st.BestGuessTime = *best
	}
	return st, nil
}
