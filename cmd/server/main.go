package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/scythe504/tunequiz-backend/internal/config"
	"github.com/scythe504/tunequiz-backend/internal/game"
	"github.com/scythe504/tunequiz-backend/internal/match"
	"github.com/scythe504/tunequiz-backend/internal/server"
	"github.com/scythe504/tunequiz-backend/internal/store"
	"github.com/scythe504/tunequiz-backend/internal/utils"
	"github.com/scythe504/tunequiz-backend/internal/websocket"
)

// backend is everything the rooms and the HTTP layer persist through.
type backend interface {
	game.Catalog
	game.Directory
	game.BanStore
	game.Stats
	server.BanChecker
	store.BanPurger
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("Server exited gracefully")
}

func setupLogger(cfg *config.Config) {
	if cfg.Mode == "debug" {
		// Human-friendly output for terminal; JSON otherwise.
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func openBackend(ctx context.Context, cfg *config.Config) (backend, func(), error) {
	switch cfg.Catalog.Source {
	case config.CatalogCSV:
		s, err := store.NewMemoryStoreFromFile(cfg.Catalog.CSVPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		s, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		// Seed the catalog from the CSV file when one is configured.
		if cfg.Catalog.CSVPath != "" {
			entries, err := utils.ReadTracksFile(cfg.Catalog.CSVPath)
			if err != nil {
				log.Warn().Err(err).Str("file", cfg.Catalog.CSVPath).Msg("skipping catalog import")
			} else if err := s.ImportTracks(ctx, entries); err != nil {
				s.Close()
				return nil, nil, fmt.Errorf("import tracks: %w", err)
			}
		}
		return s, s.Close, nil
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, closeDB, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeDB()

	hub := websocket.NewHub(websocket.Config{
		ReadLimit:         cfg.ReadLimit,
		PingPeriod:        cfg.PingPeriod,
		TrustedUserHeader: cfg.TrustedUserHeader,
	})

	manager := game.NewManager(cfg.Rooms, cfg.Game(), game.Deps{
		Catalog:   db,
		Directory: db,
		Bans:      db,
		Stats:     db,
		Matcher:   match.New(),
		Transport: hub,
	})

	if err := store.StartBanPurge(ctx, db, cfg.BanPurgeInterval, nil); err != nil {
		return fmt.Errorf("start ban purge: %w", err)
	}

	srv := server.New(cfg.Port, manager, hub, db).HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return manager.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Strs("rooms", cfg.Rooms).Msg("TuneQuiz server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})
	return g.Wait()
}
