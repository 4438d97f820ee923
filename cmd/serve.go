package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kodekulture/gissa-server/game"
	"github.com/kodekulture/gissa-server/handler"
	"github.com/kodekulture/gissa-server/internal/config"
	"github.com/kodekulture/gissa-server/internal/vocab"
	"github.com/kodekulture/gissa-server/repository"
	"github.com/kodekulture/gissa-server/repository/badgr"
	"github.com/kodekulture/gissa-server/repository/temp"
	"github.com/kodekulture/gissa-server/service"
)

func serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on, overrides server.port")
	return cmd
}

func serve(cfg config.Config) error {
	done := make(chan struct{})
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, closeCache, err := newService(appCtx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()
	defer srv.Stop()

	h := handler.New(srv, game.Mode(cfg.Mode))
	go shutdown(h, done)
	if err = h.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

// newService loads the vocabulary and wires the rank index caches.
// The returned func closes the disk cache.
func newService(ctx context.Context, cfg config.Config) (*service.Service, func(), error) {
	store, nouns, err := vocab.Open(cfg.Embeddings, cfg.Nouns, cfg.Scale)
	if err != nil {
		return nil, nil, err
	}

	closeCache := func() {}
	var next repository.IndexCache
	if cfg.CachePath != "" {
		db, err := getCacher(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
		next = badgr.New(db)
		closeCache = func() {
			if err := db.Close(); err != nil {
				zlog.Err(err).Caller().Msg("failed to close cache")
			}
		}
	}
	srv, err := service.New(ctx, store, nouns, temp.New(cfg.CacheSize, next), service.Options{
		Location: cfg.Location,
		Closest:  cfg.Closest,
		RoomTTL:  cfg.RoomTTL,
	})
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return srv, closeCache, nil
}

func getCacher(path string) (*badger.DB, error) {
	// the directory is created if it doesn't exist
	return badger.Open(badger.DefaultOptions(path))
}

func shutdown(s *handler.Handler, done chan<- struct{}) {
	// Wait for interrupt signal to gracefully shutdown the server with
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-sig
	zlog.Info().Msg("shutdown started")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		zlog.Err(err).Caller().Msg("shutdown failed")
	}
	zlog.Info().Msg("shutdown complete")
	close(done)
}
