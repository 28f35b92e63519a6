// Package main runs the account service API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/account-service/cmd/httpserver"
	"github.com/go-petr/account-service/internal/middleware"
	"github.com/go-petr/account-service/pkg/configpkg"
	"github.com/go-petr/account-service/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	var db *sql.DB

	if config.DBDriver != httpserver.DriverMemory {
		db, err = dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}

		defer db.Close()
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if server.Registry != nil && config.LockSweepInterval > 0 {
		go server.Registry.Run(logger.WithContext(ctx), config.LockSweepInterval)
	}

	srv := &http.Server{
		Addr:    config.ServerAddress,
		Handler: server,
	}

	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("cannot shut down server gracefully")
		}
	}()

	logger.Info().
		Str("address", config.ServerAddress).
		Str("db_driver", config.DBDriver).
		Str("lock_strategy", config.LockStrategy).
		Msg("ACCOUNT SERVICE HAS STARTED")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("cannot start server")
	}

	<-stopped

	logger.Info().Msg("ACCOUNT SERVICE HAS STOPPED")
}
