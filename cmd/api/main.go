package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fastprodman/playerauction/internal/api"
	"github.com/fastprodman/playerauction/internal/auction"
	"github.com/fastprodman/playerauction/internal/infra/logging"
	"github.com/fastprodman/playerauction/internal/infra/pgutils"
	"github.com/fastprodman/playerauction/internal/repos/sales"
	salespg "github.com/fastprodman/playerauction/internal/repos/sales/postgres"
	"github.com/fastprodman/playerauction/internal/services/auctions"
	"github.com/fastprodman/playerauction/pkg/envconf"
	"github.com/fastprodman/playerauction/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	// An empty DSN runs the auction without the sales archive.
	var archive sales.Sales

	if cfg.Postgres.DSN != "" {
		dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}

		shutdownqueue.Add(func(context.Context) error {
			slog.Info("Close db")

			return dbConns.Close()
		})

		archive = salespg.New(dbConns)
	} else {
		slog.Warn("PG_DSN empty, sales archive disabled")
	}

	gate := auction.NewGate(cfg.AudienceMaxCapacity)
	auctionSrv := auctions.New(gate, archive)

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, auctionSrv)

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "audience_capacity", cfg.AudienceMaxCapacity)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
