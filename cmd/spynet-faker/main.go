// Command spynet-faker serves a simulated scanning engine for local
// development: the REST command API plus the scan_update push channel,
// backed by generated hosts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rival420/Spynet2/internal/config"
	"github.com/Rival420/Spynet2/internal/fakeengine"
	"github.com/Rival420/Spynet2/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to spynet.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "spynet-faker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closer, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	eng, err := fakeengine.New(fakeengine.Options{
		Network:           cfg.Faker.Network,
		Hosts:             cfg.Faker.Hosts,
		AckPortScans:      cfg.Faker.AckPortScans,
		ScanDelay:         cfg.Faker.ScanDelay,
		BroadcastInterval: cfg.Faker.BroadcastInterval,
	}, log.WithComponent("faker"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Faker.Listen,
		Handler:           eng.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("listen", cfg.Faker.Listen).Str("network", cfg.Faker.Network).
			Int("hosts", cfg.Faker.Hosts).Bool("ack_port_scans", cfg.Faker.AckPortScans).
			Msg("Fake engine listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Broadcast loop stopped")
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
