package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	f "rvcalc/data/files"
	r "rvcalc/data/repos"
	cfg "rvcalc/service/config"
	c "rvcalc/service/core"
)

func main() {
	// initialize context and signal handler, listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// load in environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	configPath := os.Getenv("RV_CONFIG")
	if configPath == "" {
		configPath = cfg.DefaultPath
	}

	config, err := cfg.NewConfig(configPath)
	if err == nil {
		err = run(ctx, config)
	}
	stop()

	// only exit here, every deferred close inside run has already happened
	if err != nil {
		log.Printf("Exiting with error: %v", err)
		os.Exit(1)
	}
}

// run wires the configured source and sinks, calculates every year and serves results if enabled.
// sinks opened before a failure are closed before run returns
func run(ctx context.Context, config *cfg.Config) error {
	selector, err := c.RollSelectorByName(config.RollSelector)
	if err != nil {
		return fmt.Errorf("failed to get roll selector: %w", err)
	}

	sc := c.ServiceContext{
		Context:  ctx,
		Settings: config.Settings(),
		Source:   f.NewTickFileLoader(config.DataDir),
		Cleaner:  c.NewCleaner(selector),
	}

	// sinks are written in the configured order
	for _, sink := range config.Sinks {
		switch sink {
		case cfg.CSVSink:
			sc.Sinks = append(sc.Sinks, f.NewCSVWriter(config.ResultsDir))

		case cfg.PostgresSink:
			postgresConnection, err := r.GetPostgresConnection(ctx, config.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer postgresConnection.Close()

			if err := postgresConnection.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}

			sc.Sinks = append(sc.Sinks, postgresConnection)
			sc.RunHistory = postgresConnection
			sc.Store = postgresConnection

		case cfg.SQLiteSink:
			sqlite, err := r.OpenSQLite(ctx, config.SQLitePath)
			if err != nil {
				return fmt.Errorf("failed to open sqlite database: %w", err)
			}
			defer sqlite.Close()

			sc.Sinks = append(sc.Sinks, sqlite)
			if sc.Store == nil {
				sc.Store = sqlite
			}
		}
	}

	start := time.Now()
	log.Printf("Calculating variances for years %v, intervals %v", config.Years, config.Intervals)
	results, runErr := sc.RunYears(config.Years)
	for _, res := range results {
		if res.Err != nil {
			log.Printf("\t %d: failed after %v", res.Year, res.Elapsed)
			continue
		}
		log.Printf("\t %d: %d rows in %v", res.Year, res.Rows, res.Elapsed)
	}
	log.Printf("Calculation finished (time: %v)", time.Since(start))

	if runErr != nil {
		log.Printf("One or more years failed: %v", runErr)
	}

	if config.Server.Enabled && ctx.Err() == nil {
		if err := serve(ctx, sc, config.Server.Addr); err != nil {
			return errors.Join(runErr, err)
		}
	}

	return runErr
}

// serve blocks until the context is done or the server fails to listen
func serve(ctx context.Context, sc c.ServiceContext, addr string) error {
	// get http server, makes all of the endpoints and routes
	s := c.GetHttpServer(sc, addr)

	// start http server in goroutine, a listen failure comes back on the channel
	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Starting results server on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// golang channel, will wait here until the context is closed (ie, ctrl+C)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.Println("Received shutdown signal, shutting down gracefully...")

	// this gives the server 10 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped successfully")
	return nil
}
