package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := LoadConfig(os.Args[1:], ".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Mode == "client" {
		err = NewGameClient(cfg, nil).Run(ctx)
	} else {
		err = runServer(ctx, cfg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s: %v", cfg.Mode, err)
	}
}

func runServer(ctx context.Context, cfg Config) error {
	var db *DB
	var journal *Analytics
	if cfg.DBPath != "" {
		var err error
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		journal = NewAnalytics(db)
		defer journal.Stop()
	}

	diag := NewLogDiagnostics(nil, "")
	sessions := NewSessionManager(cfg.WorldConfig(diag), db, journal)
	hub := NewHub(sessions, NewAuth(db), db, journal, cfg.PublicURL)
	server := &http.Server{Addr: cfg.Addr, Handler: SetupRoutes(hub)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run()
		return nil
	})
	g.Go(func() error {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")
		hub.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
