package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielavelez12/goupromo/internal/cart"
	"github.com/danielavelez12/goupromo/internal/config"
	"github.com/danielavelez12/goupromo/internal/db"
	"github.com/danielavelez12/goupromo/internal/events"
	"github.com/danielavelez12/goupromo/internal/feed"
	httpapi "github.com/danielavelez12/goupromo/internal/http"
	"github.com/danielavelez12/goupromo/internal/store"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[cart-service] ", log.LstdFlags|log.Lshortfile)

	var (
		snapshots cart.Store
		sequencer events.Sequencer = events.NewMemorySequencer()
	)

	switch cfg.StoreBackend {
	case "postgres":
		if cfg.DBDSN == "" {
			logger.Fatal("STORE_BACKEND=postgres requires CART_DB_DSN")
		}
		if err := db.RunMigrations(cfg.DBDSN, logger); err != nil {
			logger.Fatalf("run migrations: %v", err)
		}
		database, err := db.Open(cfg.DBDSN)
		if err != nil {
			logger.Fatalf("open db: %v", err)
		}
		defer database.Close()
		snapshots = store.NewPostgresStore(database)
		sequencer = events.NewSequenceRepository(database)
	case "file":
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			logger.Fatalf("open file store: %v", err)
		}
		snapshots = fs
	case "memory":
		snapshots = store.NewMemoryStore()
	default:
		logger.Fatalf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	manager := cart.NewManager(snapshots, logger)

	var publisher events.CheckoutPublisher = &events.LogPublisher{Logger: logger}
	var closePublisher func() error
	if cfg.RabbitURL != "" {
		conn, err := events.DialRabbit(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("dial rabbit: %v", err)
		}
		defer conn.Close()

		rp, err := events.NewRabbitPublisher(conn, sequencer)
		if err != nil {
			logger.Fatalf("create checkout publisher: %v", err)
		}
		publisher = rp
		closePublisher = rp.Close
	}

	var offers httpapi.OfferLister
	if cfg.FeedURL != "" {
		client, err := feed.NewClient(cfg.FeedURL, cfg.FeedTimeout)
		if err != nil {
			logger.Fatalf("create feed client: %v", err)
		}
		offers = client
	}

	handler := httpapi.NewRouter(manager, publisher, offers, cfg.CORSAllowOrigins, logger)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 5 * time.Second,
		// No write timeout: the SSE endpoint holds its connection open.
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("cart-service listening on :%s (store=%s)", cfg.Port, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	if closePublisher != nil {
		if err := closePublisher(); err != nil {
			logger.Printf("publisher close error: %v", err)
		}
	}
}
