// cmd/rawdash-server/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aaronwald/rawdash/internal/api"
	"github.com/aaronwald/rawdash/internal/data"
	"github.com/aaronwald/rawdash/internal/history"
	"github.com/aaronwald/rawdash/internal/types"
	_ "github.com/lib/pq"
)

func main() {
	dataPath := os.Getenv("RAWDASH_DATA_PATH")
	if dataPath == "" {
		log.Fatal("RAWDASH_DATA_PATH required")
	}

	apiKey := os.Getenv("RAWDASH_API_KEY")
	if apiKey == "" {
		log.Printf("RAWDASH_API_KEY not set, serving without authentication")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := data.NewStorage(dataPath)
	if err != nil {
		log.Fatalf("creating storage: %v", err)
	}

	catalog := data.NewCatalog(storage)
	server := api.NewServer(storage, catalog, apiKey)

	// Optional: Connect to PostgreSQL for scan history
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			log.Fatalf("connecting to database: %v", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("pinging database: %v", err)
		}

		store := history.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("preparing history schema: %v", err)
		}
		catalog.OnScan(func(ctx context.Context, p *types.SummaryPayload) {
			id, err := store.RecordScan(ctx, p)
			if err != nil {
				log.Printf("recording scan: %v", err)
				return
			}
			log.Printf("recorded scan %d (%d checks)", id, len(p.Checks))
		})
		server.SetHistoryStore(store)
		log.Printf("history endpoints enabled (PostgreSQL connected)")
	}

	if watchEnabled(os.Getenv("RAWDASH_WATCH")) {
		watcher, err := data.NewWatcher(storage.BasePath(), func(name string) {
			catalog.Invalidate()
		})
		if err != nil {
			log.Fatalf("watching %s: %v", dataPath, err)
		}
		defer watcher.Close()
		go watcher.Run(ctx)
		log.Printf("watching %s for changes", dataPath)
	}

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("rawdash-server serving %s on :%s", dataPath, port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// watchEnabled parses RAWDASH_WATCH; unset means on
func watchEnabled(v string) bool {
	if v == "" {
		return true
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("ignoring invalid RAWDASH_WATCH %q", v)
		return true
	}
	return on
}
