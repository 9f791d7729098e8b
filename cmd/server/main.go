/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the habit engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, merge optional YAML config
  2. Initialize SQLite store
  3. Wire the engine (cache, queue, network monitor, sync coordinator)
  4. Start the periodic sync scheduler
  5. Start HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: habits.db)
            Use ":memory:" for an in-memory database
  -config   Optional YAML config file
  -logfile  Log to a rotating file instead of stderr
  -remote   Remote API base URL for action replay
  -probe    Connectivity probe URL

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler, probe, and engine
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/habits.db"

  # Run with a remote endpoint for queue replay
  ./server -remote="https://api.example.com"

SEE ALSO:
  - config.go: YAML config loading
  - api/server.go: Router configuration
  - engine/engine.go: Facade wiring
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/noor/habit-engine/api"
	"github.com/noor/habit-engine/engine"
	"github.com/noor/habit-engine/habits"
	"github.com/noor/habit-engine/store/sqlite"
	"github.com/noor/habit-engine/transport"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	configPath := flag.String("config", "", "YAML config file")
	logFile := flag.String("logfile", "", "log to a rotating file")
	remoteURL := flag.String("remote", "", "remote API base URL")
	probeURL := flag.String("probe", "", "connectivity probe URL")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the file
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *remoteURL != "" {
		cfg.RemoteURL = *remoteURL
	}
	if *probeURL != "" {
		cfg.ProbeURL = *probeURL
	}

	// Logging
	logger := log.Default()
	if cfg.LogFile != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
		})
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Connectivity probe and remote processor
	probe := transport.NewProbe(cfg.ProbeURL, cfg.ProbeInterval)
	defer probe.Close()

	var process engine.ActionProcessor
	if cfg.RemoteURL != "" {
		process = transport.NewProcessor(cfg.RemoteURL).Process
	} else {
		// No remote configured: actions drain locally. Useful for
		// development and for running the engine as a pure local cache.
		process = func(ctx context.Context, action engine.OfflineAction) error {
			logger.Printf("[Sync] no remote configured, dropping action %s", action.ID)
			return nil
		}
	}

	// Wire the engine
	eng := engine.New(store, probe, process, logger)
	eng.Start()
	defer eng.Stop()

	ledger := habits.NewLedger(store, logger)

	// Periodic sync scheduler
	scheduler := engine.NewScheduler(eng)
	scheduler.CheckInterval = cfg.SyncInterval
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	handler := api.NewHandler(eng, ledger)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Printf("🚀 Server starting on http://localhost:%d", cfg.Port)
		logger.Printf("📊 API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server stopped")
}
