package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dosewatch/dosewatch/internal/api"
	"github.com/dosewatch/dosewatch/internal/app/estimator"
	"github.com/dosewatch/dosewatch/internal/domain"
	"github.com/dosewatch/dosewatch/internal/health"
	_ "github.com/dosewatch/dosewatch/internal/infra/metrics" // Register Prometheus metrics
	"github.com/dosewatch/dosewatch/internal/infra/sqlite"
)

// Daemon is the core dosewatch runtime. It wires together all services.
type Daemon struct {
	Config    Config
	DB        *sqlite.DB
	Estimator *estimator.Estimator
	Server    *api.Server
	Health    *health.Checker
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = dosewatchHome()
	}

	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := seedReferences(db); err != nil {
		log.Printf("[daemon] WARNING: reference seeding failed: %v", err)
	}

	est := estimator.New()

	srv := api.NewServer(db, est)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	d := &Daemon{
		Config:    cfg,
		DB:        db,
		Estimator: est,
		Server:    srv,
		Health:    health.NewChecker(db, dataDir),
	}
	srv.SetHealthChecker(d.Health)

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("dosewatch serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// seedReferences loads the built-in reference entries. Upserts are
// idempotent, so this is safe to run on every start; user-imported
// entries with other names are untouched.
func seedReferences(db *sqlite.DB) error {
	for _, e := range builtinReferences {
		if err := db.UpsertReference(e); err != nil {
			return err
		}
	}
	return nil
}

// builtinReferences is a small starter set. The description text is what
// the duration miner reads, so the phrasing matters more than prose
// quality.
var builtinReferences = []domain.ReferenceEntry{
	{
		Name:        "Ibuprofen",
		GenericName: "ibuprofen",
		Aliases:     []string{"Advil", "Motrin"},
		Description: "NSAID analgesic. Duration: 20-30 minutes onset, 4-6 hours total.",
	},
	{
		Name:        "Caffeine",
		GenericName: "caffeine",
		Aliases:     []string{"coffee"},
		Description: "Mild stimulant. Duration: 15-45 minutes onset, 4-6 hours total.",
	},
	{
		Name:        "Melatonin",
		GenericName: "melatonin",
		Description: "Sleep aid. Duration: 30-60 minutes onset, 4-8 hours total.",
	},
	{
		Name:        "Diphenhydramine",
		GenericName: "diphenhydramine",
		Aliases:     []string{"Benadryl"},
		Description: "Sedating antihistamine. Duration: 15-30 minutes onset, 4-6 hours total.",
	},
}
