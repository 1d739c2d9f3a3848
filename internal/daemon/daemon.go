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

	"github.com/go-co-op/gocron/v2"

	"github.com/codigo-app/codigo/internal/api"
	"github.com/codigo-app/codigo/internal/app/gamification"
	"github.com/codigo-app/codigo/internal/app/progress"
	"github.com/codigo-app/codigo/internal/app/session"
	"github.com/codigo-app/codigo/internal/health"
	_ "github.com/codigo-app/codigo/internal/infra/metrics" // Register Prometheus metrics
	"github.com/codigo-app/codigo/internal/infra/store"
	"github.com/codigo-app/codigo/internal/infra/timeutil"
)

// Version is the server version reported by /api/version.
const Version = "0.1.0"

// Daemon is the core Codigo runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *store.DB
	Server *api.Server
	cancel context.CancelFunc

	Lives        *gamification.LivesService
	XP           *gamification.XPService
	Streak       *gamification.StreakService
	Achievements *gamification.AchievementService
	Progress     *progress.Service
	Session      *session.Service
	Health       *health.Checker

	scheduler gocron.Scheduler
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
	dbDir := cfg.Database.Dir
	if dbDir == "" {
		dbDir = codigoHome()
	}
	db, err := store.Open(dbDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Daemon{Config: cfg, DB: db}

	livesCfg := gamification.DefaultLivesConfig()
	if cfg.Gamification.MaxLives > 0 {
		livesCfg.Capacity = cfg.Gamification.MaxLives
	}
	if cfg.Gamification.LifeRechargeMinutes > 0 {
		livesCfg.RechargePeriod = time.Duration(cfg.Gamification.LifeRechargeMinutes) * time.Minute
	}

	d.Lives = gamification.NewLivesServiceWithConfig(db, livesCfg)
	d.XP = gamification.NewXPService(db)
	d.Achievements = gamification.NewAchievementService(db, d.XP)
	d.Streak = gamification.NewStreakService(db, d.Achievements)
	d.Progress = progress.NewService(db, d.XP, d.Achievements, d.Streak)
	d.Session = session.NewService(db, d.Lives, d.XP, d.Streak, d.Achievements, d.Progress)

	gapi := api.NewGamificationAPI(db, d.Lives, d.XP, d.Streak, d.Achievements, d.Progress)
	d.Server = api.NewServer(gapi, Version)
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}

	d.Health = health.NewChecker(db, dbDir)
	d.Server.SetHealthChecker(d.Health)

	return d, nil
}

// startScheduler registers the midnight job that clears the same-day
// streak guard for all profiles.
func (d *Daemon) startScheduler() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	cronExpr := d.Config.Gamification.DailyResetCron
	if cronExpr == "" {
		cronExpr = "0 0 * * *"
	}

	_, err = sched.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			n, err := d.Streak.ResetDailyFlags()
			if err != nil {
				log.Printf("[daemon] daily streak reset: %v", err)
				return
			}
			log.Printf("[daemon] daily streak reset: %d profiles cleared", n)
		}),
	)
	if err != nil {
		return fmt.Errorf("register daily reset job: %w", err)
	}

	sched.Start()
	d.scheduler = sched
	log.Printf("[daemon] daily streak reset scheduled, next boundary %s",
		timeutil.NextMidnight(time.Now()).Format(time.RFC3339))
	return nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.startScheduler(); err != nil {
		return err
	}

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)

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

		if d.scheduler != nil {
			_ = d.scheduler.Shutdown()
		}
		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Codigo serving on http://%s\n", addr)
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
	if d.scheduler != nil {
		_ = d.scheduler.Shutdown()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
