package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/perzequiel/woki-brain/internal/config"
	"github.com/perzequiel/woki-brain/internal/postgres"
	"github.com/perzequiel/woki-brain/internal/redis"
	"github.com/perzequiel/woki-brain/internal/repository"
	"github.com/perzequiel/woki-brain/internal/repository/memory"
	postgresrepo "github.com/perzequiel/woki-brain/internal/repository/postgres"
	redisrepo "github.com/perzequiel/woki-brain/internal/repository/redis"
	"github.com/perzequiel/woki-brain/internal/service"
	"github.com/perzequiel/woki-brain/internal/service/allocation"
	"github.com/perzequiel/woki-brain/internal/service/bookings"
	httpgin "github.com/perzequiel/woki-brain/internal/transport/http/gin"
)

const appName = "woki-brain"

type Options struct {
	// Migrate applies the schema before serving. Postgres only.
	Migrate bool
}

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	services   *service.Services
	events     *redisrepo.BookingEvents
	closers    []func()
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	const op = "app.New"

	a := &App{cfg: cfg, logger: logger}

	catalog, ledger, err := a.openStore(ctx, opts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	deps := service.Deps{
		Catalog:     catalog,
		Ledger:      ledger,
		Locks:       memory.NewLockTable(nil),
		Idempotency: memory.NewIdempotencyCache(nil),
	}

	var limiter httpgin.RateLimiter
	if rcfg := (redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}); rcfg.Enabled() {
		rdb, err := redis.New(ctx, rcfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("%s: failed to initialize redis:%w", op, err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })

		deps.Idempotency = redisrepo.NewIdempotencyCache(rdb)
		deps.Cache = redisrepo.NewDayCache(rdb, logger)
		deps.Events = redisrepo.NewBookingEvents(rdb)
		a.events = deps.Events
		if cfg.RateLimit.Limit > 0 {
			limiter = redisrepo.NewSlidingWindowLimiter(rdb, "bookings", cfg.RateLimit.Limit, cfg.RateLimit.Window)
		}
		logger.Info("redis enabled", slog.String("addr", cfg.Redis.Addr))
	} else {
		logger.Info("redis disabled, idempotency is kept in memory")
	}

	a.services = service.NewServices(deps, logger, service.Config{
		Allocation: allocation.Config{
			LockTTL:        cfg.Booking.LockTTL,
			IdempotencyTTL: cfg.Booking.IdempotencyTTL,
		},
		Bookings: bookings.Config{DayTTL: cfg.Booking.DayCacheTTL},
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           httpgin.NewRouter(a.services, limiter, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

// openStore picks the catalog and ledger for the configured driver.
func (a *App) openStore(ctx context.Context, opts Options) (repository.Catalog, repository.Ledger, error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := connectPostgres(ctx, a.cfg)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pool.Close)

		if opts.Migrate {
			if err := postgresrepo.Migrate(ctx, pool); err != nil {
				return nil, nil, err
			}
			a.logger.Info("schema migrated")
		}

		store := postgresrepo.NewStore(pool)
		if a.cfg.Store.SeedFile != "" {
			seed, err := repository.ReadSeed(a.cfg.Store.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			if err := store.ImportSeed(ctx, seed); err != nil {
				return nil, nil, err
			}
			a.logger.Info("seed imported", slog.String("file", a.cfg.Store.SeedFile))
		}
		return store.Catalog(), store.Bookings(), nil

	default:
		if a.cfg.Store.SeedFile == "" {
			a.logger.Warn("memory store started without SEED_FILE, catalog is empty")
			store := memory.NewStore()
			return store, store, nil
		}

		store, err := memory.LoadSeed(a.cfg.Store.SeedFile)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Info("seed loaded", slog.String("file", a.cfg.Store.SeedFile), slog.Int("bookings", store.Len()))
		return store, store, nil
	}
}

func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	if a.events != nil {
		g.Go(func() error {
			err := a.events.Subscribe(gCtx, a.onBookingEvent)
			if err != nil && gCtx.Err() == nil {
				// losing the feed only costs cache freshness on other instances
				a.logger.Error("booking events subscription ended", slog.Any("err", err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// onBookingEvent drops the cached day listing for bookings made by any
// instance sharing this Redis.
func (a *App) onBookingEvent(ctx context.Context, ev redisrepo.BookingEvent) {
	a.logger.Info("booking event",
		slog.String("type", ev.Type),
		slog.String("booking", ev.BookingID),
		slog.String("restaurant", ev.RestaurantID),
		slog.String("date", ev.Date),
	)

	if err := a.services.Bookings.Invalidate(ctx, ev.RestaurantID, ev.Date); err != nil {
		a.logger.Warn("day cache invalidation failed", slog.Any("err", err))
	}
}

// Close releases pools and clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Migrate applies the schema and exits.
func Migrate(ctx context.Context, cfg *config.Config) error {
	const op = "app.Migrate"

	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	defer pool.Close()

	if err := postgresrepo.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}

// ImportSeed loads a seed file into postgres.
func ImportSeed(ctx context.Context, cfg *config.Config, path string) error {
	const op = "app.ImportSeed"

	seed, err := repository.ReadSeed(path)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	pool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	defer pool.Close()

	if err := postgresrepo.NewStore(pool).ImportSeed(ctx, seed); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Store.Driver != config.DriverPostgres {
		return nil, fmt.Errorf("STORE_DRIVER is %q, want %q", cfg.Store.Driver, config.DriverPostgres)
	}

	pool, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN(),
		MaxConns: int32(cfg.Postgres.MaxConns),
		AppName:  appName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}
	return pool, nil
}
