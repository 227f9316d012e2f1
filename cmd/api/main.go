package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/application/usecase"
	"github.com/jhoicas/inventario-tracking/internal/domain/repository"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/catalog"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/messaging"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-tracking/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-tracking/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-tracking/internal/interfaces/http"
	"github.com/jhoicas/inventario-tracking/pkg/config"
	"github.com/jhoicas/inventario-tracking/pkg/logger"
)

// stores agrupa las piezas de persistencia elegidas por TRACKING_STORE.
type stores struct {
	txRunner  tracking.TxRunner
	current   repository.CurrentLocationRepository
	movements repository.MovementRepository
	locations repository.LocationRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Tracking.Store).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	registry := metrics.NewRegistry()
	observer := metrics.NewTrackingMetrics(registry)

	directory := tracking.NewRepositoryDirectory(st.locations)
	coordinator := tracking.NewCoordinator(st.txRunner, directory, log, observer)
	queries := tracking.NewQueryService(st.current, st.movements, cfg.Tracking.HistoryPageSize, cfg.Tracking.RecentMax)
	reports := tracking.NewReportUseCase(st.locations, queries, infrapdf.NewLocationReportGenerator())
	locationUC := usecase.NewLocationUseCase(st.locations)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Tracking API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Coordinator: coordinator,
		Queries:     queries,
		Reports:     reports,
		LocationUC:  locationUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	var workers sync.WaitGroup

	if cfg.Feed.Enabled {
		publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		feed := tracking.NewFeed(st.movements, publisher, log, cfg.Feed.PollInterval, cfg.Feed.BatchSize, cfg.Feed.Settle)
		workers.Add(1)
		go func() {
			defer workers.Done()
			defer publisher.Close()
			last := feed.Run(ctx, cfg.Feed.StartSeq)
			log.Info().Int64("last_seq", last).Msg("seguidor detenido; usar FEED_START_SEQ para reanudar")
		}()
	}

	if cfg.Reconcile.Interval > 0 {
		checker := catalog.NewLivenessClient(cfg.Reconcile.LivenessURL, cfg.Reconcile.Token, cfg.Reconcile.Timeout)
		reconciler := tracking.NewReconciler(st.current, checker, coordinator, log, cfg.Reconcile.BatchSize, cfg.Reconcile.Actor)
		workers.Add(1)
		go func() {
			defer workers.Done()
			reconciler.Run(ctx, cfg.Reconcile.Interval)
		}()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	workers.Wait()

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Tracking.Store == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		mem := memory.NewStore(cfg.Tracking.LockTimeout)
		return &stores{
			txRunner:  mem,
			current:   mem.CurrentLocations(),
			movements: mem.Movements(),
			locations: mem.Locations(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	return &stores{
		txRunner:  postgres.NewTxRunner(pool, cfg.Tracking.LockTimeout),
		current:   postgres.NewCurrentLocationRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		locations: postgres.NewLocationRepository(pool),
		close:     pool.Close,
	}, nil
}
