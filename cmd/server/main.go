package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/config"
	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/metrics"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
	"github.com/mamadbah2/hatchery/internal/repository/mongodb"
	"github.com/mamadbah2/hatchery/internal/repository/postgres"
	"github.com/mamadbah2/hatchery/internal/repository/sheets"
	"github.com/mamadbah2/hatchery/internal/repository/sqlite"
	"github.com/mamadbah2/hatchery/internal/scheduler"
	"github.com/mamadbah2/hatchery/internal/server/handlers"
	"github.com/mamadbah2/hatchery/internal/server/router"
	"github.com/mamadbah2/hatchery/internal/service/allocation"
	"github.com/mamadbah2/hatchery/internal/service/audit"
	"github.com/mamadbah2/hatchery/internal/service/pipeline"
	reportingsvc "github.com/mamadbah2/hatchery/internal/service/reporting"
	"github.com/mamadbah2/hatchery/pkg/clients/stock"
	whatsappclient "github.com/mamadbah2/hatchery/pkg/clients/whatsapp"
	"github.com/mamadbah2/hatchery/pkg/logger"
)

const auditStreamMaxLen = 10000

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level, cfg.Log.Format))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mongoRepo *mongodb.MongoDBRepository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err = mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
	}

	persister, closePersister, err := openPersister(ctx, cfg, mongoRepo, baseLogger.Named("repo.state"))
	if err != nil {
		baseLogger.Fatal("failed to init state persister", zap.Error(err))
	}
	defer closePersister()

	store, err := memory.Open(ctx, persister, baseLogger.Named("repo.memory"))
	if err != nil {
		baseLogger.Fatal("failed to load pipeline state", zap.Error(err))
	}

	ledger := newLedger(cfg.Stock, baseLogger)
	refs, err := stock.ResolveReferences(ctx, ledger, stock.ReferenceNames{
		EggsProduct:         cfg.Stock.EggsProduct,
		ChicksProduct:       cfg.Stock.ChicksProduct,
		InternalPickingType: cfg.Stock.InternalPickingType,
	}, baseLogger.Named("clients.stock"))
	if err != nil {
		baseLogger.Fatal("failed to resolve stock references", zap.Error(err))
	}

	sinks := audit.Multi{audit.NewZapSink(baseLogger.Named("audit"))}
	if cfg.Audit.RedisAddr != "" {
		redisSink := audit.NewRedisSink(redis.NewClient(&redis.Options{Addr: cfg.Audit.RedisAddr}), cfg.Audit.RedisStream, auditStreamMaxLen, baseLogger.Named("audit.redis"))
		defer func() { _ = redisSink.Close() }()
		sinks = append(sinks, redisSink)
		baseLogger.Info("redis audit stream enabled", zap.String("stream", cfg.Audit.RedisStream))
	}
	if cfg.WhatsApp.Enabled() {
		whatsSink := audit.NewWhatsAppSink(whatsappclient.NewClient(cfg.WhatsApp), baseLogger.Named("audit.whatsapp"))
		defer whatsSink.Wait()
		sinks = append(sinks, whatsSink)
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, notifications disabled")
	}

	m := metrics.New()
	svc := pipeline.NewService(store, ledger, refs, sinks, m, pipeline.Options{
		SetterPool: allocation.DefaultPool{
			Kind:     models.MachineSetter,
			Count:    cfg.Pool.DefaultSetterCount,
			Capacity: cfg.Pool.DefaultSetterCapacity,
		},
		HatcherPool: allocation.DefaultPool{
			Kind:     models.MachineHatcher,
			Count:    cfg.Pool.DefaultHatcherCount,
			Capacity: cfg.Pool.DefaultHatcherCapacity,
		},
		SourceLocation:      cfg.Stock.SourceLocation,
		DestinationLocation: cfg.Stock.DestinationLocation,
	}, baseLogger.Named("svc.pipeline"))
	if err := svc.Bootstrap(ctx); err != nil {
		baseLogger.Fatal("failed to bootstrap machine pools", zap.Error(err))
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		var archive reportingsvc.Archive
		if mongoRepo != nil {
			archive = mongoRepo
		}
		reportingSvc := reportingsvc.NewService(store, sheetsRepo, archive, baseLogger.Named("svc.reporting"))

		sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, sinks, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Warn("google sheets not configured, daily report disabled")
	}

	handler := handlers.NewPipelineHandler(svc, baseLogger.Named("handlers.pipeline"))
	engine := router.New(handler, m.Handler(), baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openPersister returns the snapshot persister of the configured backend, or
// nil for the volatile memory backend.
func openPersister(ctx context.Context, cfg *config.Config, mongoRepo *mongodb.MongoDBRepository, log *zap.Logger) (memory.Persister, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn("memory backend selected, pipeline state is lost on restart")
		return nil, noop, nil
	case config.BackendSQLite:
		p, err := sqlite.Open(ctx, cfg.Store.SQLitePath, log)
		if err != nil {
			return nil, noop, err
		}
		return p, func() { _ = p.Close() }, nil
	case config.BackendPostgres:
		p, err := postgres.Open(ctx, cfg.Store.PostgresDSN, log)
		if err != nil {
			return nil, noop, err
		}
		return p, func() { _ = p.Close() }, nil
	case config.BackendMongoDB:
		if mongoRepo == nil {
			return nil, noop, errors.New("mongodb backend requires MONGODB_URI")
		}
		return mongoRepo, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

// newLedger talks to the stock API when configured. Without one it runs an
// in-process ledger seeded with the configured reference names.
func newLedger(cfg config.StockConfig, log *zap.Logger) stock.Ledger {
	if cfg.BaseURL != "" {
		log.Info("stock ledger api enabled", zap.String("base_url", cfg.BaseURL))
		return stock.NewClient(cfg)
	}

	log.Warn("STOCK_API_URL not set, using in-process stock ledger")
	ledger := stock.NewMemoryLedger()
	ledger.AddProduct(cfg.EggsProduct)
	ledger.AddProduct(cfg.ChicksProduct)
	ledger.AddPickingType(cfg.InternalPickingType)
	return ledger
}
