package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"CandyShop/internal/api"
	"CandyShop/internal/auth"
	"CandyShop/internal/catalog"
	"CandyShop/internal/config"
	"CandyShop/internal/order"
	"CandyShop/internal/store"
	"CandyShop/pkg/kit"
)

const service = "candyshop"

func main() {
	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("open store failed", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}
	defer closeStore()

	locker, closeLocker, err := openLocker(ctx, cfg.Lock, log)
	if err != nil {
		log.Fatal("open locker failed", zap.Error(err), zap.String("driver", cfg.Lock.Driver))
	}
	defer closeLocker()

	unit := store.NewUnit(st, locker, log)

	if cfg.App.SeedCatalog {
		seeded, err := catalog.Seed(ctx, unit, catalog.DefaultProducts())
		if err != nil {
			log.Error("seed catalog failed", zap.Error(err))
		} else if seeded {
			log.Info("catalog seeded")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := api.NewHandler(api.Deps{
		Unit:    unit,
		Auth:    &auth.Service{Unit: unit, JWT: auth.NewTokenMaker(cfg.JWT.Secret), TTL: cfg.JWT.TTL},
		Catalog: catalog.NewService(unit),
		Orders:  &order.Processor{Unit: unit, Log: log, Metrics: order.NewMetrics(reg)},
		Query:   &order.Query{Unit: unit},
		Limits: api.Limits{
			LoginPerWindow:    cfg.Limits.LoginPerWindow,
			RegisterPerWindow: cfg.Limits.RegisterPerWindow,
			Window:            cfg.Limits.Window,
		},
	}, api.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	err = kit.RunHTTPServer(ctx, ":"+cfg.App.Port, h, log, kit.ServerOptions{
		ShutdownTimeout: cfg.App.ShutdownTimeout,
	})
	if err != nil {
		log.Error("http server stopped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (store.Store, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case config.DriverFile:
		return store.NewFileStore(cfg.Path, log), noop, nil
	case config.DriverMemory:
		return store.NewMemStore(), noop, nil
	case config.DriverPostgres:
		s, err := store.OpenPostgres(ctx, cfg.DSN, log)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.DriverSQLite:
		s, err := store.OpenSQLite(cfg.Path, log)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	}
	return nil, noop, errors.New("unknown store driver " + cfg.Driver)
}

func openLocker(ctx context.Context, cfg config.LockConfig, log *zap.Logger) (store.Locker, func(), error) {
	if cfg.Driver != config.LockerRedis {
		return store.NewMutexLocker(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, func() {}, err
	}

	l, err := store.NewRedisLocker(client, cfg.Key, cfg.TTL, cfg.Retry, log)
	if err != nil {
		_ = client.Close()
		return nil, func() {}, err
	}
	return l, func() { _ = client.Close() }, nil
}
