package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/config"
	"github.com/aretw0/folio/internal/logging"
	"github.com/aretw0/folio/pkg/adapters/file"
	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/adapters/process"
	"github.com/aretw0/folio/pkg/adapters/redis"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/observability"
	"github.com/aretw0/folio/pkg/persistence/middleware"
	"github.com/aretw0/folio/pkg/ports"
	"github.com/aretw0/folio/pkg/session"
)

// app bundles what every command needs: configuration, logger and a wired engine.
type app struct {
	loader *config.Loader
	cfg    *config.Config
	logger *slog.Logger
	engine *folio.Engine
	close  func() error
}

// newApp loads configuration, applies flag overrides and builds the engine.
// Extra hooks are combined with the logging hooks.
func (o *rootOptions) newApp(hooks ...domain.LifecycleHooks) (*app, error) {
	loader, err := config.NewLoader(o.configPath, nil)
	if err != nil {
		return nil, err
	}
	cfg := loader.Config()

	if o.dir != "" {
		cfg.Store.Dir = o.dir
		if o.driver == "" {
			cfg.Store.Driver = config.DriverFile
		}
	}
	if o.driver != "" {
		cfg.Store.Driver = o.driver
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)
	loader.SetLogger(logger)

	store, locker, closeStore, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	producer, err := openProducer(cfg.Producer)
	if err != nil {
		return nil, errors.Join(err, closeStore())
	}

	engineOpts := []folio.Option{
		folio.WithStore(store),
		folio.WithLogger(logger),
		folio.WithLayout(cfg.Layout),
		folio.WithThresholds(cfg.Thresholds),
		folio.WithLifecycleHooks(observability.Combine(append([]domain.LifecycleHooks{observability.LogHooks(logger)}, hooks...)...)),
	}
	if locker != nil {
		engineOpts = append(engineOpts, folio.WithLocker(locker), folio.WithLockTTL(lockTTL(cfg.Producer)))
	}
	if producer != nil {
		engineOpts = append(engineOpts, folio.WithProducer(producer))
	}

	logger.Debug("engine configured", "store", cfg.Store.Driver, "producer", producer != nil)
	return &app{
		loader: loader,
		cfg:    cfg,
		logger: logger,
		engine: folio.New(engineOpts...),
		close:  closeStore,
	}, nil
}

// lockTTL keeps a distributed lock alive for a whole producer call even if the
// refresh loop stalls.
func lockTTL(cfg config.ProducerConfig) time.Duration {
	if ttl := cfg.Timeout + 10*time.Second; ttl > session.DefaultLockTTL {
		return ttl
	}
	return session.DefaultLockTTL
}

func openStore(cfg config.StoreConfig) (ports.StoryStore, ports.DistributedLocker, func() error, error) {
	store, locker, closeFn, err := openBackend(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(cfg.Redact)
		if err != nil {
			return nil, nil, nil, errors.Join(err, closeFn())
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, nil, nil, errors.Join(fmt.Errorf("invalid encryption key: %w", err), closeFn())
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, nil, nil, errors.Join(err, closeFn())
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), locker, closeFn, nil
}

func openBackend(cfg config.StoreConfig) (ports.StoryStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil, noop, nil
	case config.DriverFile:
		format := file.FormatJSON
		if cfg.Format == string(file.FormatYAML) {
			format = file.FormatYAML
		}
		return file.New(cfg.Dir, file.WithFormat(format)), nil, noop, nil
	case config.DriverRedis:
		opts := []redis.Option{}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		return store, redis.NewLocker(store.Client(), "folio:"), store.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// openProducer returns nil when no producer is configured.
func openProducer(cfg config.ProducerConfig) (ports.Producer, error) {
	var opts []process.Option
	if cfg.Dir != "" {
		opts = append(opts, process.WithDir(cfg.Dir))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, process.WithTimeout(cfg.Timeout))
	}

	if cfg.Name != "" {
		registry, err := process.LoadProducers(cfg.Registry)
		if err != nil {
			return nil, err
		}
		pc, ok := registry[cfg.Name]
		if !ok {
			return nil, fmt.Errorf("producer %q not found in %s", cfg.Name, cfg.Registry)
		}
		return process.FromConfig(pc, opts...), nil
	}
	if cfg.Command == "" {
		return nil, nil
	}
	return process.New(cfg.Command, cfg.Args, opts...), nil
}
