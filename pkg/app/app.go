// Package app boots the process-wide handles (document store, cache, card
// processor, storage disk, token issuer) and tears them down again.
//
//	c, err := app.Boot(ctx)
//	if err != nil {
//	    return err
//	}
//	defer c.Close(context.Background())
//
//	h := c.Handler(func(r *router.Router) { routes.RegisterAPI(r, c) })
//	return app.Serve(ctx, h)
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bistroboss/bistro/config"
	"github.com/bistroboss/bistro/pkg/auth"
	"github.com/bistroboss/bistro/pkg/cache"
	"github.com/bistroboss/bistro/pkg/docstore"
	"github.com/bistroboss/bistro/pkg/logger"
	"github.com/bistroboss/bistro/pkg/middleware"
	"github.com/bistroboss/bistro/pkg/migration"
	"github.com/bistroboss/bistro/pkg/payment"
	"github.com/bistroboss/bistro/pkg/storage"
)

// Container holds every shared handle. Components receive what they need
// from it at construction; nothing reads it through globals.
type Container struct {
	Store     docstore.Store
	Cache     cache.Cache
	Processor payment.Processor
	Disk      storage.Disk
	Issuer    *auth.Issuer
	Limiter   *middleware.RateLimiter
	HTTP      config.HTTPOptions

	closers []func(context.Context) error
}

// Boot connects everything configured in config. Redis is optional: when it
// cannot be reached listings are served uncached.
func Boot(ctx context.Context) (*Container, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	c := &Container{
		Issuer: auth.NewIssuer(config.JWTSecret(), config.TokenTTL()),
		HTTP:   config.HTTP(),
	}

	if uri := config.LogMongoURI(); uri != "" {
		h, err := logger.NewMongoHandler(ctx, uri, config.MongoDatabase(), "logs")
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			logger.Use(slog.New(logger.NewMultiHandler(logger.L.Handler(), h)))
			c.closers = append(c.closers, func(ctx context.Context) error { h.Close(ctx); return nil })
		}
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, c.fail(err)
	}
	c.Store = store
	c.closers = append(c.closers, store.Close)
	if err := Migrate(ctx, store); err != nil {
		return nil, c.fail(err)
	}

	c.Cache = cache.Nop{}
	if addr := config.RedisAddr(); addr != "" {
		rc, err := cache.ConnectRedis(ctx, addr, config.RedisPassword())
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "addr", addr, "error", err)
		} else {
			c.Cache = rc
			c.closers = append(c.closers, func(context.Context) error { return rc.Close() })
		}
	}

	if key := config.StripeSecretKey(); key != "" {
		c.Processor = payment.NewStripe(key)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, using the sandbox processor")
		c.Processor = payment.NewSandbox()
	}

	disk, err := storage.Open(storage.FromConfig())
	if err != nil {
		return nil, c.fail(err)
	}
	c.Disk = disk

	c.Limiter = middleware.NewRateLimiter(config.RateLimitPerMinute(), config.TrustProxy())
	c.closers = append(c.closers, func(context.Context) error { c.Limiter.Stop(); return nil })

	logger.Info("app booted",
		"env", config.AppEnv(),
		"db", config.DatabaseDriver(),
		"stripe", config.StripeSecretKey() != "",
	)
	return c, nil
}

// Close releases handles in reverse order of acquisition.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Migrate applies every registered migration that has not run on store yet.
// Boot calls it so the unique indexes exist before the first request.
func Migrate(ctx context.Context, store docstore.Store) error {
	if err := migration.New(store, io.Discard).Run(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (c *Container) fail(err error) error {
	_ = c.Close(context.Background())
	return err
}

func openStore(ctx context.Context) (docstore.Store, error) {
	if config.DatabaseDriver() == "memory" {
		logger.Warn("DB_DRIVER=memory: data is lost on restart")
		return docstore.NewMemoryStore(), nil
	}
	return docstore.ConnectMongo(ctx, config.MongoURI(), config.MongoDatabase())
}
