package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/waypoint/pkg/adapters/file"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
)

// EnvRedisPassword is read when a Redis store is configured.
const EnvRedisPassword = "WAYPOINT_REDIS_PASSWORD"

// Persistence is a configured state store plus what the session manager
// needs to share it safely.
type Persistence struct {
	Store       ports.StateStore
	SessionOpts []session.Option
	closers     []func() error
}

// Close releases backend connections.
func (p *Persistence) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SetupPersistence initializes the state store. Redis also enables
// distributed session locks; masking and encryption wrap either backend.
func SetupPersistence(opts StoreOptions, logger *slog.Logger) (*Persistence, error) {
	p := &Persistence{}

	var base ports.StateStore
	if opts.RedisAddr != "" {
		rs := redis.New(opts.RedisAddr, os.Getenv(EnvRedisPassword), opts.RedisDB)
		base = rs
		p.SessionOpts = append(p.SessionOpts, session.WithLocker(redis.NewLocker(rs.Client(), "")))
		p.closers = append(p.closers, rs.Close)
		logger.Debug("using redis store", "addr", opts.RedisAddr, "db", opts.RedisDB)
	} else {
		base = file.New(opts.Dir)
		logger.Debug("using file store", "dir", opts.Dir)
	}

	var mws []middleware.Middleware
	if len(opts.Mask) > 0 {
		pii, err := middleware.NewPIIMiddleware(opts.Mask)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern: %w", err)
		}
		mws = append(mws, pii)
	}
	if keys := encryptionKeys(); len(keys) > 0 {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    keys[0],
			FallbackKeys: keys[1:],
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvEncryptionKey, err)
		}
		mws = append(mws, enc)
		logger.Debug("session encryption enabled", "keys", len(keys))
	}

	p.Store = middleware.Chain(base, mws...)
	p.SessionOpts = append(p.SessionOpts, session.WithLogger(logger))
	return p, nil
}
