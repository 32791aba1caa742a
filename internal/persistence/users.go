package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/coop-scheduler/internal/config"
	"github.com/spec-kit/coop-scheduler/internal/repository"
	"github.com/spec-kit/coop-scheduler/migrations"
)

// UserStore is the identity store selected by DB_TYPE.
type UserStore struct {
	Name   string
	Users  repository.UserRepository
	Stores repository.StoreRepository
	ping   func(context.Context) error
	close  func()
}

// Ping checks the backend behind the store.
func (s *UserStore) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *UserStore) Close() {
	s.close()
}

// OpenUserStore connects to the configured backend and returns its user repository. Postgres
// migrations run first when enabled.
func OpenUserStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*UserStore, error) {
	switch cfg.DBType {
	case config.DBTypePostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		return &UserStore{
			Name:   config.DBTypePostgres,
			Users:  repository.NewPostgresUserRepository(pg.PoolHandle()),
			Stores: repository.NewPostgresStoreRepository(pg.PoolHandle()),
			ping:   pg.Ping,
			close:  pg.Close,
		}, nil
	case config.DBTypeMongo:
		m, err := NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := repository.EnsureMongoIndexes(ctx, m.Database); err != nil {
			m.Close()
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		return &UserStore{
			Name:   config.DBTypeMongo,
			Users:  repository.NewMongoUserRepository(m.Database),
			Stores: repository.NewMongoStoreRepository(m.Database),
			ping:   m.Ping,
			close:  m.Close,
		}, nil
	case config.DBTypeMemory:
		logger.Warn("using in-memory user store; data is lost on restart")
		return &UserStore{
			Name:   config.DBTypeMemory,
			Users:  repository.NewMemoryUserRepository(),
			Stores: repository.NewMemoryStoreRepository(),
			ping:   func(context.Context) error { return nil },
			close:  func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}
}
