package backend

import (
	"context"
	"fmt"

	applog "loanschedule/internal/log"
	"loanschedule/internal/store/file"
	"loanschedule/internal/store/memory"
	"loanschedule/internal/store/redisstore"
	"loanschedule/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentStorage),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case RedisBackend:
		return f.createRedisBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	s := file.New(config.SaveDir, f.logger)

	f.logger.Debug("Initialized file backend", "save_dir", config.SaveDir)

	return &BackendResult{Store: s, Cleanup: s.Close}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Debug("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	s, err := redisstore.New(ctx, redisstore.Options{
		Addr:      config.RedisAddr,
		Password:  config.RedisPassword,
		DB:        config.RedisDB,
		KeyPrefix: config.RedisKeyPrefix,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis store: %w", err)
	}

	f.logger.Debug("Initialized Redis backend", "addr", config.RedisAddr, "db", config.RedisDB)

	return &BackendResult{Store: s, Cleanup: s.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	s := memory.New()

	f.logger.Debug("Initialized memory backend")

	return &BackendResult{Store: s, Cleanup: s.Close}, nil
}
