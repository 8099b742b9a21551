package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/micro-shop/internal/config"
	"github.com/rl1809/micro-shop/internal/port"
)

const DriverMemory = "memory"

// Repositories is every store the services need plus the connections behind
// them.
type Repositories struct {
	Products     port.ProductRepository
	Transactions port.TransactionRepository
	Settings     port.SettingsRepository
	Cache        port.CacheRepository

	closers []func() error
}

func (r *Repositories) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			log.Printf("close storage: %v", err)
		}
	}
}

// Open connects the configured database and Redis and makes sure the schema
// exists. The memory driver keeps everything in process and needs neither.
// The caller registers the database/sql driver it selects.
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if cfg.DBDriver == DriverMemory {
		mem := NewMemoryAdapter()
		log.Println("using in-memory storage; data is lost on exit")
		return &Repositories{Products: mem, Transactions: mem, Settings: mem, Cache: mem}, nil
	}

	repos := &Repositories{}

	// Initialize database
	db, err := sql.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s: %w", cfg.DBDriver, err)
	}
	repos.closers = append(repos.closers, db.Close)
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		repos.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.DBDriver, err)
	}
	log.Printf("connected to %s", cfg.DBDriver)

	sqlAdapter := NewSQLAdapter(db, cfg.DBDriver)
	if err := sqlAdapter.EnsureSchema(ctx); err != nil {
		repos.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		PoolSize: 100,
	})
	repos.closers = append(repos.closers, rdb.Close)
	if err := rdb.Ping(ctx).Err(); err != nil {
		repos.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	log.Println("connected to redis")

	repos.Products = sqlAdapter
	repos.Transactions = sqlAdapter
	repos.Settings = sqlAdapter
	repos.Cache = NewRedisAdapter(rdb, cfg.CatalogCacheTTL)
	return repos, nil
}
