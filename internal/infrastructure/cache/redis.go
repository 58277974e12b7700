package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/johnquangdev/meeting-analyzer/errors"
	repo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

const ledgerPrefix = "meeting-analyzer:processed:"

func ledgerKey(documentID string) string {
	return ledgerPrefix + documentID
}

// RedisLedger is a ProcessedLedger shared by every batch run
type RedisLedger struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ repo.ProcessedLedger = (*RedisLedger)(nil)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisLedger creates a ledger on an existing client
func NewRedisLedger(client redis.UniversalClient, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

func (l *RedisLedger) IsProcessed(ctx context.Context, documentID string) (bool, error) {
	n, err := l.client.Exists(ctx, ledgerKey(documentID)).Result()
	if err != nil {
		return false, appErrors.ErrCacheFailed("exists", err).WithDetail("document_id", documentID)
	}
	return n > 0, nil
}

func (l *RedisLedger) MarkProcessed(ctx context.Context, documentID string) error {
	value := time.Now().UTC().Format(time.RFC3339)
	if err := l.client.Set(ctx, ledgerKey(documentID), value, l.ttl).Err(); err != nil {
		return appErrors.ErrCacheFailed("set", err).WithDetail("document_id", documentID)
	}
	return nil
}
