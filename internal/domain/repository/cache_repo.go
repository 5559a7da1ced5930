package repository

import (
	"context"
	"time"
)

// CacheRepository хранит служебное состояние попыток в кеше
type CacheRepository interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
}
