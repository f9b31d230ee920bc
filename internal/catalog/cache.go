package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/bookstore-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a read-through Redis cache in front of Repo.GetByID. Prices used
// at checkout never come from here.
type Cache struct {
	Repo   *Repo
	Redis  redis.Cmdable
	Logger *zap.Logger
}

func (c *Cache) GetByID(ctx context.Context, id int64) (Product, error) {
	key := fmt.Sprintf(redisx.KeyProduct, id)
	if b, err := c.Redis.Get(ctx, key).Bytes(); err == nil {
		var p Product
		if err := json.Unmarshal(b, &p); err == nil {
			return p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.Logger.Warn("product cache read", zap.Int64("product_id", id), zap.Error(err))
	}

	p, err := c.Repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = c.Redis.Set(ctx, key, b, redisx.TTLProductCache).Err()
	}
	return p, nil
}

// Invalidate drops cached entries, e.g. after their stock changed.
func (c *Cache) Invalidate(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf(redisx.KeyProduct, id))
	}
	return c.Redis.Del(ctx, keys...).Err()
}
