package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ventas/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ProductoCache is a best-effort read-through cache of products in Redis.
// A nil cache or nil client disables it; Redis errors are logged and
// swallowed so the database stays the only source of truth.
type ProductoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductoCache(rdb *redis.Client, ttl time.Duration) *ProductoCache {
	if rdb == nil {
		return nil
	}
	return &ProductoCache{rdb: rdb, ttl: ttl}
}

func productoCacheKey(id uuid.UUID) string { return "producto:" + id.String() }

func (c *ProductoCache) Get(ctx context.Context, id uuid.UUID) (*model.Producto, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, productoCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("producto_id", id.String()).Msg("producto cache get failed")
		}
		return nil, false
	}
	var p model.Producto
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("producto_id", id.String()).Msg("producto cache entry corrupt")
		return nil, false
	}
	return &p, true
}

func (c *ProductoCache) Set(ctx context.Context, p *model.Producto) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	// NX: never overwrite an entry a fresher reader already wrote
	if err := c.rdb.SetNX(ctx, productoCacheKey(p.ID), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("producto_id", p.ID.String()).Msg("producto cache set failed")
	}
}

// Invalidar drops the cached copies of the given products. Called after a
// commit that changed their stock or price.
func (c *ProductoCache) Invalidar(ctx context.Context, ids ...uuid.UUID) {
	if c == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productoCacheKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("producto cache invalidation failed")
	}
}
