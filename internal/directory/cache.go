package directory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CachedDirectory is a read-through Redis cache in front of another
// directory. Directory records change rarely and are looked up on every
// booking, so a short TTL takes the hot path off Postgres. Cache errors
// degrade to the inner directory, never to the caller.
type CachedDirectory struct {
	inner interface {
		ProviderDirectory
		PatientDirectory
	}
	client *redis.Client
	ttl    time.Duration
}

func NewCachedDirectory(inner *PgDirectory, client *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{inner: inner, client: client, ttl: ttl}
}

func (c *CachedDirectory) GetProviderByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	key := "directory:provider:" + id.String()

	var p Provider
	if c.lookup(ctx, key, &p) {
		return &p, nil
	}

	fresh, err := c.inner.GetProviderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

func (c *CachedDirectory) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	key := "directory:patient:" + id.String()

	var p Patient
	if c.lookup(ctx, key, &p) {
		return &p, nil
	}

	fresh, err := c.inner.GetPatientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

func (c *CachedDirectory) lookup(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("directory cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("directory cache entry corrupt")
		return false
	}
	return true
}

func (c *CachedDirectory) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("directory cache write failed")
	}
}
