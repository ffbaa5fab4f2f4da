package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

var (
	_ repository.ProductRepository   = (*ProductCache)(nil)
	_ repository.WarehouseRepository = (*WarehouseCache)(nil)
)

// ProductCache decora un ProductRepository: GetByID pasa por Redis (JSON con TTL).
// Si Redis falla se consulta el repositorio directamente.
type ProductCache struct {
	repository.ProductRepository
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewProductCache construye el decorador.
func NewProductCache(next repository.ProductRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *ProductCache {
	return &ProductCache{ProductRepository: next, rdb: rdb, ttl: ttl, log: log}
}

// GetByID lee de caché o del repositorio. Los productos inexistentes no se cachean.
func (c *ProductCache) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	key := "product:" + id
	var p entity.Product
	if hit := get(ctx, c.rdb, c.log, "product", key, &p); hit {
		return &p, nil
	}
	got, err := c.ProductRepository.GetByID(ctx, id)
	if err != nil || got == nil {
		return got, err
	}
	set(ctx, c.rdb, c.log, key, got, c.ttl)
	return got, nil
}

// Create invalida la llave por si existía una entrada vieja con el mismo id.
func (c *ProductCache) Create(ctx context.Context, p *entity.Product) error {
	if err := c.ProductRepository.Create(ctx, p); err != nil {
		return err
	}
	c.rdb.Del(ctx, "product:"+p.ID)
	return nil
}

// Update borra la entrada para que la próxima lectura vea el cambio.
func (c *ProductCache) Update(ctx context.Context, p *entity.Product) error {
	if err := c.ProductRepository.Update(ctx, p); err != nil {
		return err
	}
	invalidate(ctx, c.rdb, c.log, "product:"+p.ID)
	return nil
}

// WarehouseCache decora un WarehouseRepository igual que ProductCache.
type WarehouseCache struct {
	repository.WarehouseRepository
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewWarehouseCache construye el decorador.
func NewWarehouseCache(next repository.WarehouseRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *WarehouseCache {
	return &WarehouseCache{WarehouseRepository: next, rdb: rdb, ttl: ttl, log: log}
}

// GetByID lee de caché o del repositorio.
func (c *WarehouseCache) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	key := "warehouse:" + id
	var w entity.Warehouse
	if hit := get(ctx, c.rdb, c.log, "warehouse", key, &w); hit {
		return &w, nil
	}
	got, err := c.WarehouseRepository.GetByID(ctx, id)
	if err != nil || got == nil {
		return got, err
	}
	set(ctx, c.rdb, c.log, key, got, c.ttl)
	return got, nil
}

// Create invalida la llave de la bodega.
func (c *WarehouseCache) Create(ctx context.Context, w *entity.Warehouse) error {
	if err := c.WarehouseRepository.Create(ctx, w); err != nil {
		return err
	}
	c.rdb.Del(ctx, "warehouse:"+w.ID)
	return nil
}

// Update invalida la bodega: una desactivación debe verse en la siguiente validación del ledger.
func (c *WarehouseCache) Update(ctx context.Context, w *entity.Warehouse) error {
	if err := c.WarehouseRepository.Update(ctx, w); err != nil {
		return err
	}
	invalidate(ctx, c.rdb, c.log, "warehouse:"+w.ID)
	return nil
}

func invalidate(ctx context.Context, rdb *redis.Client, log *logger.Logger, key string) {
	if err := rdb.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis: invalidación fallida")
	}
}

func get(ctx context.Context, rdb *redis.Client, log *logger.Logger, resource, key string, dst any) bool {
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheLookupsTotal.WithLabelValues(resource, "miss").Inc()
		return false
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues(resource, "error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("redis: lectura fallida, se consulta la BD")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		metrics.CacheLookupsTotal.WithLabelValues(resource, "error").Inc()
		return false
	}
	metrics.CacheLookupsTotal.WithLabelValues(resource, "hit").Inc()
	return true
}

func set(ctx context.Context, rdb *redis.Client, log *logger.Logger, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis: escritura fallida")
	}
}
