package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// unreachable cliente contra un puerto sin servidor: toda operación falla rápido.
func unreachable(t *testing.T) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestProductCache_RedisCaidoConsultaRepositorio(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := memory.NewProductRepo(store)
	c := cache.NewProductCache(repo, unreachable(t), time.Minute, logger.Nop())

	require.NoError(t, c.Create(ctx, &entity.Product{ID: "p1", SKU: "SKU-1", Name: "Tornillo"}))

	got, err := c.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SKU-1", got.SKU)

	missing, err := c.GetByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	bySKU, err := c.GetBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", bySKU.ID, "los demás métodos delegan")
}

func TestWarehouseCache_RedisCaidoConsultaRepositorio(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWarehouseRepo(memory.NewStore())
	c := cache.NewWarehouseCache(repo, unreachable(t), time.Minute, logger.Nop())

	require.NoError(t, c.Create(ctx, &entity.Warehouse{ID: "w1", Code: "WH01", Name: "Central", IsActive: true}))
	got, err := c.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, "WH01", got.Code)
}

func TestNewClient_SinServidorFalla(t *testing.T) {
	_, err := cache.NewClient("127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func TestWarehouseCache_UpdateConRedisCaidoDevuelveValorNuevo(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWarehouseRepo(memory.NewStore())
	c := cache.NewWarehouseCache(repo, unreachable(t), time.Minute, logger.Nop())
	require.NoError(t, c.Create(ctx, &entity.Warehouse{ID: "w1", Code: "WH01", Name: "Central", IsActive: true}))

	require.NoError(t, c.Update(ctx, &entity.Warehouse{ID: "w1", Name: "Central", IsActive: false}))
	got, err := c.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "WH01", got.Code, "el código no cambia")
}

// liveRedis cliente real; la prueba se omite si REDIS_TEST_ADDR no está definido.
func liveRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR no definido")
	}
	rdb, err := cache.NewClient(addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestWarehouseCache_UpdateInvalidaLaEntrada(t *testing.T) {
	ctx := context.Background()
	rdb := liveRedis(t)
	id := "w-" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), "warehouse:"+id) })

	repo := memory.NewWarehouseRepo(memory.NewStore())
	c := cache.NewWarehouseCache(repo, rdb, time.Minute, logger.Nop())
	require.NoError(t, c.Create(ctx, &entity.Warehouse{ID: id, Code: "WH01", Name: "Central", IsActive: true}))

	first, err := c.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	n, err := rdb.Exists(ctx, "warehouse:"+id).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), n, "la lectura llena la caché")

	require.NoError(t, c.Update(ctx, &entity.Warehouse{ID: id, Name: "Central", IsActive: false}))
	after, err := c.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, after.IsActive, "no se sirve la versión activa vieja")
}

func TestProductCache_UpdateInvalidaLaEntrada(t *testing.T) {
	ctx := context.Background()
	rdb := liveRedis(t)
	id := "p-" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), "product:"+id) })

	repo := memory.NewProductRepo(memory.NewStore())
	c := cache.NewProductCache(repo, rdb, time.Minute, logger.Nop())
	require.NoError(t, c.Create(ctx, &entity.Product{ID: id, SKU: "SKU-" + id, Name: "Tornillo"}))
	_, err := c.GetByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, c.Update(ctx, &entity.Product{ID: id, Name: "Tornillo 3/8"}))
	after, err := c.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Tornillo 3/8", after.Name)
	assert.Equal(t, "SKU-"+id, after.SKU)
}
