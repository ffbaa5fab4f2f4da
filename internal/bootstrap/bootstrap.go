// Package bootstrap arma los casos de uso a partir de la configuración: backend de almacenamiento,
// caché de datos de referencia y publicador de eventos. Lo comparten cmd/api y cmd/seed.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// App casos de uso listos para los adaptadores.
type App struct {
	Ledger    *inventory.LedgerUseCase
	Products  *usecase.ProductUseCase
	Warehouse *usecase.WarehouseUseCase
	Catalog   *usecase.CatalogUseCase
	Report    *usecase.StockReportUseCase

	closers []func()
}

// Close libera conexiones en orden inverso al de apertura.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type repos struct {
	txRunner   inventory.TxRunner
	tx         repository.TransactionRepository
	stock      repository.StockRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	categories repository.CategoryRepository
	units      repository.UnitRepository
	report     repository.StockReportRepository
}

// New construye la aplicación según cfg.App.StorageDriver.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	app := &App{}
	r, err := app.storage(ctx, cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// sin caché se sigue funcionando contra el repositorio
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché deshabilitada")
		} else {
			app.closers = append(app.closers, func() { _ = rdb.Close() })
			r.products = cache.NewProductCache(r.products, rdb, cfg.Redis.TTL, log)
			r.warehouses = cache.NewWarehouseCache(r.warehouses, rdb, cfg.Redis.TTL, log)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de datos de referencia activa")
		}
	}

	var publisher inventory.EventPublisher = inventory.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		app.closers = append(app.closers, func() { _ = p.Close() })
		publisher = p
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos en kafka")
	}

	app.Ledger = inventory.NewLedgerUseCase(r.txRunner, r.tx, r.stock, r.products, r.warehouses, inventory.Options{
		MaxRetries: cfg.Ledger.MaxRetries,
		TxTimeout:  cfg.Ledger.TxTimeout,
		Publisher:  publisher,
		Logger:     log.WithFields(map[string]any{"component": "ledger"}),
	})
	app.Products = usecase.NewProductUseCase(r.products, r.categories, r.units)
	app.Warehouse = usecase.NewWarehouseUseCase(r.warehouses)
	app.Catalog = usecase.NewCatalogUseCase(r.categories, r.units)
	app.Report = usecase.NewStockReportUseCase(r.report)
	return app, nil
}

func (a *App) storage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repos, error) {
	switch cfg.App.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &repos{
			txRunner:   memory.NewTxRunner(store),
			tx:         memory.NewTransactionRepo(store),
			stock:      memory.NewStockRepo(store),
			products:   memory.NewProductRepo(store),
			warehouses: memory.NewWarehouseRepo(store),
			categories: memory.NewCategoryRepo(store),
			units:      memory.NewUnitRepo(store),
			report:     memory.NewStockReportRepo(store),
		}, nil
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		return &repos{
			txRunner:   postgres.NewTxRunner(pool),
			tx:         postgres.NewTransactionRepository(pool),
			stock:      postgres.NewStockRepository(pool),
			products:   postgres.NewProductRepository(pool),
			warehouses: postgres.NewWarehouseRepository(pool),
			categories: postgres.NewCategoryRepository(pool),
			units:      postgres.NewUnitRepository(pool),
			report:     postgres.NewStockReportRepository(pool),
		}, nil
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.App.StorageDriver)
	}
}
