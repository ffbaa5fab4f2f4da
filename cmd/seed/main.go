// seed crea los datos iniciales: bodega central, categorías, unidades, productos y stock de apertura.
// Es idempotente: lo que ya existe (mismo código, nombre o SKU) se reutiliza.
//
// Uso: go run ./cmd/seed [-stock=true] [-token-user=<id>]
// Con -token-user imprime un token de desarrollo firmado con JWT_SECRET.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const seedActor = "seed"

type seedProduct struct {
	sku, name, category, unit string
	price                     string
	opening                   int64
}

var (
	categories = []dto.CreateCategoryRequest{
		{Name: "Elektronik", Description: "Perangkat elektronik"},
		{Name: "Makanan", Description: "Bahan makanan"},
		{Name: "Alat Tulis", Description: "Perlengkapan kantor"},
	}
	units = []dto.CreateUnitRequest{
		{Name: "Pieces", Abbreviation: "pcs"},
		{Name: "Kilogram", Abbreviation: "kg"},
		{Name: "Box", Abbreviation: "box"},
	}
	products = []seedProduct{
		{"ELK-001", "Laptop 14 inch", "Elektronik", "Pieces", "8500000", 10},
		{"ELK-002", "Mouse Wireless", "Elektronik", "Pieces", "150000", 50},
		{"MKN-001", "Beras Premium 5kg", "Makanan", "Kilogram", "75000", 100},
		{"ATK-001", "Kertas A4 80gr", "Alat Tulis", "Box", "55000", 40},
	}
)

func main() {
	withStock := flag.Bool("stock", true, "registrar entrada de apertura para productos nuevos")
	tokenUser := flag.String("token-user", "", "imprime un token de desarrollo para este usuario")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if err := runSeed(context.Background(), cfg, log, *withStock, *tokenUser); err != nil {
		log.Error().Err(err).Msg("seed")
		os.Exit(1)
	}
	log.Info().Msg("seed finalizado")
}

// runSeed cierra la aplicación antes de retornar, con o sin error.
func runSeed(ctx context.Context, cfg *config.Config, log *logger.Logger, withStock bool, tokenUser string) error {
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("inicializar aplicación: %w", err)
	}
	defer app.Close()

	if err := seed(ctx, app, log, withStock); err != nil {
		return err
	}
	if tokenUser != "" {
		tok, err := jwt.Generate(cfg.JWT.Secret, tokenUser, cfg.JWT.Issuer, 24*60)
		if err != nil {
			return fmt.Errorf("generar token: %w", err)
		}
		fmt.Println(tok)
	}
	return nil
}

func seed(ctx context.Context, app *bootstrap.App, log *logger.Logger, withStock bool) error {
	wh, err := app.Warehouse.Create(ctx, dto.CreateWarehouseRequest{
		Code:    "WH01",
		Name:    "Gudang Pusat Jakarta",
		Address: "Jl. Jendral Sudirman No. 1, Jakarta Pusat",
	})
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		if wh, err = findWarehouse(ctx, app, "WH01"); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("bodega: %w", err)
	default:
		log.Info().Str("code", wh.Code).Msg("bodega creada")
	}

	catIDs := make(map[string]string)
	for _, c := range categories {
		if _, err := app.Catalog.CreateCategory(ctx, c); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("categoría %s: %w", c.Name, err)
		}
	}
	list, err := app.Catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range list {
		catIDs[c.Name] = c.ID
	}

	unitIDs := make(map[string]string)
	for _, u := range units {
		if _, err := app.Catalog.CreateUnit(ctx, u); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("unidad %s: %w", u.Name, err)
		}
	}
	ulist, err := app.Catalog.ListUnits(ctx)
	if err != nil {
		return err
	}
	for _, u := range ulist {
		unitIDs[u.Name] = u.ID
	}

	var opening []inventory.ItemInput
	for _, p := range products {
		price := decimal.RequireFromString(p.price)
		out, err := app.Products.Create(ctx, dto.CreateProductRequest{
			SKU:           p.sku,
			Name:          p.name,
			CategoryID:    catIDs[p.category],
			UnitID:        unitIDs[p.unit],
			PurchasePrice: &price,
		})
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		if err != nil {
			return fmt.Errorf("producto %s: %w", p.sku, err)
		}
		log.Info().Str("sku", out.SKU).Msg("producto creado")
		opening = append(opening, inventory.ItemInput{ProductID: out.ID, Quantity: p.opening})
	}

	if !withStock || len(opening) == 0 {
		return nil
	}
	t, err := app.Ledger.CreateStockIn(ctx, inventory.StockInInput{
		WarehouseID: wh.ID,
		Items:       opening,
		Supplier:    "Saldo inicial",
		Notes:       "Stock de apertura",
		CreatedBy:   seedActor,
	})
	if err != nil {
		return fmt.Errorf("stock de apertura: %w", err)
	}
	log.Info().Str("reference", t.ReferenceNumber).Int("items", len(t.Items)).Msg("stock de apertura registrado")
	return nil
}

func findWarehouse(ctx context.Context, app *bootstrap.App, code string) (*dto.WarehouseResponse, error) {
	list, err := app.Warehouse.List(ctx, dto.PageRequest{Limit: 100})
	if err != nil {
		return nil, err
	}
	for i := range list.Items {
		if list.Items[i].Code == code {
			return &list.Items[i], nil
		}
	}
	return nil, domain.NotFound("bodega", code)
}
