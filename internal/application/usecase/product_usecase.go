package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProductUseCase casos de uso de productos. El stock no se toca aquí: solo el ledger lo modifica.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	units      repository.UnitRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categories repository.CategoryRepository, units repository.UnitRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories, units: units}
}

// Create crea un producto. El SKU es único; categoría y unidad, si vienen, deben existir.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return nil, domain.Invalid("sku y nombre son obligatorios")
	}
	if in.PurchasePrice != nil && in.PurchasePrice.IsNegative() {
		return nil, domain.Invalid("el precio de compra no puede ser negativo")
	}

	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := uc.checkRefs(ctx, in.CategoryID, in.UnitID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &entity.Product{
		ID:            uuid.New().String(),
		SKU:           in.SKU,
		Name:          in.Name,
		CategoryID:    in.CategoryID,
		UnitID:        in.UnitID,
		PurchasePrice: in.PurchasePrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update aplica cambios parciales. Intentar cambiar el SKU es un error de validación.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	if in.SKU != nil && strings.TrimSpace(*in.SKU) != product.SKU {
		return nil, domain.Invalid("el sku %s es inmutable", product.SKU)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("el nombre no puede quedar vacío")
		}
		product.Name = name
	}
	if in.CategoryID != nil {
		product.CategoryID = strings.TrimSpace(*in.CategoryID)
	}
	if in.UnitID != nil {
		product.UnitID = strings.TrimSpace(*in.UnitID)
	}
	if in.PurchasePrice != nil {
		if in.PurchasePrice.IsNegative() {
			return nil, domain.Invalid("el precio de compra no puede ser negativo")
		}
		product.PurchasePrice = in.PurchasePrice
	}
	if err := uc.checkRefs(ctx, product.CategoryID, product.UnitID); err != nil {
		return nil, err
	}

	product.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

func (uc *ProductUseCase) checkRefs(ctx context.Context, categoryID, unitID string) error {
	if categoryID != "" {
		c, err := uc.categories.GetByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.Invalid("la categoría %s no existe", categoryID)
		}
	}
	if unitID != "" {
		u, err := uc.units.GetByID(ctx, unitID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.Invalid("la unidad %s no existe", unitID)
		}
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto", id)
	}
	return toProductResponse(product), nil
}

// List lista productos ordenados por SKU.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		CategoryID:    p.CategoryID,
		UnitID:        p.UnitID,
		PurchasePrice: p.PurchasePrice,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
