package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// DirectoryUseCase administra el directorio de ingredientes: alta, consulta y
// configuración de rendimiento. El agregado de stock solo lo mutan las
// operaciones del libro mayor, nunca este caso de uso.
type DirectoryUseCase struct {
	ingRepo repository.IngredientRepository
}

// NewDirectoryUseCase construye el caso de uso.
func NewDirectoryUseCase(ingRepo repository.IngredientRepository) *DirectoryUseCase {
	return &DirectoryUseCase{ingRepo: ingRepo}
}

// CreateIngredientInput entrada para dar de alta un ingrediente.
type CreateIngredientInput struct {
	Name           string
	Unit           string
	MinStock       decimal.Decimal
	MaxStock       decimal.Decimal
	BaseYieldRatio decimal.Decimal
	ProcessYields  []entity.ProcessYield
}

// Create da de alta un ingrediente con stock cero y su perfil de rendimiento.
func (uc *DirectoryUseCase) Create(ctx context.Context, in CreateIngredientInput) (*entity.Ingredient, error) {
	if in.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "requerido"}
	}
	if in.Unit == "" {
		return nil, &domain.ValidationError{Field: "unit", Reason: "requerido"}
	}
	base := in.BaseYieldRatio
	if base.IsZero() {
		base = decimal.NewFromInt(1)
	}
	if !base.IsPositive() || base.GreaterThan(decimal.NewFromInt(1)) {
		return nil, &domain.ValidationError{Field: "base_yield_ratio", Reason: "debe estar en (0, 1]"}
	}
	for _, py := range in.ProcessYields {
		if py.ProcessType == "" || !py.YieldRatio.IsPositive() || py.YieldRatio.GreaterThan(decimal.NewFromInt(1)) {
			return nil, &domain.ValidationError{Field: "process_yields", Reason: "tipo requerido y ratio en (0, 1]"}
		}
	}

	now := time.Now()
	ing := &entity.Ingredient{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Unit:         in.Unit,
		CurrentStock: decimal.Zero,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		Yield: entity.YieldProfile{
			BaseYieldRatio: base,
			ProcessYields:  in.ProcessYields,
		},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.ingRepo.Create(ing); err != nil {
		return nil, err
	}
	return ing, nil
}

// GetByID obtiene un ingrediente por id.
func (uc *DirectoryUseCase) GetByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	ing, err := uc.ingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, domain.ErrNotFound
	}
	return ing, nil
}

// List lista los ingredientes (solo activos si activeOnly).
func (uc *DirectoryUseCase) List(ctx context.Context, activeOnly bool) ([]*entity.Ingredient, error) {
	return uc.ingRepo.List(activeOnly)
}
