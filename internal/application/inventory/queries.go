package inventory

import (
	"context"
	"time"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// QueryUseCase resuelve la superficie de lectura: lotes por ingrediente,
// lote por id y movimientos del libro mayor, fuera de toda transacción.
type QueryUseCase struct {
	batchRepo repository.BatchRepository
	movRepo   repository.MovementRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(batchRepo repository.BatchRepository, movRepo repository.MovementRepository) *QueryUseCase {
	return &QueryUseCase{batchRepo: batchRepo, movRepo: movRepo}
}

// GetBatch obtiene un lote por id.
func (uc *QueryUseCase) GetBatch(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := uc.batchRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// ListBatches lista los lotes de un ingrediente, opcionalmente filtrados por estado.
func (uc *QueryUseCase) ListBatches(ctx context.Context, ingredientID string, statuses []string) ([]*entity.Batch, error) {
	if ingredientID == "" {
		return nil, &domain.ValidationError{Field: "ingredient_id", Reason: "requerido"}
	}
	return uc.batchRepo.ListByIngredient(ingredientID, statuses)
}

// ListMovements lista el libro mayor por ingrediente o por lote con rango de
// fechas y paginación. Solo lectura; el libro nunca se reescribe.
func (uc *QueryUseCase) ListMovements(ctx context.Context, ingredientID, batchID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	switch {
	case batchID != "":
		return uc.movRepo.ListByBatch(batchID, limit, offset)
	case ingredientID != "":
		return uc.movRepo.ListByIngredient(ingredientID, from, to, limit, offset)
	default:
		return nil, &domain.ValidationError{Field: "ingredient_id", Reason: "se requiere ingredient_id o batch_id"}
	}
}
