package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// RecomputeResult reporte de la reconstrucción del agregado desde el libro mayor.
type RecomputeResult struct {
	IngredientID string
	Previous     decimal.Decimal
	Recomputed   decimal.Decimal
	Drift        decimal.Decimal
}

// RecomputeStock reconstruye el agregado currentStock de un ingrediente como la
// suma con signo de sus movimientos. El libro mayor es la verdad: cualquier
// divergencia del agregado es un defecto y aquí se repara, no se tolera.
func (uc *LedgerUseCase) RecomputeStock(ctx context.Context, ingredientID string) (*RecomputeResult, error) {
	if ingredientID == "" {
		return nil, &domain.ValidationError{Field: "ingredient_id", Reason: "requerido"}
	}

	var result RecomputeResult
	err := uc.txRunner.Run(ctx, func(
		_ repository.BatchRepository,
		movRepo repository.MovementRepository,
		ingRepo repository.IngredientRepository,
	) error {
		ing, err := ingRepo.GetForUpdate(ingredientID)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}
		sum, err := movRepo.SumNetByIngredient(ingredientID)
		if err != nil {
			return fmt.Errorf("sumar movimientos: %w", err)
		}
		if err := ingRepo.SetStock(ingredientID, sum); err != nil {
			return err
		}
		result = RecomputeResult{
			IngredientID: ingredientID,
			Previous:     ing.CurrentStock,
			Recomputed:   sum,
			Drift:        sum.Sub(ing.CurrentStock),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
