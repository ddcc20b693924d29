package repository

import (
	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

// IngredientRepository define el puerto del directorio de ingredientes,
// incluido el agregado de stock desnormalizado.
type IngredientRepository interface {
	Create(i *entity.Ingredient) error
	GetByID(id string) (*entity.Ingredient, error)
	// GetForUpdate bloquea la fila del ingrediente dentro de la transacción; serializa
	// los consumos concurrentes sobre un mismo ingrediente.
	GetForUpdate(id string) (*entity.Ingredient, error)
	Update(i *entity.Ingredient) error
	List(activeOnly bool) ([]*entity.Ingredient, error)
	// AdjustStock suma delta (con signo) al agregado de stock del ingrediente.
	AdjustStock(id string, delta decimal.Decimal) error
	// SetStock sobrescribe el agregado (recomputación desde el libro mayor).
	SetStock(id string, quantity decimal.Decimal) error
}
