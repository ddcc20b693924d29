package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

// MovementRepository define el puerto del libro mayor. Solo hay escritura por
// Create: los movimientos nunca se actualizan ni se borran.
type MovementRepository interface {
	Create(m *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	ListByIngredient(ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	ListByBatch(batchID string, limit, offset int) ([]*entity.Movement, error)
	// SumNetByIngredient devuelve la suma con signo de las cantidades de todos los
	// movimientos del ingrediente (base de la recomputación del agregado).
	SumNetByIngredient(ingredientID string) (decimal.Decimal, error)
}
