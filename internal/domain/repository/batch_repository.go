package repository

import (
	"time"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes.
// Las implementaciones transaccionales deben soportar GetForUpdate
// (bloqueo de fila) para serializar mutaciones concurrentes.
type BatchRepository interface {
	Create(b *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila del lote dentro de la transacción (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Batch, error)
	Update(b *entity.Batch) error
	// ListByIngredient lista los lotes de un ingrediente; si statuses no es vacío, filtra por estado.
	ListByIngredient(ingredientID string, statuses []string) ([]*entity.Batch, error)
	// ListFIFOCandidates devuelve los lotes available y no bloqueados de un ingrediente,
	// ordenados por receivedAt ascendente con desempate determinista por id.
	ListFIFOCandidates(ingredientID string) ([]*entity.Batch, error)
	// ListExpiring devuelve lotes available/reserved con vencimiento dentro de [now, until],
	// ordenados por vencimiento más próximo.
	ListExpiring(now, until time.Time) ([]*entity.Batch, error)
	// ListExpired devuelve lotes available/reserved ya vencidos respecto a now.
	ListExpired(now time.Time) ([]*entity.Batch, error)
}
