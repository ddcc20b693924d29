package inventory

import (
	"context"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de lotes:
// lectura-modificación de lotes + append al libro mayor + ajuste del agregado
// se confirman o revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		movRepo repository.MovementRepository,
		ingRepo repository.IngredientRepository,
	) error) error
}

// AuditSink recibe un evento estructurado por cada operación mutante.
// Los fallos del sink se registran y nunca se propagan: perder una entrada de
// auditoría no debe bloquear una operación de inventario.
type AuditSink interface {
	Record(ctx context.Context, e *entity.AuditEntry) error
}
