package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	batchpkg "github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/batch"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// Lock adquiere el bloqueo advisory del lote para el operador. Falla si ya está
// bloqueado, reportando al titular actual. Un lote bloqueado queda fuera del
// conjunto FIFO y rechaza Process/WriteOff/Count de terceros.
func (uc *LedgerUseCase) Lock(ctx context.Context, batchID, reason, operatorID string) (*entity.Batch, error) {
	if batchID == "" {
		return nil, &domain.ValidationError{Field: "batch_id", Reason: "requerido"}
	}
	if operatorID == "" {
		return nil, &domain.ValidationError{Field: "operator", Reason: "requerido"}
	}

	now := time.Now()
	var locked *entity.Batch

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.MovementRepository,
		_ repository.IngredientRepository,
	) error {
		b, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if b.Lock.IsLocked {
			return &domain.LockedError{BatchID: b.ID, LockedBy: b.Lock.LockedBy}
		}
		b.Lock = entity.BatchLock{IsLocked: true, LockedBy: operatorID, LockedAt: &now, Reason: reason}
		b.UpdatedAt = now
		if err := batchRepo.Update(b); err != nil {
			return err
		}
		locked = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAudit(ctx, &entity.AuditEntry{
		Action:      entity.AuditActionLock,
		EntityKind:  "batch",
		EntityID:    locked.ID,
		OperatorID:  operatorID,
		Description: fmt.Sprintf("lote %s bloqueado: %s", locked.BatchNumber, reason),
		After:       locked.Lock,
	})
	return locked, nil
}

// Unlock libera el bloqueo. Falla si el lote no está bloqueado. Si el caller no
// es el titular, exige force=true para forzar la liberación.
func (uc *LedgerUseCase) Unlock(ctx context.Context, batchID string, force bool, operatorID string) (*entity.Batch, error) {
	if batchID == "" {
		return nil, &domain.ValidationError{Field: "batch_id", Reason: "requerido"}
	}

	now := time.Now()
	var unlocked *entity.Batch
	var previousHolder string

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.MovementRepository,
		_ repository.IngredientRepository,
	) error {
		b, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if !b.Lock.IsLocked {
			return &domain.ValidationError{Field: "lock", Reason: "el lote no está bloqueado"}
		}
		if b.Lock.LockedBy != operatorID && !force {
			return &domain.LockedError{BatchID: b.ID, LockedBy: b.Lock.LockedBy}
		}
		previousHolder = b.Lock.LockedBy
		b.Lock = entity.BatchLock{}
		b.UpdatedAt = now
		if err := batchRepo.Update(b); err != nil {
			return err
		}
		unlocked = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	severity := "info"
	if force && previousHolder != operatorID {
		severity = "warning"
	}
	uc.recordAudit(ctx, &entity.AuditEntry{
		Action:      entity.AuditActionUnlock,
		EntityKind:  "batch",
		EntityID:    unlocked.ID,
		OperatorID:  operatorID,
		Description: fmt.Sprintf("lote %s desbloqueado (titular previo %q)", unlocked.BatchNumber, previousHolder),
		Severity:    severity,
	})
	return unlocked, nil
}

// Reserve aparta un lote available para una orden de producción: sale del
// conjunto FIFO sin alterar el agregado de stock. Escribe un movimiento reserve
// con cantidad cero (la reserva no cambia el stock neto).
func (uc *LedgerUseCase) Reserve(ctx context.Context, batchID, productionRef, operatorID string) (*entity.Batch, error) {
	return uc.flipReservation(ctx, batchID, productionRef, operatorID,
		entity.BatchStatusReserved, entity.MovementTypeReserve, entity.AuditActionReserve)
}

// Release devuelve un lote reserved al conjunto FIFO.
func (uc *LedgerUseCase) Release(ctx context.Context, batchID, productionRef, operatorID string) (*entity.Batch, error) {
	return uc.flipReservation(ctx, batchID, productionRef, operatorID,
		entity.BatchStatusAvailable, entity.MovementTypeRelease, entity.AuditActionRelease)
}

func (uc *LedgerUseCase) flipReservation(ctx context.Context, batchID, productionRef, operatorID, targetStatus, movType, auditAction string) (*entity.Batch, error) {
	if batchID == "" {
		return nil, &domain.ValidationError{Field: "batch_id", Reason: "requerido"}
	}

	now := time.Now()
	var updated *entity.Batch

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.MovementRepository,
		_ repository.IngredientRepository,
	) error {
		b, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if err := lockGuard(b, operatorID); err != nil {
			return err
		}
		if err := batchpkg.Transition(b, targetStatus); err != nil {
			return err
		}
		b.UpdatedAt = now
		if err := batchRepo.Update(b); err != nil {
			return err
		}

		mov := &entity.Movement{
			IngredientID:  b.IngredientID,
			BatchID:       b.ID,
			Type:          movType,
			NetQuantity:   b.NetAvailable,
			UnitCost:      b.UnitCost,
			Reason:        fmt.Sprintf("%s de lote %s", movType, b.BatchNumber),
			ReasonCode:    movType,
			ProductionRef: productionRef,
			OperatorID:    operatorID,
			Timestamp:     now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAudit(ctx, &entity.AuditEntry{
		Action:      auditAction,
		EntityKind:  "batch",
		EntityID:    updated.ID,
		OperatorID:  operatorID,
		Description: fmt.Sprintf("lote %s -> %s", updated.BatchNumber, updated.Status),
		After:       updated,
	})
	return updated, nil
}
