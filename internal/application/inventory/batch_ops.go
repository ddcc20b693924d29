package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	batchpkg "github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/batch"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// Vocabulario cerrado de motivos de baja. Lo que no calce se registra como "other".
var writeOffReasons = map[string]string{
	"spoiled":      "spoiled",
	"expired":      "expired",
	"damaged":      "damaged",
	"contaminated": "contaminated",
	"lost":         "lost",
	"breakage":     "breakage",
}

func writeOffReasonCode(reason string) string {
	if code, ok := writeOffReasons[reason]; ok {
		return code
	}
	return "other"
}

// ──────────────────────────────────────────────────────────────────────────────
// Procesamiento (rendimiento)
// ──────────────────────────────────────────────────────────────────────────────

// ProcessInput entrada para aplicar un proceso (limpieza, cocción, porcionado) a un lote.
type ProcessInput struct {
	BatchID     string
	ProcessType string
	YieldRatio  *decimal.Decimal // explícito; si es nil se usa el perfil o el default
	Notes       string
	OperatorID  string
}

// ProcessResult lote actualizado y desglose de la transformación.
type ProcessResult struct {
	Batch *entity.Batch
	Yield batchpkg.YieldResult
}

// Process aplica el rendimiento efectivo al neto del lote: nuevoNeto = neto × ratio,
// merma = neto − nuevoNeto. Nunca aumenta el stock usable. Escribe el registro en
// processHistory, un movimiento process negativo por la merma y descuenta la merma
// del agregado del ingrediente.
func (uc *LedgerUseCase) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	if in.BatchID == "" {
		return nil, &domain.ValidationError{Field: "batch_id", Reason: "requerido"}
	}
	if in.ProcessType == "" {
		return nil, &domain.ValidationError{Field: "process_type", Reason: "requerido"}
	}
	if in.YieldRatio != nil && (!in.YieldRatio.IsPositive() || in.YieldRatio.GreaterThan(decimal.NewFromInt(1))) {
		return nil, &domain.ValidationError{Field: "yield_ratio", Reason: "debe estar en (0, 1]"}
	}

	now := time.Now()
	var result ProcessResult

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.MovementRepository,
		ingRepo repository.IngredientRepository,
	) error {
		b, err := batchRepo.GetForUpdate(in.BatchID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if err := lockGuard(b, in.OperatorID); err != nil {
			return err
		}
		if b.Status != entity.BatchStatusAvailable && b.Status != entity.BatchStatusProcessing {
			return &domain.TransitionError{From: b.Status, To: entity.BatchStatusProcessing, Allowed: batchpkg.AllowedTransitions(b.Status)}
		}
		if !b.NetAvailable.IsPositive() {
			return &domain.ValidationError{Field: "net_available", Reason: "el lote no tiene neto disponible"}
		}

		ing, err := ingRepo.GetForUpdate(b.IngredientID)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}

		ratio := batchpkg.EffectiveYield(ing.Yield, in.ProcessType, in.YieldRatio)
		yield := batchpkg.ApplyYield(b.NetAvailable, ratio)

		b.NetAvailable = yield.Output
		b.WastedAmount = b.WastedAmount.Add(yield.Waste)
		b.ProcessHistory = append(b.ProcessHistory, entity.ProcessRecord{
			Type:         in.ProcessType,
			YieldRatio:   ratio,
			InputAmount:  yield.Input,
			OutputAmount: yield.Output,
			WasteAmount:  yield.Waste,
			ProcessedAt:  now,
			ProcessedBy:  in.OperatorID,
			Notes:        in.Notes,
		})
		b.Status = entity.BatchStatusAvailable
		b.UpdatedAt = now
		batchpkg.ForceDepleteIfEmpty(b)
		if err := batchRepo.Update(b); err != nil {
			return err
		}

		mov := &entity.Movement{
			IngredientID: b.IngredientID,
			BatchID:      b.ID,
			Type:         entity.MovementTypeProcess,
			Quantity:     yield.Waste.Neg(),
			NetQuantity:  yield.Waste.Neg(),
			UnitCost:     b.UnitCost,
			TotalCost:    yield.Waste.Neg().Mul(b.UnitCost),
			WasteFactor:  decimal.NewFromInt(1).Sub(ratio),
			Reason:       fmt.Sprintf("merma por proceso %s", in.ProcessType),
			ReasonCode:   in.ProcessType,
			OperatorID:   in.OperatorID,
			Timestamp:    now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		if err := ingRepo.AdjustStock(ing.ID, yield.Waste.Neg()); err != nil {
			return err
		}

		result.Batch = b
		result.Yield = yield
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAudit(ctx, &entity.AuditEntry{
		Action:      entity.AuditActionProcess,
		EntityKind:  "batch",
		EntityID:    result.Batch.ID,
		OperatorID:  in.OperatorID,
		Description: fmt.Sprintf("proceso %s: entrada %s, salida %s, merma %s", in.ProcessType, result.Yield.Input, result.Yield.Output, result.Yield.Waste),
		After:       result.Batch,
	})
	return &result, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Baja (write-off)
// ──────────────────────────────────────────────────────────────────────────────

// WriteOffInput entrada para dar de baja cantidad de un lote.
// Quantity nil da de baja todo el remanente.
type WriteOffInput struct {
	BatchID    string
	Reason     string
	Quantity   *decimal.Decimal
	Notes      string
	OperatorID string
}

// WriteOffResult lote actualizado y detalle de la baja.
type WriteOffResult struct {
	Batch        *entity.Batch
	Quantity     decimal.Decimal
	Cost         decimal.Decimal
	FullWriteOff bool
}

// WriteOff descuenta cantidad del lote de forma definitiva. La cantidad se
// limita al neto disponible; si consume todo el remanente (dentro de epsilon)
// el lote pasa a written_off, si no el estado no cambia.
func (uc *LedgerUseCase) WriteOff(ctx context.Context, in WriteOffInput) (*WriteOffResult, error) {
	if in.BatchID == "" {
		return nil, &domain.ValidationError{Field: "batch_id", Reason: "requerido"}
	}
	if in.Reason == "" {
		return nil, &domain.ValidationError{Field: "reason", Reason: "requerido"}
	}
	if in.Quantity != nil && !in.Quantity.IsPositive() {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "debe ser positiva"}
	}

	now := time.Now()
	var result WriteOffResult

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.MovementRepository,
		ingRepo repository.IngredientRepository,
	) error {
		b, err := batchRepo.GetForUpdate(in.BatchID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if b.Status == entity.BatchStatusWrittenOff {
			return domain.ErrAlreadyTerminal
		}
		if err := lockGuard(b, in.OperatorID); err != nil {
			return err
		}

		qty := b.NetAvailable
		if in.Quantity != nil {
			qty = decimal.Min(*in.Quantity, b.NetAvailable)
		}
		full := qty.GreaterThanOrEqual(b.NetAvailable.Sub(batchpkg.Epsilon))

		b.NetAvailable = b.NetAvailable.Sub(qty)
		b.WastedAmount = b.WastedAmount.Add(qty)
		b.UpdatedAt = now
		if full {
			if err := batchpkg.Transition(b, entity.BatchStatusWrittenOff); err != nil {
				return err
			}
			b.NetAvailable = decimal.Zero
		}
		if err := batchRepo.Update(b); err != nil {
			return err
		}

		cost := qty.Mul(b.UnitCost)
		mov := &entity.Movement{
			IngredientID: b.IngredientID,
			BatchID:      b.ID,
			Type:         entity.MovementTypeWriteOff,
			Quantity:     qty.Neg(),
			NetQuantity:  qty.Neg(),
			UnitCost:     b.UnitCost,
			TotalCost:    cost.Neg(),
			Reason:       in.Reason,
			ReasonCode:   writeOffReasonCode(in.Reason),
			OperatorID:   in.OperatorID,
			Timestamp:    now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		if err := ingRepo.AdjustStock(b.IngredientID, qty.Neg()); err != nil {
			return err
		}

		result.Batch = b
		result.Quantity = qty
		result.Cost = cost
		result.FullWriteOff = full
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAudit(ctx, &entity.AuditEntry{
		Action:      entity.AuditActionWriteOff,
		EntityKind:  "batch",
		EntityID:    result.Batch.ID,
		OperatorID:  in.OperatorID,
		Description: fmt.Sprintf("baja de %s (%s), costo %s", result.Quantity, in.Reason, result.Cost),
		Severity:    "warning",
		After:       result.Batch,
	})
	return &result, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Conteo físico (reconciliación)
// ──────────────────────────────────────────────────────────────────────────────

// CountInput entrada para reconciliar un lote con su conteo físico.
type CountInput struct {
	BatchID        string
	ActualQuantity decimal.Decimal
	Notes          string
	OperatorID     string
}

// CountResult detalle de la reconciliación.
type CountResult struct {
	Batch              *entity.Batch
	SystemQuantity     decimal.Decimal
	ActualQuantity     decimal.Decimal
	Discrepancy        decimal.Decimal
	DiscrepancyPercent decimal.Decimal
}

// Count sobrescribe el neto del lote con la cantidad contada (no es un delta).
// Si |discrepancia| > epsilon, ajusta el agregado del ingrediente y escribe un
// único movimiento adjust con el signo de la discrepancia (positivo = sobrante,
// negativo = faltante). Un conteo exacto no genera movimiento.
func (uc *LedgerUseCase) Count(ctx context.Context, in CountInput) (*CountResult, error) {
	if in.BatchID == "" {
		return nil, &domain.ValidationError{Field: "batch_id", Reason: "requerido"}
	}
	if in.ActualQuantity.IsNegative() {
		return nil, &domain.ValidationError{Field: "actual_quantity", Reason: "no puede ser negativa"}
	}

	now := time.Now()
	var result CountResult

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.MovementRepository,
		ingRepo repository.IngredientRepository,
	) error {
		b, err := batchRepo.GetForUpdate(in.BatchID)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.ErrNotFound
		}
		if err := lockGuard(b, in.OperatorID); err != nil {
			return err
		}

		system := b.NetAvailable
		discrepancy := in.ActualQuantity.Sub(system)

		b.NetAvailable = in.ActualQuantity
		b.UpdatedAt = now
		batchpkg.ForceDepleteIfEmpty(b)
		if err := batchRepo.Update(b); err != nil {
			return err
		}

		if discrepancy.Abs().GreaterThan(batchpkg.Epsilon) {
			reason := in.Notes
			if reason == "" {
				reason = "ajuste por conteo físico"
			}
			mov := &entity.Movement{
				IngredientID: b.IngredientID,
				BatchID:      b.ID,
				Type:         entity.MovementTypeAdjust,
				Quantity:     discrepancy,
				NetQuantity:  discrepancy,
				UnitCost:     b.UnitCost,
				TotalCost:    discrepancy.Mul(b.UnitCost),
				Reason:       reason,
				ReasonCode:   "count",
				OperatorID:   in.OperatorID,
				Timestamp:    now,
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}
			if err := ingRepo.AdjustStock(b.IngredientID, discrepancy); err != nil {
				return err
			}
		}

		percent := decimal.Zero
		if !batchpkg.IsEffectivelyZero(system) {
			percent = discrepancy.Div(system).Mul(decimal.NewFromInt(100))
		}

		result.Batch = b
		result.SystemQuantity = system
		result.ActualQuantity = in.ActualQuantity
		result.Discrepancy = discrepancy
		result.DiscrepancyPercent = percent
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAudit(ctx, &entity.AuditEntry{
		Action:      entity.AuditActionCount,
		EntityKind:  "batch",
		EntityID:    result.Batch.ID,
		OperatorID:  in.OperatorID,
		Description: fmt.Sprintf("conteo: sistema %s, físico %s, discrepancia %s", result.SystemQuantity, result.ActualQuantity, result.Discrepancy),
		After:       result.Batch,
	})
	return &result, nil
}
