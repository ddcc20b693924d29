package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	batchpkg "github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/batch"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// LedgerUseCase implementa las operaciones mutantes del motor de lotes:
// recepción, consumo FIFO, procesamiento, baja, conteo, bloqueo y reserva.
// Cada operación corre dentro de una transacción (TxRunner) y emite un evento
// de auditoría tras el commit.
type LedgerUseCase struct {
	txRunner TxRunner
	ingRepo  repository.IngredientRepository
	audit    AuditSink
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, ingRepo repository.IngredientRepository, audit AuditSink) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, ingRepo: ingRepo, audit: audit}
}

// recordAudit escribe el evento en el sink. Un fallo se registra en el log y se
// descarta: nunca aborta la operación de negocio.
func (uc *LedgerUseCase) recordAudit(ctx context.Context, e *entity.AuditEntry) {
	if uc.audit == nil {
		return
	}
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now()
	if e.Severity == "" {
		e.Severity = "info"
	}
	if err := uc.audit.Record(ctx, e); err != nil {
		log.Warn().Err(err).
			Str("action", e.Action).
			Str("entity_id", e.EntityID).
			Msg("no se pudo escribir la entrada de auditoría")
	}
}

// lockGuard rechaza la mutación si el lote está bloqueado por otro operador.
func lockGuard(b *entity.Batch, operatorID string) error {
	if b.Lock.IsLocked && b.Lock.LockedBy != operatorID {
		return &domain.LockedError{BatchID: b.ID, LockedBy: b.Lock.LockedBy}
	}
	return nil
}

// newBatchNumber genera un número de lote legible: LOT-YYYYMMDD-XXXXXXXX.
func newBatchNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("LOT-%s-%s", now.Format("20060102"), suffix)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

// ReceiveInput entrada para registrar la recepción de un lote.
type ReceiveInput struct {
	IngredientID  string
	GrossIn       decimal.Decimal
	UnitCost      decimal.Decimal
	ExpiryDate    *time.Time
	SupplierID    string
	InvoiceNumber string
	BatchNumber   string
	Barcode       string
	OperatorID    string
}

// ReceiveResult lote creado y nuevo stock agregado del ingrediente.
type ReceiveResult struct {
	Batch    *entity.Batch
	NewStock decimal.Decimal
}

// Receive crea un lote aplicando el rendimiento base del ingrediente:
// netAvailable = grossIn × baseYieldRatio. Escribe un movimiento receive y
// suma el neto al agregado del ingrediente, todo en una transacción.
func (uc *LedgerUseCase) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	if in.IngredientID == "" {
		return nil, &domain.ValidationError{Field: "ingredient_id", Reason: "requerido"}
	}
	if !in.GrossIn.IsPositive() {
		return nil, &domain.ValidationError{Field: "gross_in", Reason: "debe ser positivo"}
	}
	if !in.UnitCost.IsPositive() {
		return nil, &domain.ValidationError{Field: "unit_cost", Reason: "debe ser positivo"}
	}

	now := time.Now()
	var result ReceiveResult

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.MovementRepository,
		ingRepo repository.IngredientRepository,
	) error {
		ing, err := ingRepo.GetForUpdate(in.IngredientID)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}

		yield := batchpkg.ReceiptYield(in.GrossIn, ing.Yield)
		batchNumber := in.BatchNumber
		if batchNumber == "" {
			batchNumber = newBatchNumber(now)
		}

		b := &entity.Batch{
			ID:            uuid.New().String(),
			BatchNumber:   batchNumber,
			Barcode:       in.Barcode,
			IngredientID:  ing.ID,
			GrossIn:       in.GrossIn,
			NetAvailable:  yield.Output,
			UsedAmount:    decimal.Zero,
			WastedAmount:  yield.Waste,
			UnitCost:      in.UnitCost,
			TotalCost:     in.GrossIn.Mul(in.UnitCost),
			SupplierID:    in.SupplierID,
			InvoiceNumber: in.InvoiceNumber,
			Status:        entity.BatchStatusAvailable,
			ReceivedAt:    now,
			ExpiryDate:    in.ExpiryDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := batchRepo.Create(b); err != nil {
			return err
		}

		mov := &entity.Movement{
			IngredientID:  ing.ID,
			BatchID:       b.ID,
			Type:          entity.MovementTypeReceive,
			Quantity:      yield.Output,
			GrossQuantity: in.GrossIn,
			NetQuantity:   yield.Output,
			UnitCost:      in.UnitCost,
			TotalCost:     b.TotalCost,
			WasteFactor:   decimal.NewFromInt(1).Sub(yield.Ratio),
			Reason:        "recepción de lote " + batchNumber,
			ReasonCode:    "receive",
			OperatorID:    in.OperatorID,
			Timestamp:     now,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		if err := ingRepo.AdjustStock(ing.ID, yield.Output); err != nil {
			return err
		}

		result.Batch = b
		result.NewStock = ing.CurrentStock.Add(yield.Output)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAudit(ctx, &entity.AuditEntry{
		Action:      entity.AuditActionReceive,
		EntityKind:  "batch",
		EntityID:    result.Batch.ID,
		OperatorID:  in.OperatorID,
		Description: fmt.Sprintf("recepción %s: bruto %s, neto %s", result.Batch.BatchNumber, in.GrossIn, result.Batch.NetAvailable),
		After:       result.Batch,
	})
	return &result, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumo FIFO
// ──────────────────────────────────────────────────────────────────────────────

// ConsumeInput entrada para consumir stock de un ingrediente por producción.
type ConsumeInput struct {
	IngredientID  string
	Quantity      decimal.Decimal
	ProductionRef string
	Reason        string
	Notes         string
	OperatorID    string
}

// ConsumedBatch desglose por lote de un consumo.
type ConsumedBatch struct {
	BatchID     string
	BatchNumber string
	Consumed    decimal.Decimal
	Remaining   decimal.Decimal
	Cost        decimal.Decimal
	Depleted    bool
}

// ConsumeResult costo total, desglose por lote y nuevo stock agregado.
type ConsumeResult struct {
	TotalCost decimal.Decimal
	Batches   []ConsumedBatch
	NewStock  decimal.Decimal
}

// Consume satisface la cantidad solicitada drenando lotes en orden de recepción
// (FIFO). La verificación de factibilidad ocurre antes de tocar cualquier lote:
// si el disponible total no alcanza, falla sin mutación. Todo el recorrido corre
// en una sola transacción con la fila del ingrediente bloqueada, por lo que dos
// consumos concurrentes del mismo ingrediente se serializan.
func (uc *LedgerUseCase) Consume(ctx context.Context, in ConsumeInput) (*ConsumeResult, error) {
	if in.IngredientID == "" {
		return nil, &domain.ValidationError{Field: "ingredient_id", Reason: "requerido"}
	}
	if !in.Quantity.IsPositive() {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "debe ser positiva"}
	}

	now := time.Now()
	result := ConsumeResult{TotalCost: decimal.Zero}

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.MovementRepository,
		ingRepo repository.IngredientRepository,
	) error {
		ing, err := ingRepo.GetForUpdate(in.IngredientID)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}

		// Candidatos: available y sin bloqueo, ya ordenados por receivedAt asc
		// con desempate determinista por id.
		candidates, err := batchRepo.ListFIFOCandidates(ing.ID)
		if err != nil {
			return err
		}

		// Factibilidad antes de cualquier escritura.
		available := decimal.Zero
		for _, b := range candidates {
			available = available.Add(b.NetAvailable)
		}
		if available.LessThan(in.Quantity) {
			return &domain.InsufficientStockError{
				IngredientID: ing.ID,
				Requested:    in.Quantity,
				Available:    available,
			}
		}

		reason := in.Reason
		if reason == "" {
			reason = "consumo por producción"
		}

		remaining := in.Quantity
		for _, b := range candidates {
			if !remaining.IsPositive() {
				break
			}
			take := decimal.Min(remaining, b.NetAvailable)
			b.NetAvailable = b.NetAvailable.Sub(take)
			b.UsedAmount = b.UsedAmount.Add(take)
			b.UpdatedAt = now
			batchpkg.ForceDepleteIfEmpty(b)
			if err := batchRepo.Update(b); err != nil {
				return err
			}

			cost := take.Mul(b.UnitCost)
			mov := &entity.Movement{
				IngredientID:  ing.ID,
				BatchID:       b.ID,
				Type:          entity.MovementTypeRecipeUse,
				Quantity:      take.Neg(),
				NetQuantity:   take.Neg(),
				UnitCost:      b.UnitCost,
				TotalCost:     take.Neg().Mul(b.UnitCost),
				Reason:        reason,
				ReasonCode:    "recipe_use",
				ProductionRef: in.ProductionRef,
				OperatorID:    in.OperatorID,
				Timestamp:     now,
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}

			result.Batches = append(result.Batches, ConsumedBatch{
				BatchID:     b.ID,
				BatchNumber: b.BatchNumber,
				Consumed:    take,
				Remaining:   b.NetAvailable,
				Cost:        cost,
				Depleted:    b.Status == entity.BatchStatusDepleted,
			})
			result.TotalCost = result.TotalCost.Add(cost)
			remaining = remaining.Sub(take)
		}

		if err := ingRepo.AdjustStock(ing.ID, in.Quantity.Neg()); err != nil {
			return err
		}
		result.NewStock = ing.CurrentStock.Sub(in.Quantity)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recordAudit(ctx, &entity.AuditEntry{
		Action:      entity.AuditActionConsume,
		EntityKind:  "ingredient",
		EntityID:    in.IngredientID,
		OperatorID:  in.OperatorID,
		Description: fmt.Sprintf("consumo FIFO de %s en %d lote(s), costo %s", in.Quantity, len(result.Batches), result.TotalCost),
		After:       result.Batches,
	})
	return &result, nil
}
