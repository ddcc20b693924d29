package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	batchpkg "github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/batch"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// ScannerUseCase resuelve las consultas de vencimiento y stock bajo, y el
// barrido explícito de vencidos. Las consultas son de solo lectura: el cambio
// de estado a expired vive únicamente en SweepExpired, pensado para un
// scheduler o una invocación manual.
type ScannerUseCase struct {
	batchRepo repository.BatchRepository
	ingRepo   repository.IngredientRepository
	txRunner  TxRunner
	audit     AuditSink
}

// NewScannerUseCase construye el caso de uso.
func NewScannerUseCase(batchRepo repository.BatchRepository, ingRepo repository.IngredientRepository, txRunner TxRunner, audit AuditSink) *ScannerUseCase {
	return &ScannerUseCase{batchRepo: batchRepo, ingRepo: ingRepo, txRunner: txRunner, audit: audit}
}

// ExpiringReport lotes por vencer y lotes ya vencidos (sin efectos laterales).
type ExpiringReport struct {
	ExpiringSoon   []*entity.Batch
	AlreadyExpired []*entity.Batch
}

// ExpiringSoon devuelve los lotes available/reserved que vencen dentro de
// [hoy, hoy+days] ordenados por vencimiento más próximo, junto con los ya
// vencidos. No muta nada.
func (uc *ScannerUseCase) ExpiringSoon(ctx context.Context, days int) (*ExpiringReport, error) {
	if days <= 0 {
		return nil, &domain.ValidationError{Field: "days", Reason: "debe ser positivo"}
	}
	now := time.Now()

	soon, err := uc.batchRepo.ListExpiring(now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	expired, err := uc.batchRepo.ListExpired(now)
	if err != nil {
		return nil, err
	}
	return &ExpiringReport{ExpiringSoon: soon, AlreadyExpired: expired}, nil
}

// SweepResult lotes marcados como expired por el barrido.
type SweepResult struct {
	Swept   []*entity.Batch
	Skipped []*entity.Batch // bloqueados en el momento del barrido
}

// SweepExpired transiciona a expired los lotes ya vencidos. Los lotes
// reservados se liberan primero (una reserva sobre producto vencido no vale
// nada) y los bloqueados se saltan: el titular del bloqueo los está manipulando.
func (uc *ScannerUseCase) SweepExpired(ctx context.Context, operatorID string) (*SweepResult, error) {
	now := time.Now()
	var result SweepResult

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.MovementRepository,
		_ repository.IngredientRepository,
	) error {
		expired, err := batchRepo.ListExpired(now)
		if err != nil {
			return err
		}
		for _, stale := range expired {
			b, err := batchRepo.GetForUpdate(stale.ID)
			if err != nil {
				return err
			}
			if b == nil || !b.IsExpired(now) {
				continue
			}
			if b.Lock.IsLocked {
				result.Skipped = append(result.Skipped, b)
				continue
			}
			if b.Status == entity.BatchStatusReserved {
				if err := batchpkg.Transition(b, entity.BatchStatusAvailable); err != nil {
					return err
				}
			}
			if b.Status != entity.BatchStatusAvailable {
				continue
			}
			if err := batchpkg.Transition(b, entity.BatchStatusExpired); err != nil {
				return err
			}
			b.UpdatedAt = now
			if err := batchRepo.Update(b); err != nil {
				return err
			}
			result.Swept = append(result.Swept, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Swept) > 0 && uc.audit != nil {
		entry := &entity.AuditEntry{
			ID:          uuid.New().String(),
			Action:      entity.AuditActionSweep,
			EntityKind:  "batch",
			OperatorID:  operatorID,
			Description: fmt.Sprintf("barrido de vencidos: %d lote(s) marcados expired", len(result.Swept)),
			Severity:    "warning",
			After:       result.Swept,
			CreatedAt:   time.Now(),
		}
		if err := uc.audit.Record(ctx, entry); err != nil {
			log.Warn().Err(err).Msg("no se pudo escribir la entrada de auditoría del barrido")
		}
	}
	return &result, nil
}

// LowStockReport ingredientes en o bajo el mínimo; critical es el subconjunto
// en o bajo la mitad del mínimo.
type LowStockReport struct {
	LowStock []*entity.Ingredient
	Critical []*entity.Ingredient
}

// LowStock compara el stock agregado de cada ingrediente activo con su mínimo.
func (uc *ScannerUseCase) LowStock(ctx context.Context) (*LowStockReport, error) {
	ingredients, err := uc.ingRepo.List(true)
	if err != nil {
		return nil, err
	}
	report := &LowStockReport{}
	for _, ing := range ingredients {
		if !ing.MinStock.IsPositive() {
			continue
		}
		if ing.IsLowStock() {
			report.LowStock = append(report.LowStock, ing)
			if ing.IsCriticalStock() {
				report.Critical = append(report.Critical, ing)
			}
		}
	}
	return report, nil
}
