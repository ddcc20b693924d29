package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

// ReceiveBatchRequest body para POST /api/batches/receive.
type ReceiveBatchRequest struct {
	IngredientID  string          `json:"ingredient_id"`
	GrossIn       decimal.Decimal `json:"gross_in"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	Barcode       string          `json:"barcode,omitempty"`
}

// ConsumeRequest body para POST /api/batches/consume.
type ConsumeRequest struct {
	IngredientID  string          `json:"ingredient_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	ProductionRef string          `json:"production_ref,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// ConsumedBatchDTO porción consumida de un lote.
type ConsumedBatchDTO struct {
	BatchID     string          `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Consumed    decimal.Decimal `json:"consumed"`
	Remaining   decimal.Decimal `json:"remaining"`
	Cost        decimal.Decimal `json:"cost"`
	Depleted    bool            `json:"depleted"`
}

// ConsumeResponse resultado del consumo FIFO.
type ConsumeResponse struct {
	TotalCost decimal.Decimal    `json:"total_cost"`
	Batches   []ConsumedBatchDTO `json:"batches"`
	NewStock  decimal.Decimal    `json:"new_ingredient_stock"`
}

// ProcessRequest body para POST /api/batches/:id/process.
type ProcessRequest struct {
	ProcessType string           `json:"process_type"`
	YieldRatio  *decimal.Decimal `json:"yield_ratio,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// ProcessResponse resultado del procesamiento.
type ProcessResponse struct {
	Batch        *BatchDTO       `json:"batch"`
	YieldRatio   decimal.Decimal `json:"yield_ratio"`
	InputAmount  decimal.Decimal `json:"input_amount"`
	OutputAmount decimal.Decimal `json:"output_amount"`
	WasteAmount  decimal.Decimal `json:"waste_amount"`
}

// WriteOffRequest body para POST /api/batches/:id/write-off.
type WriteOffRequest struct {
	Reason   string           `json:"reason"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Notes    string           `json:"notes,omitempty"`
}

// WriteOffResponse resultado de la baja.
type WriteOffResponse struct {
	Batch        *BatchDTO       `json:"batch"`
	Quantity     decimal.Decimal `json:"quantity"`
	Cost         decimal.Decimal `json:"cost"`
	FullWriteOff bool            `json:"full_write_off"`
}

// CountRequest body para POST /api/batches/:id/count.
type CountRequest struct {
	ActualQuantity decimal.Decimal `json:"actual_quantity"`
	Notes          string          `json:"notes,omitempty"`
}

// CountResponse resultado de la reconciliación.
type CountResponse struct {
	Batch              *BatchDTO       `json:"batch"`
	SystemQuantity     decimal.Decimal `json:"system_quantity"`
	ActualQuantity     decimal.Decimal `json:"actual_quantity"`
	Discrepancy        decimal.Decimal `json:"discrepancy"`
	DiscrepancyPercent decimal.Decimal `json:"discrepancy_percent"`
}

// LockRequest body para POST /api/batches/:id/lock.
type LockRequest struct {
	Reason string `json:"reason,omitempty"`
}

// UnlockRequest body para POST /api/batches/:id/unlock.
type UnlockRequest struct {
	Force bool `json:"force,omitempty"`
}

// ReserveRequest body para reserve/release.
type ReserveRequest struct {
	ProductionRef string `json:"production_ref,omitempty"`
}

// CreateIngredientRequest body para POST /api/ingredients.
type CreateIngredientRequest struct {
	Name           string                `json:"name"`
	Unit           string                `json:"unit"`
	MinStock       decimal.Decimal       `json:"min_stock"`
	MaxStock       decimal.Decimal       `json:"max_stock"`
	BaseYieldRatio decimal.Decimal       `json:"base_yield_ratio"`
	ProcessYields  []entity.ProcessYield `json:"process_yields,omitempty"`
}

// BatchDTO representación HTTP de un lote.
type BatchDTO struct {
	ID             string                 `json:"id"`
	BatchNumber    string                 `json:"batch_number"`
	Barcode        string                 `json:"barcode,omitempty"`
	IngredientID   string                 `json:"ingredient_id"`
	GrossIn        decimal.Decimal        `json:"gross_in"`
	NetAvailable   decimal.Decimal        `json:"net_available"`
	UsedAmount     decimal.Decimal        `json:"used_amount"`
	WastedAmount   decimal.Decimal        `json:"wasted_amount"`
	UnitCost       decimal.Decimal        `json:"unit_cost"`
	TotalCost      decimal.Decimal        `json:"total_cost"`
	SupplierID     string                 `json:"supplier_id,omitempty"`
	InvoiceNumber  string                 `json:"invoice_number,omitempty"`
	Status         string                 `json:"status"`
	ReceivedAt     time.Time              `json:"received_at"`
	ExpiryDate     *time.Time             `json:"expiry_date,omitempty"`
	ProcessHistory []entity.ProcessRecord `json:"process_history,omitempty"`
	Lock           entity.BatchLock       `json:"lock"`
}

// NewBatchDTO convierte la entidad al DTO de respuesta.
func NewBatchDTO(b *entity.Batch) *BatchDTO {
	if b == nil {
		return nil
	}
	return &BatchDTO{
		ID:             b.ID,
		BatchNumber:    b.BatchNumber,
		Barcode:        b.Barcode,
		IngredientID:   b.IngredientID,
		GrossIn:        b.GrossIn,
		NetAvailable:   b.NetAvailable,
		UsedAmount:     b.UsedAmount,
		WastedAmount:   b.WastedAmount,
		UnitCost:       b.UnitCost,
		TotalCost:      b.TotalCost,
		SupplierID:     b.SupplierID,
		InvoiceNumber:  b.InvoiceNumber,
		Status:         b.Status,
		ReceivedAt:     b.ReceivedAt,
		ExpiryDate:     b.ExpiryDate,
		ProcessHistory: b.ProcessHistory,
		Lock:           b.Lock,
	}
}

// NewBatchDTOs convierte una lista de entidades.
func NewBatchDTOs(batches []*entity.Batch) []*BatchDTO {
	out := make([]*BatchDTO, 0, len(batches))
	for _, b := range batches {
		out = append(out, NewBatchDTO(b))
	}
	return out
}

// IngredientDTO representación HTTP de un ingrediente.
type IngredientDTO struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Unit         string              `json:"unit"`
	CurrentStock decimal.Decimal     `json:"current_stock"`
	MinStock     decimal.Decimal     `json:"min_stock"`
	MaxStock     decimal.Decimal     `json:"max_stock"`
	Yield        entity.YieldProfile `json:"yield_profile"`
	Active       bool                `json:"active"`
}

// NewIngredientDTO convierte la entidad al DTO de respuesta.
func NewIngredientDTO(i *entity.Ingredient) *IngredientDTO {
	if i == nil {
		return nil
	}
	return &IngredientDTO{
		ID:           i.ID,
		Name:         i.Name,
		Unit:         i.Unit,
		CurrentStock: i.CurrentStock,
		MinStock:     i.MinStock,
		MaxStock:     i.MaxStock,
		Yield:        i.Yield,
		Active:       i.Active,
	}
}

// NewIngredientDTOs convierte una lista de entidades.
func NewIngredientDTOs(ingredients []*entity.Ingredient) []*IngredientDTO {
	out := make([]*IngredientDTO, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, NewIngredientDTO(i))
	}
	return out
}

// MovementDTO representación HTTP de una entrada del libro mayor.
type MovementDTO struct {
	ID            string          `json:"id"`
	IngredientID  string          `json:"ingredient_id"`
	BatchID       string          `json:"batch_id,omitempty"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	GrossQuantity decimal.Decimal `json:"gross_quantity"`
	NetQuantity   decimal.Decimal `json:"net_quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	WasteFactor   decimal.Decimal `json:"waste_factor"`
	Reason        string          `json:"reason,omitempty"`
	ReasonCode    string          `json:"reason_code,omitempty"`
	ProductionRef string          `json:"production_ref,omitempty"`
	OperatorID    string          `json:"operator_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewMovementDTOs convierte una lista de movimientos.
func NewMovementDTOs(movements []*entity.Movement) []*MovementDTO {
	out := make([]*MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, &MovementDTO{
			ID:            m.ID,
			IngredientID:  m.IngredientID,
			BatchID:       m.BatchID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			GrossQuantity: m.GrossQuantity,
			NetQuantity:   m.NetQuantity,
			UnitCost:      m.UnitCost,
			TotalCost:     m.TotalCost,
			WasteFactor:   m.WasteFactor,
			Reason:        m.Reason,
			ReasonCode:    m.ReasonCode,
			ProductionRef: m.ProductionRef,
			OperatorID:    m.OperatorID,
			Timestamp:     m.Timestamp,
		})
	}
	return out
}
