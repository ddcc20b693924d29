package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un lote.
const (
	BatchStatusReceived   = "received"
	BatchStatusInspecting = "inspecting"
	BatchStatusProcessing = "processing"
	BatchStatusAvailable  = "available"
	BatchStatusReserved   = "reserved"
	BatchStatusDepleted   = "depleted"
	BatchStatusExpired    = "expired"
	BatchStatusQuarantine = "quarantine"
	BatchStatusWrittenOff = "written_off"
)

// ProcessRecord es una entrada del historial de procesamiento de un lote
// (limpieza, cocción, porcionado). El historial es append-only.
type ProcessRecord struct {
	Type         string          `json:"type"`
	YieldRatio   decimal.Decimal `json:"yield_ratio"`
	InputAmount  decimal.Decimal `json:"input_amount"`
	OutputAmount decimal.Decimal `json:"output_amount"`
	WasteAmount  decimal.Decimal `json:"waste_amount"`
	ProcessedAt  time.Time       `json:"processed_at"`
	ProcessedBy  string          `json:"processed_by,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// BatchLock es el bloqueo advisory por lote: impide que dos flujos de
// manipulación física (procesar, contar, dar de baja) colisionen sobre el mismo lote.
type BatchLock struct {
	IsLocked bool       `json:"is_locked"`
	LockedBy string     `json:"locked_by,omitempty"`
	LockedAt *time.Time `json:"locked_at,omitempty"`
	Reason   string     `json:"reason,omitempty"`
}

// Batch representa un lote discreto de un ingrediente recibido en un momento dado,
// con costo y vencimiento propios. Es la unidad de bloqueo y del orden FIFO.
type Batch struct {
	ID            string
	BatchNumber   string // único, generado si no se proporciona
	Barcode       string
	IngredientID  string // referencia débil al directorio de ingredientes
	GrossIn       decimal.Decimal
	NetAvailable  decimal.Decimal
	UsedAmount    decimal.Decimal
	WastedAmount  decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	SupplierID    string
	InvoiceNumber string
	Status        string
	ReceivedAt    time.Time
	ExpiryDate    *time.Time
	ProcessHistory []ProcessRecord
	Lock          BatchLock
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal indica si el lote ya no admite transiciones salientes.
func (b *Batch) IsTerminal() bool {
	return b.Status == BatchStatusDepleted || b.Status == BatchStatusWrittenOff
}

// IsExpired indica si el lote ya pasó su fecha de vencimiento respecto a now.
func (b *Batch) IsExpired(now time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return b.ExpiryDate.Before(now)
}

// ExpiresWithin indica si el lote vence dentro de la ventana [now, now+days días].
func (b *Batch) ExpiresWithin(now time.Time, days int) bool {
	if b.ExpiryDate == nil {
		return false
	}
	limit := now.AddDate(0, 0, days)
	return !b.ExpiryDate.Before(now) && !b.ExpiryDate.After(limit)
}
