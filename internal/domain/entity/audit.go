package entity

import "time"

// Acciones registradas en la pista de auditoría.
const (
	AuditActionReceive  = "receive"
	AuditActionConsume  = "consume"
	AuditActionProcess  = "process"
	AuditActionWriteOff = "write_off"
	AuditActionCount    = "count"
	AuditActionLock     = "lock"
	AuditActionUnlock   = "unlock"
	AuditActionReserve  = "reserve"
	AuditActionRelease  = "release"
	AuditActionSweep    = "expiry_sweep"
)

// AuditEntry es el evento estructurado que consume el Audit Sink por cada
// operación mutante: snapshots antes/después y descripción legible.
// Un fallo al escribirla nunca aborta la operación de inventario.
type AuditEntry struct {
	ID          string
	Action      string
	EntityKind  string // "batch" | "ingredient"
	EntityID    string
	OperatorID  string
	Description string
	Severity    string // "info" | "warning"
	Before      any
	After       any
	CreatedAt   time.Time
}
