package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

var _ inventory.AuditSink = (*AuditRepo)(nil)

// AuditRepo implementación del Audit Sink sobre PostgreSQL. Escribe fuera de la
// transacción de negocio: un fallo aquí lo registra el caller y no revierte nada.
type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Record persiste una entrada de auditoría con snapshots antes/después como JSONB.
func (r *AuditRepo) Record(ctx context.Context, e *entity.AuditEntry) error {
	before, err := marshalSnapshot(e.Before)
	if err != nil {
		return fmt.Errorf("marshal before: %w", err)
	}
	after, err := marshalSnapshot(e.After)
	if err != nil {
		return fmt.Errorf("marshal after: %w", err)
	}
	query := `
		INSERT INTO audit_entries (id, action, entity_kind, entity_id, operator_id, description, severity, before_data, after_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.pool.Exec(ctx, query,
		e.ID, e.Action, e.EntityKind, nullable(e.EntityID), nullable(e.OperatorID),
		e.Description, e.Severity, before, after, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create audit entry: %w", err)
	}
	return nil
}

// marshalSnapshot serializa el snapshot; nil se guarda como JSON null (jsonb no acepta vacío).
func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
