package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
// El historial de proceso viaja como JSONB; el bloqueo advisory son columnas planas.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `
	id, batch_number, barcode, ingredient_id, gross_in, net_available,
	used_amount, wasted_amount, unit_cost, total_cost, supplier_id,
	invoice_number, status, received_at, expiry_date, process_history,
	is_locked, locked_by, locked_at, lock_reason, created_at, updated_at`

// Create persiste un lote nuevo.
func (r *BatchRepo) Create(b *entity.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	history, err := json.Marshal(b.ProcessHistory)
	if err != nil {
		return fmt.Errorf("marshal process history: %w", err)
	}
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err = r.q.Exec(context.Background(), query,
		b.ID, b.BatchNumber, nullable(b.Barcode), b.IngredientID, b.GrossIn, b.NetAvailable,
		b.UsedAmount, b.WastedAmount, b.UnitCost, b.TotalCost, nullable(b.SupplierID),
		nullable(b.InvoiceNumber), b.Status, b.ReceivedAt, b.ExpiryDate, history,
		b.Lock.IsLocked, nullable(b.Lock.LockedBy), b.Lock.LockedAt, nullable(b.Lock.Reason),
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ValidationError{Field: "batch_number", Reason: "ya existe"}
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por id (nil si no existe).
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.get(id, true)
}

func (r *BatchRepo) get(id string, forUpdate bool) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	row := r.q.QueryRow(context.Background(), query, id)
	b, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// Update sobrescribe los campos mutables del lote.
func (r *BatchRepo) Update(b *entity.Batch) error {
	history, err := json.Marshal(b.ProcessHistory)
	if err != nil {
		return fmt.Errorf("marshal process history: %w", err)
	}
	query := `
		UPDATE batches SET
			net_available = $2, used_amount = $3, wasted_amount = $4, status = $5,
			process_history = $6, is_locked = $7, locked_by = $8, locked_at = $9,
			lock_reason = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		b.ID, b.NetAvailable, b.UsedAmount, b.WastedAmount, b.Status,
		history, b.Lock.IsLocked, nullable(b.Lock.LockedBy), b.Lock.LockedAt,
		nullable(b.Lock.Reason), b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByIngredient lista los lotes de un ingrediente, opcionalmente filtrados por estado.
func (r *BatchRepo) ListByIngredient(ingredientID string, statuses []string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE ingredient_id = $1`
	args := []any{ingredientID}
	if len(statuses) > 0 {
		query += " AND status = ANY($2)"
		args = append(args, statuses)
	}
	query += " ORDER BY received_at ASC, id ASC"
	return r.list(query, args...)
}

// ListFIFOCandidates devuelve los lotes available y sin bloqueo en orden FIFO:
// receivedAt ascendente con desempate determinista por id.
func (r *BatchRepo) ListFIFOCandidates(ingredientID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches
		WHERE ingredient_id = $1 AND status = $2 AND is_locked = false
		ORDER BY received_at ASC, id ASC`
	return r.list(query, ingredientID, entity.BatchStatusAvailable)
}

// ListExpiring lotes available/reserved con vencimiento dentro de [now, until].
func (r *BatchRepo) ListExpiring(now, until time.Time) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches
		WHERE status = ANY($1) AND expiry_date IS NOT NULL AND expiry_date >= $2 AND expiry_date <= $3
		ORDER BY expiry_date ASC, id ASC`
	return r.list(query, []string{entity.BatchStatusAvailable, entity.BatchStatusReserved}, now, until)
}

// ListExpired lotes available/reserved ya vencidos.
func (r *BatchRepo) ListExpired(now time.Time) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches
		WHERE status = ANY($1) AND expiry_date IS NOT NULL AND expiry_date < $2
		ORDER BY expiry_date ASC, id ASC`
	return r.list(query, []string{entity.BatchStatusAvailable, entity.BatchStatusReserved}, now)
}

func (r *BatchRepo) list(query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// scanBatch lee una fila de batches; acepta pgx.Row o pgx.Rows.
func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var barcode, supplierID, invoiceNumber, lockedBy, lockReason *string
	var history []byte

	err := row.Scan(
		&b.ID, &b.BatchNumber, &barcode, &b.IngredientID, &b.GrossIn, &b.NetAvailable,
		&b.UsedAmount, &b.WastedAmount, &b.UnitCost, &b.TotalCost, &supplierID,
		&invoiceNumber, &b.Status, &b.ReceivedAt, &b.ExpiryDate, &history,
		&b.Lock.IsLocked, &lockedBy, &b.Lock.LockedAt, &lockReason,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &b.ProcessHistory); err != nil {
			return nil, fmt.Errorf("unmarshal process history: %w", err)
		}
	}
	b.Barcode = deref(barcode)
	b.SupplierID = deref(supplierID)
	b.InvoiceNumber = deref(invoiceNumber)
	b.Lock.LockedBy = deref(lockedBy)
	b.Lock.Reason = deref(lockReason)
	return &b, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
