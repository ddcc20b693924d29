package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro mayor sobre PostgreSQL.
// Solo INSERT y SELECT: los movimientos nunca se actualizan ni se borran.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, ingredient_id, batch_id, type, quantity, gross_quantity, net_quantity,
	unit_cost, total_cost, waste_factor, reason, reason_code, production_ref,
	operator_id, ts, created_at`

// Create persiste una entrada del libro mayor.
func (r *MovementRepo) Create(m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.IngredientID, nullable(m.BatchID), m.Type, m.Quantity, m.GrossQuantity,
		m.NetQuantity, m.UnitCost, m.TotalCost, m.WasteFactor, nullable(m.Reason),
		nullable(m.ReasonCode), nullable(m.ProductionRef), nullable(m.OperatorID),
		m.Timestamp, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por id (nil si no existe).
func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByIngredient lista movimientos de un ingrediente en un rango de fechas.
func (r *MovementRepo) ListByIngredient(ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE ingredient_id = $1`
	args := []any{ingredientID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND ts >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND ts <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY ts DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByBatch lista los movimientos de un lote, del más reciente al más antiguo.
func (r *MovementRepo) ListByBatch(batchID string, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements WHERE batch_id = $1
		ORDER BY ts DESC, id DESC LIMIT $2 OFFSET $3`
	return r.list(query, batchID, limit, offset)
}

// SumNetByIngredient suma con signo las cantidades de todos los movimientos del
// ingrediente. Es la base de la recomputación del agregado de stock.
func (r *MovementRepo) SumNetByIngredient(ingredientID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM movements WHERE ingredient_id = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, ingredientID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

func (r *MovementRepo) list(query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var batchID, reason, reasonCode, productionRef, operatorID *string
	err := row.Scan(
		&m.ID, &m.IngredientID, &batchID, &m.Type, &m.Quantity, &m.GrossQuantity,
		&m.NetQuantity, &m.UnitCost, &m.TotalCost, &m.WasteFactor, &reason,
		&reasonCode, &productionRef, &operatorID, &m.Timestamp, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.BatchID = deref(batchID)
	m.Reason = deref(reason)
	m.ReasonCode = deref(reasonCode)
	m.ProductionRef = deref(productionRef)
	m.OperatorID = deref(operatorID)
	return &m, nil
}
