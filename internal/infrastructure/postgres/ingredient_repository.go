package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

// IngredientRepo implementación del directorio de ingredientes sobre PostgreSQL.
// El perfil de rendimiento por proceso viaja como JSONB.
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

const ingredientColumns = `
	id, name, unit, current_stock, min_stock, max_stock,
	base_yield_ratio, process_yields, active, created_at, updated_at`

// Create persiste un ingrediente nuevo.
func (r *IngredientRepo) Create(i *entity.Ingredient) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	yields, err := json.Marshal(i.Yield.ProcessYields)
	if err != nil {
		return fmt.Errorf("marshal process yields: %w", err)
	}
	query := `
		INSERT INTO ingredients (` + ingredientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(context.Background(), query,
		i.ID, i.Name, i.Unit, i.CurrentStock, i.MinStock, i.MaxStock,
		i.Yield.BaseYieldRatio, yields, i.Active, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ValidationError{Field: "name", Reason: "ya existe"}
		}
		return fmt.Errorf("create ingredient: %w", err)
	}
	return nil
}

// GetByID obtiene un ingrediente por id (nil si no existe).
func (r *IngredientRepo) GetByID(id string) (*entity.Ingredient, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene el ingrediente y bloquea la fila (SELECT FOR UPDATE).
// Serializa los consumos concurrentes sobre el mismo ingrediente.
func (r *IngredientRepo) GetForUpdate(id string) (*entity.Ingredient, error) {
	return r.get(id, true)
}

func (r *IngredientRepo) get(id string, forUpdate bool) (*entity.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	row := r.q.QueryRow(context.Background(), query, id)
	i, err := scanIngredient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return i, nil
}

// Update sobrescribe los campos editables del ingrediente (no el stock).
func (r *IngredientRepo) Update(i *entity.Ingredient) error {
	yields, err := json.Marshal(i.Yield.ProcessYields)
	if err != nil {
		return fmt.Errorf("marshal process yields: %w", err)
	}
	query := `
		UPDATE ingredients SET
			name = $2, unit = $3, min_stock = $4, max_stock = $5,
			base_yield_ratio = $6, process_yields = $7, active = $8, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		i.ID, i.Name, i.Unit, i.MinStock, i.MaxStock,
		i.Yield.BaseYieldRatio, yields, i.Active,
	)
	if err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ingredientes, solo activos si activeOnly.
func (r *IngredientRepo) List(activeOnly bool) ([]*entity.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients`
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY name ASC"

	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var out []*entity.Ingredient
	for rows.Next() {
		i, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// AdjustStock suma delta (con signo) al agregado de stock.
func (r *IngredientRepo) AdjustStock(id string, delta decimal.Decimal) error {
	query := `UPDATE ingredients SET current_stock = current_stock + $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStock sobrescribe el agregado (recomputación desde el libro mayor).
func (r *IngredientRepo) SetStock(id string, quantity decimal.Decimal) error {
	query := `UPDATE ingredients SET current_stock = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, quantity)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanIngredient(row pgx.Row) (*entity.Ingredient, error) {
	var i entity.Ingredient
	var yields []byte
	err := row.Scan(
		&i.ID, &i.Name, &i.Unit, &i.CurrentStock, &i.MinStock, &i.MaxStock,
		&i.Yield.BaseYieldRatio, &yields, &i.Active, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(yields) > 0 {
		if err := json.Unmarshal(yields, &i.Yield.ProcessYields); err != nil {
			return nil, fmt.Errorf("unmarshal process yields: %w", err)
		}
	}
	return &i, nil
}
