// Package memory implementa los puertos de persistencia sobre mapas en memoria.
// Se usa en tests y en desarrollo local sin PostgreSQL. Las transacciones se
// serializan con un mutex; no hay rollback: los casos de uso validan antes de
// escribir, igual que contra el almacén real.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/repository"
)

// Store agrupa las colecciones en memoria y el mutex que las protege.
type Store struct {
	mu          sync.Mutex
	batches     map[string]*entity.Batch
	movements   []*entity.Movement
	ingredients map[string]*entity.Ingredient
	audit       []*entity.AuditEntry
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		batches:     make(map[string]*entity.Batch),
		ingredients: make(map[string]*entity.Ingredient),
	}
}

// Batches devuelve el repositorio de lotes.
func (s *Store) Batches() repository.BatchRepository { return &batchRepo{s: s} }

// Movements devuelve el repositorio del libro mayor.
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s: s} }

// Ingredients devuelve el repositorio del directorio.
func (s *Store) Ingredients() repository.IngredientRepository { return &ingredientRepo{s: s} }

// TxRunner devuelve un runner que serializa las "transacciones" con un mutex.
func (s *Store) TxRunner() inventory.TxRunner { return &txRunner{s: s} }

// AuditSink devuelve un sink que acumula las entradas (inspección en tests).
func (s *Store) AuditSink() *AuditSink { return &AuditSink{s: s} }

// AuditEntries devuelve una copia de las entradas registradas.
func (s *Store) AuditEntries() []*entity.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner
// ──────────────────────────────────────────────────────────────────────────────

type txRunner struct {
	s      *Store
	txLock sync.Mutex
}

func (r *txRunner) Run(_ context.Context, fn func(
	batchRepo repository.BatchRepository,
	movRepo repository.MovementRepository,
	ingRepo repository.IngredientRepository,
) error) error {
	r.txLock.Lock()
	defer r.txLock.Unlock()
	return fn(&batchRepo{s: r.s}, &movementRepo{s: r.s}, &ingredientRepo{s: r.s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

type batchRepo struct {
	s *Store
}

func copyBatch(b *entity.Batch) *entity.Batch {
	out := *b
	out.ProcessHistory = append([]entity.ProcessRecord(nil), b.ProcessHistory...)
	return &out
}

func (r *batchRepo) Create(b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	for _, existing := range r.s.batches {
		if existing.BatchNumber == b.BatchNumber {
			return &domain.ValidationError{Field: "batch_number", Reason: "ya existe"}
		}
	}
	r.s.batches[b.ID] = copyBatch(b)
	return nil
}

func (r *batchRepo) GetByID(id string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok {
		return nil, nil
	}
	return copyBatch(b), nil
}

func (r *batchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.GetByID(id)
}

func (r *batchRepo) Update(b *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.batches[b.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.batches[b.ID] = copyBatch(b)
	return nil
}

func (r *batchRepo) ListByIngredient(ingredientID string, statuses []string) ([]*entity.Batch, error) {
	return r.collect(func(b *entity.Batch) bool {
		if b.IngredientID != ingredientID {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, st := range statuses {
			if b.Status == st {
				return true
			}
		}
		return false
	}, byReceivedAt)
}

func (r *batchRepo) ListFIFOCandidates(ingredientID string) ([]*entity.Batch, error) {
	return r.collect(func(b *entity.Batch) bool {
		return b.IngredientID == ingredientID &&
			b.Status == entity.BatchStatusAvailable &&
			!b.Lock.IsLocked
	}, byReceivedAt)
}

func (r *batchRepo) ListExpiring(now, until time.Time) ([]*entity.Batch, error) {
	return r.collect(func(b *entity.Batch) bool {
		return activeForExpiry(b) && b.ExpiryDate != nil &&
			!b.ExpiryDate.Before(now) && !b.ExpiryDate.After(until)
	}, byExpiry)
}

func (r *batchRepo) ListExpired(now time.Time) ([]*entity.Batch, error) {
	return r.collect(func(b *entity.Batch) bool {
		return activeForExpiry(b) && b.ExpiryDate != nil && b.ExpiryDate.Before(now)
	}, byExpiry)
}

func activeForExpiry(b *entity.Batch) bool {
	return b.Status == entity.BatchStatusAvailable || b.Status == entity.BatchStatusReserved
}

func byReceivedAt(a, b *entity.Batch) bool {
	if a.ReceivedAt.Equal(b.ReceivedAt) {
		return a.ID < b.ID
	}
	return a.ReceivedAt.Before(b.ReceivedAt)
}

func byExpiry(a, b *entity.Batch) bool {
	if a.ExpiryDate.Equal(*b.ExpiryDate) {
		return a.ID < b.ID
	}
	return a.ExpiryDate.Before(*b.ExpiryDate)
}

func (r *batchRepo) collect(match func(*entity.Batch) bool, less func(a, b *entity.Batch) bool) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Batch
	for _, b := range r.s.batches {
		if match(b) {
			out = append(out, copyBatch(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro mayor
// ──────────────────────────────────────────────────────────────────────────────

type movementRepo struct {
	s *Store
}

func (r *movementRepo) Create(m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	stored := *m
	r.s.movements = append(r.s.movements, &stored)
	return nil
}

func (r *movementRepo) GetByID(id string) (*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			out := *m
			return &out, nil
		}
	}
	return nil, nil
}

func (r *movementRepo) ListByIngredient(ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return r.collect(func(m *entity.Movement) bool {
		if m.IngredientID != ingredientID {
			return false
		}
		if from != nil && m.Timestamp.Before(*from) {
			return false
		}
		if to != nil && m.Timestamp.After(*to) {
			return false
		}
		return true
	}, limit, offset)
}

func (r *movementRepo) ListByBatch(batchID string, limit, offset int) ([]*entity.Movement, error) {
	return r.collect(func(m *entity.Movement) bool { return m.BatchID == batchID }, limit, offset)
}

func (r *movementRepo) SumNetByIngredient(ingredientID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.IngredientID == ingredientID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

func (r *movementRepo) collect(match func(*entity.Movement) bool, limit, offset int) ([]*entity.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Movement
	for _, m := range r.s.movements {
		if match(m) {
			out := *m
			all = append(all, &out)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Directorio de ingredientes
// ──────────────────────────────────────────────────────────────────────────────

type ingredientRepo struct {
	s *Store
}

func copyIngredient(i *entity.Ingredient) *entity.Ingredient {
	out := *i
	out.Yield.ProcessYields = append([]entity.ProcessYield(nil), i.Yield.ProcessYields...)
	return &out
}

func (r *ingredientRepo) Create(i *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	r.s.ingredients[i.ID] = copyIngredient(i)
	return nil
}

func (r *ingredientRepo) GetByID(id string) (*entity.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.ingredients[id]
	if !ok {
		return nil, nil
	}
	return copyIngredient(i), nil
}

func (r *ingredientRepo) GetForUpdate(id string) (*entity.Ingredient, error) {
	return r.GetByID(id)
}

func (r *ingredientRepo) Update(i *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.ingredients[i.ID]
	if !ok {
		return domain.ErrNotFound
	}
	updated := copyIngredient(i)
	updated.CurrentStock = stored.CurrentStock // el stock solo lo mueven AdjustStock/SetStock
	r.s.ingredients[i.ID] = updated
	return nil
}

func (r *ingredientRepo) List(activeOnly bool) ([]*entity.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Ingredient
	for _, i := range r.s.ingredients {
		if activeOnly && !i.Active {
			continue
		}
		out = append(out, copyIngredient(i))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *ingredientRepo) AdjustStock(id string, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.ingredients[id]
	if !ok {
		return domain.ErrNotFound
	}
	i.CurrentStock = i.CurrentStock.Add(delta)
	i.UpdatedAt = time.Now()
	return nil
}

func (r *ingredientRepo) SetStock(id string, quantity decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i, ok := r.s.ingredients[id]
	if !ok {
		return domain.ErrNotFound
	}
	i.CurrentStock = quantity
	i.UpdatedAt = time.Now()
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Audit sink
// ──────────────────────────────────────────────────────────────────────────────

// AuditSink acumula las entradas de auditoría en memoria.
type AuditSink struct {
	s *Store
}

// Record guarda la entrada.
func (a *AuditSink) Record(_ context.Context, e *entity.AuditEntry) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	stored := *e
	a.s.audit = append(a.s.audit, &stored)
	return nil
}
