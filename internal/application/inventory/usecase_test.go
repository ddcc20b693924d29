package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	store     *memory.Store
	ledger    *inventory.LedgerUseCase
	scanner   *inventory.ScannerUseCase
	directory *inventory.DirectoryUseCase
	query     *inventory.QueryUseCase
}

func newTestEnv() *testEnv {
	store := memory.NewStore()
	return &testEnv{
		store:     store,
		ledger:    inventory.NewLedgerUseCase(store.TxRunner(), store.Ingredients(), store.AuditSink()),
		scanner:   inventory.NewScannerUseCase(store.Batches(), store.Ingredients(), store.TxRunner(), store.AuditSink()),
		directory: inventory.NewDirectoryUseCase(store.Ingredients()),
		query:     inventory.NewQueryUseCase(store.Batches(), store.Movements()),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newIngredient da de alta un ingrediente con rendimiento base.
func (e *testEnv) newIngredient(t *testing.T, name, baseYield string) *entity.Ingredient {
	t.Helper()
	ing, err := e.directory.Create(context.Background(), inventory.CreateIngredientInput{
		Name:           name,
		Unit:           "kg",
		BaseYieldRatio: dec(baseYield),
	})
	require.NoError(t, err)
	return ing
}

// receive registra un lote y devuelve el resultado.
func (e *testEnv) receive(t *testing.T, ingredientID, gross, unitCost string) *inventory.ReceiveResult {
	t.Helper()
	out, err := e.ledger.Receive(context.Background(), inventory.ReceiveInput{
		IngredientID: ingredientID,
		GrossIn:      dec(gross),
		UnitCost:     dec(unitCost),
		OperatorID:   "op-test",
	})
	require.NoError(t, err)
	return out
}

func (e *testEnv) stock(t *testing.T, ingredientID string) decimal.Decimal {
	t.Helper()
	ing, err := e.store.Ingredients().GetByID(ingredientID)
	require.NoError(t, err)
	require.NotNil(t, ing)
	return ing.CurrentStock
}

func (e *testEnv) batch(t *testing.T, id string) *entity.Batch {
	t.Helper()
	b, err := e.store.Batches().GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

// Escenario de referencia: 10 kg de carne a $200/kg con rendimiento base 0.85.
func TestReceive_AplicaRendimientoBase(t *testing.T) {
	env := newTestEnv()
	beef := env.newIngredient(t, "Carne de res", "0.85")

	out := env.receive(t, beef.ID, "10", "200")

	b := out.Batch
	assert.True(t, b.GrossIn.Equal(dec("10")))
	assert.True(t, b.NetAvailable.Equal(dec("8.5")), "neto = bruto × 0.85")
	assert.True(t, b.WastedAmount.Equal(dec("1.5")), "merma de recepción")
	assert.True(t, b.TotalCost.Equal(dec("2000")), "costo total = bruto × costo unitario")
	assert.Equal(t, entity.BatchStatusAvailable, b.Status)
	assert.NotEmpty(t, b.BatchNumber)

	// El agregado del ingrediente sube por el neto, no por el bruto.
	assert.True(t, out.NewStock.Equal(dec("8.5")))
	assert.True(t, env.stock(t, beef.ID).Equal(dec("8.5")))

	// Queda un movimiento receive positivo por el neto.
	movs, err := env.store.Movements().ListByIngredient(beef.ID, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeReceive, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(dec("8.5")))
	assert.True(t, movs[0].GrossQuantity.Equal(dec("10")))
	assert.True(t, movs[0].WasteFactor.Equal(dec("0.15")))
}

func TestReceive_ValidaEntrada(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Tomate", "1")

	_, err := env.ledger.Receive(context.Background(), inventory.ReceiveInput{
		IngredientID: ing.ID, GrossIn: dec("0"), UnitCost: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.ledger.Receive(context.Background(), inventory.ReceiveInput{
		IngredientID: ing.ID, GrossIn: dec("5"), UnitCost: dec("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.ledger.Receive(context.Background(), inventory.ReceiveInput{
		IngredientID: "no-existe", GrossIn: dec("5"), UnitCost: dec("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_RespetaNumeroDeLoteExplicito(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Sal", "1")

	out, err := env.ledger.Receive(context.Background(), inventory.ReceiveInput{
		IngredientID: ing.ID,
		GrossIn:      dec("2"),
		UnitCost:     dec("3"),
		BatchNumber:  "LOT-PROVEEDOR-99",
	})
	require.NoError(t, err)
	assert.Equal(t, "LOT-PROVEEDOR-99", out.Batch.BatchNumber)

	// Un número duplicado se rechaza.
	_, err = env.ledger.Receive(context.Background(), inventory.ReceiveInput{
		IngredientID: ing.ID,
		GrossIn:      dec("2"),
		UnitCost:     dec("3"),
		BatchNumber:  "LOT-PROVEEDOR-99",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consumo FIFO
// ──────────────────────────────────────────────────────────────────────────────

func TestConsume_DrenaEnOrdenDeRecepcion(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Pollo", "1")

	b1 := env.receive(t, ing.ID, "5", "100").Batch
	time.Sleep(2 * time.Millisecond) // receivedAt distinto
	b2 := env.receive(t, ing.ID, "5", "120").Batch

	// 7 unidades: agota b1 (5) y toma 2 de b2.
	out, err := env.ledger.Consume(context.Background(), inventory.ConsumeInput{
		IngredientID: ing.ID,
		Quantity:     dec("7"),
		OperatorID:   "cocina",
	})
	require.NoError(t, err)
	require.Len(t, out.Batches, 2)

	assert.Equal(t, b1.ID, out.Batches[0].BatchID, "el lote más antiguo se drena primero")
	assert.True(t, out.Batches[0].Consumed.Equal(dec("5")))
	assert.True(t, out.Batches[0].Depleted)
	assert.Equal(t, b2.ID, out.Batches[1].BatchID)
	assert.True(t, out.Batches[1].Consumed.Equal(dec("2")))
	assert.True(t, out.Batches[1].Remaining.Equal(dec("3")))
	assert.False(t, out.Batches[1].Depleted)

	// El costo se compone con el costo unitario de cada lote: 5×100 + 2×120.
	assert.True(t, out.TotalCost.Equal(dec("740")), "costo total = %s", out.TotalCost)
	assert.True(t, out.NewStock.Equal(dec("3")))

	// Estado persistido.
	assert.Equal(t, entity.BatchStatusDepleted, env.batch(t, b1.ID).Status)
	assert.Equal(t, entity.BatchStatusAvailable, env.batch(t, b2.ID).Status)
}

func TestConsume_InsuficienteNoMutaNada(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Queso", "1")
	b := env.receive(t, ing.ID, "4", "50").Batch

	_, err := env.ledger.Consume(context.Background(), inventory.ConsumeInput{
		IngredientID: ing.ID,
		Quantity:     dec("10"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ierr *domain.InsufficientStockError
	require.ErrorAs(t, err, &ierr)
	assert.True(t, ierr.Requested.Equal(dec("10")))
	assert.True(t, ierr.Available.Equal(dec("4")))

	// Todo o nada: ni el lote ni el agregado cambiaron.
	assert.True(t, env.batch(t, b.ID).NetAvailable.Equal(dec("4")))
	assert.True(t, env.stock(t, ing.ID).Equal(dec("4")))
	movs, err := env.store.Movements().ListByIngredient(ing.ID, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "solo el movimiento receive original")
}

func TestConsume_IgnoraLotesBloqueadosYReservados(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Pescado", "1")

	b1 := env.receive(t, ing.ID, "3", "80").Batch
	time.Sleep(2 * time.Millisecond)
	b2 := env.receive(t, ing.ID, "3", "80").Batch
	time.Sleep(2 * time.Millisecond)
	b3 := env.receive(t, ing.ID, "3", "80").Batch

	_, err := env.ledger.Lock(context.Background(), b1.ID, "inspección", "inspector")
	require.NoError(t, err)
	_, err = env.ledger.Reserve(context.Background(), b2.ID, "orden-7", "cocina")
	require.NoError(t, err)

	// Solo b3 es candidato FIFO: pedir 3 funciona, pedir más falla aunque
	// el agregado tenga 9.
	out, err := env.ledger.Consume(context.Background(), inventory.ConsumeInput{
		IngredientID: ing.ID,
		Quantity:     dec("3"),
	})
	require.NoError(t, err)
	require.Len(t, out.Batches, 1)
	assert.Equal(t, b3.ID, out.Batches[0].BatchID)

	_, err = env.ledger.Consume(context.Background(), inventory.ConsumeInput{
		IngredientID: ing.ID,
		Quantity:     dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"bloqueados y reservados no participan del FIFO")
}

func TestConsume_AutoAgotadoDentroDeEpsilon(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Harina", "1")
	b := env.receive(t, ing.ID, "5", "10").Batch

	// Consumir 4.9995 deja 0.0005 < epsilon: el lote queda depleted.
	out, err := env.ledger.Consume(context.Background(), inventory.ConsumeInput{
		IngredientID: ing.ID,
		Quantity:     dec("4.9995"),
	})
	require.NoError(t, err)
	assert.True(t, out.Batches[0].Depleted)
	assert.Equal(t, entity.BatchStatusDepleted, env.batch(t, b.ID).Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recomputación del agregado
// ──────────────────────────────────────────────────────────────────────────────

func TestRecomputeStock_LibroMayorEsLaVerdad(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Arroz", "1")
	env.receive(t, ing.ID, "10", "5")

	_, err := env.ledger.Consume(context.Background(), inventory.ConsumeInput{
		IngredientID: ing.ID, Quantity: dec("4"),
	})
	require.NoError(t, err)

	// Corromper el agregado a propósito.
	require.NoError(t, env.store.Ingredients().SetStock(ing.ID, dec("99")))

	out, err := env.ledger.RecomputeStock(context.Background(), ing.ID)
	require.NoError(t, err)
	assert.True(t, out.Previous.Equal(dec("99")))
	assert.True(t, out.Recomputed.Equal(dec("6")), "receive +10, recipe_use -4")
	assert.True(t, out.Drift.Equal(dec("-93")))
	assert.True(t, env.stock(t, ing.ID).Equal(dec("6")))
}

func TestRecomputeStock_ReservaNoAfectaElAgregado(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Aceite", "1")
	b := env.receive(t, ing.ID, "8", "30").Batch

	_, err := env.ledger.Reserve(context.Background(), b.ID, "orden-1", "cocina")
	require.NoError(t, err)
	_, err = env.ledger.Release(context.Background(), b.ID, "orden-1", "cocina")
	require.NoError(t, err)

	out, err := env.ledger.RecomputeStock(context.Background(), ing.ID)
	require.NoError(t, err)
	assert.True(t, out.Recomputed.Equal(dec("8")),
		"reserve/release llevan cantidad cero en el libro mayor")
	assert.True(t, out.Drift.IsZero())
}
