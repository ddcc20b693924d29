package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

// receiveExpiring registra un lote con fecha de vencimiento relativa a hoy.
func (e *testEnv) receiveExpiring(t *testing.T, ingredientID string, days int) *entity.Batch {
	t.Helper()
	expiry := time.Now().AddDate(0, 0, days)
	out, err := e.ledger.Receive(context.Background(), inventory.ReceiveInput{
		IngredientID: ingredientID,
		GrossIn:      dec("5"),
		UnitCost:     dec("10"),
		ExpiryDate:   &expiry,
	})
	require.NoError(t, err)
	return out.Batch
}

func TestExpiringSoon_SeparaPorVencerDeVencidos(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Yogur", "1")

	expired := env.receiveExpiring(t, ing.ID, -1)
	soon := env.receiveExpiring(t, ing.ID, 2)
	far := env.receiveExpiring(t, ing.ID, 30)

	report, err := env.scanner.ExpiringSoon(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, report.ExpiringSoon, 1)
	assert.Equal(t, soon.ID, report.ExpiringSoon[0].ID)
	require.Len(t, report.AlreadyExpired, 1)
	assert.Equal(t, expired.ID, report.AlreadyExpired[0].ID)

	// Consulta pura: nadie cambió de estado.
	assert.Equal(t, entity.BatchStatusAvailable, env.batch(t, expired.ID).Status)
	assert.Equal(t, entity.BatchStatusAvailable, env.batch(t, far.ID).Status)

	_, err = env.scanner.ExpiringSoon(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSweepExpired_MarcaVencidosYSaltaBloqueados(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Crema", "1")

	stale := env.receiveExpiring(t, ing.ID, -2)
	lockedStale := env.receiveExpiring(t, ing.ID, -2)
	fresh := env.receiveExpiring(t, ing.ID, 10)

	_, err := env.ledger.Lock(context.Background(), lockedStale.ID, "en revisión", "inspector")
	require.NoError(t, err)

	out, err := env.scanner.SweepExpired(context.Background(), "scheduler")
	require.NoError(t, err)

	require.Len(t, out.Swept, 1)
	assert.Equal(t, stale.ID, out.Swept[0].ID)
	require.Len(t, out.Skipped, 1)
	assert.Equal(t, lockedStale.ID, out.Skipped[0].ID)

	assert.Equal(t, entity.BatchStatusExpired, env.batch(t, stale.ID).Status)
	assert.Equal(t, entity.BatchStatusAvailable, env.batch(t, lockedStale.ID).Status,
		"el bloqueado queda intacto hasta el próximo barrido")
	assert.Equal(t, entity.BatchStatusAvailable, env.batch(t, fresh.ID).Status)

	// Un lote expired ya no es candidato FIFO.
	_, err = env.ledger.Consume(context.Background(), inventory.ConsumeInput{
		IngredientID: ing.ID,
		Quantity:     dec("12"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestSweepExpired_LiberaReservasVencidas(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Nata", "1")

	stale := env.receiveExpiring(t, ing.ID, -1)
	_, err := env.ledger.Reserve(context.Background(), stale.ID, "orden-9", "cocina")
	require.NoError(t, err)

	out, err := env.scanner.SweepExpired(context.Background(), "scheduler")
	require.NoError(t, err)
	require.Len(t, out.Swept, 1)
	assert.Equal(t, entity.BatchStatusExpired, env.batch(t, stale.ID).Status,
		"la reserva se libera y el lote termina expired")
}

func TestSweepExpired_EsIdempotente(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Mayonesa", "1")
	env.receiveExpiring(t, ing.ID, -5)

	first, err := env.scanner.SweepExpired(context.Background(), "scheduler")
	require.NoError(t, err)
	assert.Len(t, first.Swept, 1)

	second, err := env.scanner.SweepExpired(context.Background(), "scheduler")
	require.NoError(t, err)
	assert.Empty(t, second.Swept, "un lote ya expired no vuelve a barrerse")
}

func TestLowStock_ClasificaMinimoYCritico(t *testing.T) {
	env := newTestEnv()

	nuevo := func(name, min string) *entity.Ingredient {
		ing, err := env.directory.Create(context.Background(), inventory.CreateIngredientInput{
			Name:     name,
			Unit:     "kg",
			MinStock: dec(min),
		})
		require.NoError(t, err)
		return ing
	}

	low := nuevo("Bajo", "10")      // quedará en 6: bajo pero no crítico
	critical := nuevo("Crítico", "10") // quedará en 4: ≤ mitad del mínimo
	ok := nuevo("Sano", "10")       // quedará en 20
	sinMinimo := nuevo("Sin mínimo", "0")

	env.receive(t, low.ID, "6", "1")
	env.receive(t, critical.ID, "4", "1")
	env.receive(t, ok.ID, "20", "1")
	env.receive(t, sinMinimo.ID, "1", "1")

	report, err := env.scanner.LowStock(context.Background())
	require.NoError(t, err)

	lowIDs := make(map[string]bool)
	for _, ing := range report.LowStock {
		lowIDs[ing.ID] = true
	}
	assert.True(t, lowIDs[low.ID])
	assert.True(t, lowIDs[critical.ID])
	assert.False(t, lowIDs[ok.ID])
	assert.False(t, lowIDs[sinMinimo.ID], "sin mínimo configurado no hay alerta")

	require.Len(t, report.Critical, 1)
	assert.Equal(t, critical.ID, report.Critical[0].ID)
}
