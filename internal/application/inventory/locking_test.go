package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

func TestLock_ExcluyeATerceros(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Salmón", "1")
	b := env.receive(t, ing.ID, "5", "300").Batch

	_, err := env.ledger.Lock(context.Background(), b.ID, "inspección de calidad", "inspector")
	require.NoError(t, err)

	locked := env.batch(t, b.ID)
	assert.True(t, locked.Lock.IsLocked)
	assert.Equal(t, "inspector", locked.Lock.LockedBy)

	// Un tercero no puede mutar el lote bloqueado.
	_, err = env.ledger.WriteOff(context.Background(), inventory.WriteOffInput{
		BatchID:    b.ID,
		Reason:     "spoiled",
		OperatorID: "otro",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBatchLocked)

	var lerr *domain.LockedError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "inspector", lerr.LockedBy, "el error reporta al titular")

	// El titular sí puede.
	_, err = env.ledger.Count(context.Background(), inventory.CountInput{
		BatchID:        b.ID,
		ActualQuantity: dec("5"),
		OperatorID:     "inspector",
	})
	assert.NoError(t, err)
}

func TestLock_DobleBloqueoFalla(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Atún", "1")
	b := env.receive(t, ing.ID, "2", "250").Batch

	_, err := env.ledger.Lock(context.Background(), b.ID, "conteo", "auditor-1")
	require.NoError(t, err)

	_, err = env.ledger.Lock(context.Background(), b.ID, "conteo", "auditor-2")
	assert.ErrorIs(t, err, domain.ErrBatchLocked)
}

func TestUnlock_SoloTitularSalvoForce(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Pulpo", "1")
	b := env.receive(t, ing.ID, "3", "400").Batch

	_, err := env.ledger.Lock(context.Background(), b.ID, "inspección", "inspector")
	require.NoError(t, err)

	// Tercero sin force: rechazado.
	_, err = env.ledger.Unlock(context.Background(), b.ID, false, "supervisor")
	assert.ErrorIs(t, err, domain.ErrBatchLocked)

	// Tercero con force: pasa y queda auditado con severidad warning.
	out, err := env.ledger.Unlock(context.Background(), b.ID, true, "supervisor")
	require.NoError(t, err)
	assert.False(t, out.Lock.IsLocked)

	var forced *entity.AuditEntry
	for _, e := range env.store.AuditEntries() {
		if e.Action == entity.AuditActionUnlock {
			forced = e
		}
	}
	require.NotNil(t, forced)
	assert.Equal(t, "warning", forced.Severity)
}

func TestUnlock_SinBloqueoFalla(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Calamar", "1")
	b := env.receive(t, ing.ID, "1", "100").Batch

	_, err := env.ledger.Unlock(context.Background(), b.ID, false, "alguien")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReserveRelease_CicloCompleto(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Langosta", "1")
	b := env.receive(t, ing.ID, "4", "500").Batch

	reserved, err := env.ledger.Reserve(context.Background(), b.ID, "orden-42", "cocina")
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusReserved, reserved.Status)

	released, err := env.ledger.Release(context.Background(), b.ID, "orden-42", "cocina")
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusAvailable, released.Status)

	// El ciclo dejó dos movimientos informativos con cantidad cero.
	movs, err := env.store.Movements().ListByBatch(b.ID, 10, 0)
	require.NoError(t, err)
	var reserve, release int
	for _, m := range movs {
		switch m.Type {
		case entity.MovementTypeReserve:
			reserve++
			assert.True(t, m.Quantity.IsZero())
		case entity.MovementTypeRelease:
			release++
			assert.True(t, m.Quantity.IsZero())
		}
	}
	assert.Equal(t, 1, reserve)
	assert.Equal(t, 1, release)
}

func TestReserve_LoteDeOtroEstadoFalla(t *testing.T) {
	env := newTestEnv()
	ing := env.newIngredient(t, "Ostra", "1")
	b := env.receive(t, ing.ID, "2", "150").Batch

	_, err := env.ledger.WriteOff(context.Background(), inventory.WriteOffInput{
		BatchID: b.ID, Reason: "contaminated",
	})
	require.NoError(t, err)

	_, err = env.ledger.Reserve(context.Background(), b.ID, "orden-1", "cocina")
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
}
