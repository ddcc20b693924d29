// Package batch contiene los servicios de dominio puros del ciclo de vida de lotes:
// la matriz de transiciones de estado y la calculadora de rendimiento.
package batch

import (
	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

// Epsilon: umbral bajo el cual un neto se considera cero (agotado).
var Epsilon = decimal.RequireFromString("0.001")

// transitions es la matriz cerrada de transiciones de estado.
// depleted y written_off no tienen salidas; expired solo puede darse de baja.
var transitions = map[string][]string{
	entity.BatchStatusReceived:   {entity.BatchStatusInspecting, entity.BatchStatusAvailable, entity.BatchStatusQuarantine},
	entity.BatchStatusInspecting: {entity.BatchStatusAvailable, entity.BatchStatusQuarantine, entity.BatchStatusWrittenOff},
	entity.BatchStatusProcessing: {entity.BatchStatusAvailable},
	entity.BatchStatusAvailable: {
		entity.BatchStatusProcessing, entity.BatchStatusReserved, entity.BatchStatusDepleted,
		entity.BatchStatusExpired, entity.BatchStatusQuarantine, entity.BatchStatusWrittenOff,
	},
	entity.BatchStatusReserved:   {entity.BatchStatusAvailable, entity.BatchStatusDepleted},
	entity.BatchStatusExpired:    {entity.BatchStatusWrittenOff},
	entity.BatchStatusQuarantine: {entity.BatchStatusAvailable, entity.BatchStatusWrittenOff},
	entity.BatchStatusDepleted:   {},
	entity.BatchStatusWrittenOff: {},
}

// AllowedTransitions devuelve los estados alcanzables desde from (copia defensiva).
func AllowedTransitions(from string) []string {
	out := make([]string, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// CanTransition indica si from -> to está en la matriz. from == to siempre es válido
// (no hay transición).
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition valida y aplica un cambio de estado sobre el lote.
// Si el neto disponible quedó en (o bajo) Epsilon, fuerza depleted sin importar
// el estado solicitado, salvo que el lote ya esté en un estado terminal.
func Transition(b *entity.Batch, to string) error {
	if b.IsTerminal() && b.Status != to {
		return domain.ErrAlreadyTerminal
	}
	if !CanTransition(b.Status, to) {
		return &domain.TransitionError{From: b.Status, To: to, Allowed: AllowedTransitions(b.Status)}
	}
	b.Status = to
	applyAutoDeplete(b)
	return nil
}

// applyAutoDeplete fuerza depleted cuando el neto cruza el umbral de cero.
func applyAutoDeplete(b *entity.Batch) {
	if b.Status == entity.BatchStatusDepleted || b.Status == entity.BatchStatusWrittenOff {
		return
	}
	if IsEffectivelyZero(b.NetAvailable) {
		b.Status = entity.BatchStatusDepleted
	}
}

// ForceDepleteIfEmpty expone la regla de auto-agotado para los casos de uso
// que mutan cantidades sin pasar por Transition.
func ForceDepleteIfEmpty(b *entity.Batch) {
	applyAutoDeplete(b)
}

// IsEffectivelyZero indica si q está dentro de Epsilon de cero.
func IsEffectivelyZero(q decimal.Decimal) bool {
	return q.Abs().LessThanOrEqual(Epsilon)
}
