package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrValidation        = errors.New("entrada inválida")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrBatchLocked       = errors.New("lote bloqueado")
	ErrAlreadyTerminal   = errors.New("el lote está en estado terminal")
)

// TransitionError detalla una transición rechazada por la matriz de estados.
// errors.Is(err, ErrInvalidTransition) devuelve true.
type TransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición %s -> %s no permitida (permitidas: %v)", e.From, e.To, e.Allowed)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// InsufficientStockError detalla un consumo que excede el total disponible del ingrediente.
type InsufficientStockError struct {
	IngredientID string
	Requested    decimal.Decimal
	Available    decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente del ingrediente %s: solicitado %s, disponible %s",
		e.IngredientID, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// LockedError detalla una mutación rechazada sobre un lote bloqueado por otro operador.
type LockedError struct {
	BatchID  string
	LockedBy string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("lote %s bloqueado por %q", e.BatchID, e.LockedBy)
}

func (e *LockedError) Unwrap() error { return ErrBatchLocked }

// ValidationError indica el campo que no pasó validación y por qué.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo %q inválido: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
