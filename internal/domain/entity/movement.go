package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro mayor de inventario.
const (
	MovementTypeReceive   = "receive"    // recepción de lote
	MovementTypeRecipeUse = "recipe_use" // consumo por producción (salida)
	MovementTypeProcess   = "process"    // merma por procesamiento (salida)
	MovementTypeWriteOff  = "write_off"  // baja definitiva (salida)
	MovementTypeTransfer  = "transfer"   // traslado entre almacenes
	MovementTypeAdjust    = "adjust"     // ajuste por conteo físico (±)
	MovementTypeReturn    = "return"     // devolución a proveedor
	MovementTypeReserve   = "reserve"    // reserva de lote (sin efecto en stock)
	MovementTypeRelease   = "release"    // liberación de reserva (sin efecto en stock)
)

// Movement es una entrada inmutable del libro mayor: registra un cambio de cantidad
// y nunca se actualiza ni se borra. Es la fuente de verdad para auditoría y para
// recomputar el agregado de stock de cada ingrediente.
type Movement struct {
	ID            string
	IngredientID  string
	BatchID       string // opcional
	Type          string
	Quantity      decimal.Decimal // con signo: positivo entrada, negativo salida
	GrossQuantity decimal.Decimal
	NetQuantity   decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	WasteFactor   decimal.Decimal
	Reason        string
	ReasonCode    string
	ProductionRef string // referencia de la orden de producción (trazabilidad)
	OperatorID    string
	Timestamp     time.Time
	CreatedAt     time.Time
}
