package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessYield es el rendimiento específico de un tipo de proceso
// (p. ej. "clean" 0.92, "cook" 0.70) dentro del perfil de un ingrediente.
type ProcessYield struct {
	ProcessType string          `json:"process_type"`
	YieldRatio  decimal.Decimal `json:"yield_ratio"`
}

// YieldProfile agrupa el rendimiento base aplicado en recepción y los
// rendimientos por proceso usados por el motor de procesamiento.
type YieldProfile struct {
	BaseYieldRatio decimal.Decimal `json:"base_yield_ratio"`
	ProcessYields  []ProcessYield  `json:"process_yields,omitempty"`
}

// YieldFor devuelve el rendimiento configurado para processType y si existe.
func (p YieldProfile) YieldFor(processType string) (decimal.Decimal, bool) {
	for _, py := range p.ProcessYields {
		if py.ProcessType == processType {
			return py.YieldRatio, true
		}
	}
	return decimal.Decimal{}, false
}

// Ingredient representa una entrada del directorio de ingredientes con su
// agregado de stock desnormalizado. CurrentStock es una caché: por construcción
// debe coincidir con la suma con signo de los movimientos del ingrediente;
// cualquier divergencia se repara recomputando desde el libro mayor.
type Ingredient struct {
	ID           string
	Name         string
	Unit         string // kg, l, unidad...
	CurrentStock decimal.Decimal
	MinStock     decimal.Decimal
	MaxStock     decimal.Decimal
	Yield        YieldProfile
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock indica si el stock actual está en o por debajo del mínimo.
func (i *Ingredient) IsLowStock() bool {
	return i.CurrentStock.LessThanOrEqual(i.MinStock)
}

// IsCriticalStock indica si el stock actual está en o por debajo de la mitad del mínimo.
func (i *Ingredient) IsCriticalStock() bool {
	half := i.MinStock.Div(decimal.NewFromInt(2))
	return i.CurrentStock.LessThanOrEqual(half)
}
