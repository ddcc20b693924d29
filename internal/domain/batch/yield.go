package batch

import (
	"github.com/shopspring/decimal"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

// DefaultProcessYield se aplica cuando ni el caller ni el perfil del ingrediente
// definen un rendimiento para el tipo de proceso.
var DefaultProcessYield = decimal.RequireFromString("0.9")

// YieldResult es el desglose de una transformación: neto resultante y merma.
type YieldResult struct {
	Ratio  decimal.Decimal
	Input  decimal.Decimal
	Output decimal.Decimal
	Waste  decimal.Decimal
}

// ApplyYield convierte una cantidad bruta en neta según el ratio:
// Output = Input × Ratio; Waste = Input − Output. El procesamiento nunca
// aumenta el stock usable, solo captura la pérdida por limpieza/cocción.
func ApplyYield(input, ratio decimal.Decimal) YieldResult {
	output := input.Mul(ratio)
	return YieldResult{
		Ratio:  ratio,
		Input:  input,
		Output: output,
		Waste:  input.Sub(output),
	}
}

// EffectiveYield resuelve el ratio a usar para un proceso: el explícito del caller
// si viene, si no el del perfil del ingrediente para ese tipo, si no el default.
func EffectiveYield(profile entity.YieldProfile, processType string, explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if ratio, ok := profile.YieldFor(processType); ok {
		return ratio
	}
	return DefaultProcessYield
}

// ReceiptYield calcula el neto usable y la merma de una recepción aplicando
// el rendimiento base del perfil (1.0 si el perfil no define uno positivo).
func ReceiptYield(grossIn decimal.Decimal, profile entity.YieldProfile) YieldResult {
	base := profile.BaseYieldRatio
	if !base.IsPositive() {
		base = decimal.NewFromInt(1)
	}
	return ApplyYield(grossIn, base)
}
