package batch_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	batchpkg "github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/batch"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyYield_DesgloseExacto(t *testing.T) {
	// 10 kg de carne con rendimiento 0.85: 8.5 usables, 1.5 de merma.
	out := batchpkg.ApplyYield(dec("10"), dec("0.85"))
	assert.True(t, out.Output.Equal(dec("8.5")), "output = %s", out.Output)
	assert.True(t, out.Waste.Equal(dec("1.5")), "waste = %s", out.Waste)
	assert.True(t, out.Input.Equal(dec("10")))
	assert.True(t, out.Output.Add(out.Waste).Equal(out.Input),
		"output + waste siempre reconstruye el input")
}

func TestApplyYield_RatioUnoSinMerma(t *testing.T) {
	out := batchpkg.ApplyYield(dec("7.25"), decimal.NewFromInt(1))
	assert.True(t, out.Output.Equal(dec("7.25")))
	assert.True(t, out.Waste.IsZero())
}

func TestEffectiveYield_Precedencia(t *testing.T) {
	profile := entity.YieldProfile{
		BaseYieldRatio: dec("0.85"),
		ProcessYields: []entity.ProcessYield{
			{ProcessType: "cleaning", YieldRatio: dec("0.92")},
		},
	}

	// El explícito del caller gana sobre el perfil.
	explicit := dec("0.5")
	assert.True(t, batchpkg.EffectiveYield(profile, "cleaning", &explicit).Equal(dec("0.5")))

	// Sin explícito, gana el perfil del proceso.
	assert.True(t, batchpkg.EffectiveYield(profile, "cleaning", nil).Equal(dec("0.92")))

	// Sin explícito ni perfil, cae al default.
	assert.True(t, batchpkg.EffectiveYield(profile, "cooking", nil).Equal(batchpkg.DefaultProcessYield))
}

func TestReceiptYield_BasePorDefectoUno(t *testing.T) {
	// Perfil sin rendimiento base: la recepción no descuenta nada.
	out := batchpkg.ReceiptYield(dec("12"), entity.YieldProfile{})
	assert.True(t, out.Output.Equal(dec("12")))
	assert.True(t, out.Waste.IsZero())
}

func TestReceiptYield_AplicaBaseDelPerfil(t *testing.T) {
	out := batchpkg.ReceiptYield(dec("10"), entity.YieldProfile{BaseYieldRatio: dec("0.85")})
	assert.True(t, out.Output.Equal(dec("8.5")))
	assert.True(t, out.Waste.Equal(dec("1.5")))
}
