package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/infrastructure/memory"
	apphttp "github.com/DesumovJP/restaraunt-OS-sub000/internal/interfaces/http"
)

// buildTestApp monta el router completo sobre el almacén en memoria.
func buildTestApp() (*fiber.App, *memory.Store) {
	store := memory.NewStore()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:           inventory.NewLedgerUseCase(store.TxRunner(), store.Ingredients(), store.AuditSink()),
		Scanner:          inventory.NewScannerUseCase(store.Batches(), store.Ingredients(), store.TxRunner(), store.AuditSink()),
		Directory:        inventory.NewDirectoryUseCase(store.Ingredients()),
		Query:            inventory.NewQueryUseCase(store.Batches(), store.Movements()),
		ExpiryWindowDays: 3,
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator", "op-http")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// createIngredient da de alta un ingrediente vía API y devuelve su id.
func createIngredient(t *testing.T, app *fiber.App, name string, baseYield string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/ingredients", fiber.Map{
		"name":             name,
		"unit":             "kg",
		"base_yield_ratio": baseYield,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.ID)
	return body.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo por HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_RecepcionYConsumoFIFO(t *testing.T) {
	app, _ := buildTestApp()
	ingID := createIngredient(t, app, "Carne de res", "0.85")

	// Recepción: 10 kg brutos a 200.
	resp := doJSON(t, app, http.MethodPost, "/api/batches/receive", fiber.Map{
		"ingredient_id": ingID,
		"gross_in":      "10",
		"unit_cost":     "200",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var received struct {
		Batch struct {
			ID           string `json:"id"`
			NetAvailable string `json:"net_available"`
			Status       string `json:"status"`
		} `json:"batch"`
		NewStock string `json:"new_ingredient_stock"`
	}
	decodeBody(t, resp, &received)
	assert.Equal(t, "8.5", received.Batch.NetAvailable)
	assert.Equal(t, "available", received.Batch.Status)
	assert.Equal(t, "8.5", received.NewStock)

	// Consumo de 5 kg netos.
	resp = doJSON(t, app, http.MethodPost, "/api/batches/consume", fiber.Map{
		"ingredient_id": ingID,
		"quantity":      "5",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var consumed struct {
		TotalCost string `json:"total_cost"`
		Batches   []struct {
			Consumed  string `json:"consumed"`
			Remaining string `json:"remaining"`
		} `json:"batches"`
	}
	decodeBody(t, resp, &consumed)
	require.Len(t, consumed.Batches, 1)
	assert.Equal(t, "5", consumed.Batches[0].Consumed)
	assert.Equal(t, "3.5", consumed.Batches[0].Remaining)
	assert.Equal(t, "1000", consumed.TotalCost)

	// El libro mayor refleja ambos movimientos.
	resp = doJSON(t, app, http.MethodGet, "/api/movements?ingredient_id="+ingID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movements []struct {
		Type     string `json:"type"`
		Quantity string `json:"quantity"`
	}
	decodeBody(t, resp, &movements)
	require.Len(t, movements, 2)
}

func TestAPI_ConsumoInsuficienteDevuelve409(t *testing.T) {
	app, _ := buildTestApp()
	ingID := createIngredient(t, app, "Queso", "1")

	doJSON(t, app, http.MethodPost, "/api/batches/receive", fiber.Map{
		"ingredient_id": ingID,
		"gross_in":      "2",
		"unit_cost":     "10",
	})

	resp := doJSON(t, app, http.MethodPost, "/api/batches/consume", fiber.Map{
		"ingredient_id": ingID,
		"quantity":      "5",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
}

func TestAPI_LoteBloqueadoDevuelve423(t *testing.T) {
	app, _ := buildTestApp()
	ingID := createIngredient(t, app, "Salmón", "1")

	resp := doJSON(t, app, http.MethodPost, "/api/batches/receive", fiber.Map{
		"ingredient_id": ingID,
		"gross_in":      "3",
		"unit_cost":     "300",
	})
	var received struct {
		Batch struct {
			ID string `json:"id"`
		} `json:"batch"`
	}
	decodeBody(t, resp, &received)
	batchID := received.Batch.ID

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/batches/%s/lock", batchID), fiber.Map{
		"reason": "inspección",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Otro operador intenta dar de baja el lote bloqueado.
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/batches/%s/write-off", batchID),
		bytes.NewBufferString(`{"reason":"spoiled"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator", "otro-operador")
	lockedResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusLocked, lockedResp.StatusCode)
}

func TestAPI_LoteInexistenteDevuelve404(t *testing.T) {
	app, _ := buildTestApp()
	resp := doJSON(t, app, http.MethodGet, "/api/batches/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ValidacionDevuelve400(t *testing.T) {
	app, _ := buildTestApp()
	ingID := createIngredient(t, app, "Tomate", "1")

	resp := doJSON(t, app, http.MethodPost, "/api/batches/receive", fiber.Map{
		"ingredient_id": ingID,
		"gross_in":      "-1",
		"unit_cost":     "10",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/batches", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "listar lotes exige ingredient_id")
}

func TestAPI_RecomputeYLowStock(t *testing.T) {
	app, _ := buildTestApp()
	ingID := createIngredient(t, app, "Arroz", "1")

	doJSON(t, app, http.MethodPost, "/api/batches/receive", fiber.Map{
		"ingredient_id": ingID,
		"gross_in":      "10",
		"unit_cost":     "5",
	})

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/ingredients/%s/recompute", ingID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var recompute struct {
		Recomputed string `json:"recomputed"`
		Drift      string `json:"drift"`
	}
	decodeBody(t, resp, &recompute)
	assert.Equal(t, "10", recompute.Recomputed)
	assert.Equal(t, "0", recompute.Drift)

	resp = doJSON(t, app, http.MethodGet, "/api/ingredients/low-stock", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
