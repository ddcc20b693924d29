package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Scanner   *inventory.ScannerUseCase
	Directory *inventory.DirectoryUseCase
	Query     *inventory.QueryUseCase

	ExpiryWindowDays int
}

// Router registra las rutas de la API. La identidad del operador llega en el
// header X-Operator; la autenticación ocurre aguas arriba.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Ingredientes (directorio y reportes)
	ingredients := api.Group("/ingredients")
	ingredientHandler := NewIngredientHandler(deps.Directory, deps.Ledger, deps.Scanner)
	ingredients.Post("/", ingredientHandler.Create)
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Get("/low-stock", ingredientHandler.LowStock)
	ingredients.Get("/:id", ingredientHandler.GetByID)
	ingredients.Post("/:id/recompute", ingredientHandler.Recompute)

	// Lotes (ciclo de vida completo). Las rutas fijas van antes de /:id.
	batches := api.Group("/batches")
	batchHandler := NewBatchHandler(deps.Ledger, deps.Scanner, deps.Query, deps.ExpiryWindowDays)
	batches.Post("/receive", batchHandler.Receive)
	batches.Post("/consume", batchHandler.Consume)
	batches.Get("/expiring", batchHandler.Expiring)
	batches.Post("/sweep-expired", batchHandler.SweepExpired)
	batches.Get("/", batchHandler.List)
	batches.Get("/:id", batchHandler.GetByID)
	batches.Post("/:id/process", batchHandler.Process)
	batches.Post("/:id/write-off", batchHandler.WriteOff)
	batches.Post("/:id/count", batchHandler.Count)
	batches.Post("/:id/lock", batchHandler.Lock)
	batches.Post("/:id/unlock", batchHandler.Unlock)
	batches.Post("/:id/reserve", batchHandler.Reserve)
	batches.Post("/:id/release", batchHandler.Release)

	// Libro mayor (solo lectura)
	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.Query)
	movements.Get("/", movementHandler.List)
}
