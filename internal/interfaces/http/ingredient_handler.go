package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/dto"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
)

// IngredientHandler maneja el directorio de ingredientes y sus reportes.
type IngredientHandler struct {
	directory *inventory.DirectoryUseCase
	ledger    *inventory.LedgerUseCase
	scanner   *inventory.ScannerUseCase
}

// NewIngredientHandler construye el handler.
func NewIngredientHandler(directory *inventory.DirectoryUseCase, ledger *inventory.LedgerUseCase, scanner *inventory.ScannerUseCase) *IngredientHandler {
	return &IngredientHandler{directory: directory, ledger: ledger, scanner: scanner}
}

// Create godoc
// @Summary      Dar de alta un ingrediente
// @Tags         ingredients
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIngredientRequest  true  "name, unit, mínimos y perfil de rendimiento"
// @Success      201   {object}  dto.IngredientDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ingredients [post]
func (h *IngredientHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateIngredientRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.directory.Create(c.Context(), inventory.CreateIngredientInput{
		Name:           in.Name,
		Unit:           in.Unit,
		MinStock:       in.MinStock,
		MaxStock:       in.MaxStock,
		BaseYieldRatio: in.BaseYieldRatio,
		ProcessYields:  in.ProcessYields,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewIngredientDTO(out))
}

// List godoc
// @Summary      Listar ingredientes
// @Tags         ingredients
// @Produce      json
// @Param        active  query  bool  false  "Solo activos"  default(true)
// @Success      200  {array}  dto.IngredientDTO
// @Router       /api/ingredients [get]
func (h *IngredientHandler) List(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", true)
	out, err := h.directory.List(c.Context(), activeOnly)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewIngredientDTOs(out))
}

// GetByID godoc
// @Summary      Obtener ingrediente por ID
// @Tags         ingredients
// @Produce      json
// @Param        id   path  string  true  "ID del ingrediente"
// @Success      200  {object}  dto.IngredientDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [get]
func (h *IngredientHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.directory.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewIngredientDTO(out))
}

// Recompute godoc
// @Summary      Reconstruir el agregado de stock desde el libro mayor
// @Tags         ingredients
// @Produce      json
// @Param        id   path  string  true  "ID del ingrediente"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/recompute [post]
func (h *IngredientHandler) Recompute(c *fiber.Ctx) error {
	out, err := h.ledger.RecomputeStock(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"ingredient_id": out.IngredientID,
		"previous":      out.Previous,
		"recomputed":    out.Recomputed,
		"drift":         out.Drift,
	})
}

// LowStock godoc
// @Summary      Ingredientes en o bajo su mínimo
// @Tags         ingredients
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/ingredients/low-stock [get]
func (h *IngredientHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.scanner.LowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"low_stock": dto.NewIngredientDTOs(out.LowStock),
		"critical":  dto.NewIngredientDTOs(out.Critical),
	})
}
