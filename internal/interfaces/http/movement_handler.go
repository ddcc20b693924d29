package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/dto"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
)

// MovementHandler expone la lectura del libro mayor.
type MovementHandler struct {
	query *inventory.QueryUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(query *inventory.QueryUseCase) *MovementHandler {
	return &MovementHandler{query: query}
}

// List godoc
// @Summary      Listar movimientos del libro mayor
// @Description  Por ingrediente (con rango de fechas) o por lote. batch_id tiene prioridad.
// @Tags         movements
// @Produce      json
// @Param        ingredient_id  query  string  false  "ID del ingrediente"
// @Param        batch_id       query  string  false  "ID del lote"
// @Param        from           query  string  false  "Desde (RFC3339)"
// @Param        to             query  string  false  "Hasta (RFC3339)"
// @Param        limit          query  int     false  "Límite"  default(50)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	out, err := h.query.ListMovements(c.Context(), c.Query("ingredient_id"), c.Query("batch_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMovementDTOs(out))
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
