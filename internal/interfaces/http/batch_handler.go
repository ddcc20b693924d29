package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/dto"
	"github.com/DesumovJP/restaraunt-OS-sub000/internal/application/inventory"
)

// BatchHandler maneja las peticiones HTTP del ciclo de vida de lotes.
type BatchHandler struct {
	ledger  *inventory.LedgerUseCase
	scanner *inventory.ScannerUseCase
	query   *inventory.QueryUseCase

	expiryWindowDays int
}

// NewBatchHandler construye el handler.
func NewBatchHandler(ledger *inventory.LedgerUseCase, scanner *inventory.ScannerUseCase, query *inventory.QueryUseCase, expiryWindowDays int) *BatchHandler {
	if expiryWindowDays <= 0 {
		expiryWindowDays = 3
	}
	return &BatchHandler{ledger: ledger, scanner: scanner, query: query, expiryWindowDays: expiryWindowDays}
}

// Receive godoc
// @Summary      Registrar recepción de un lote
// @Description  Crea el lote aplicando el rendimiento base del ingrediente y escribe el movimiento receive.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  false  "Identidad del operador"
// @Param        body  body  dto.ReceiveBatchRequest  true  "ingredient_id, gross_in, unit_cost y opcionales"
// @Success      201   {object}  dto.BatchDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/receive [post]
func (h *BatchHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.Receive(c.Context(), inventory.ReceiveInput{
		IngredientID:  in.IngredientID,
		GrossIn:       in.GrossIn,
		UnitCost:      in.UnitCost,
		ExpiryDate:    in.ExpiryDate,
		SupplierID:    in.SupplierID,
		InvoiceNumber: in.InvoiceNumber,
		BatchNumber:   in.BatchNumber,
		Barcode:       in.Barcode,
		OperatorID:    operatorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"batch":                dto.NewBatchDTO(out.Batch),
		"new_ingredient_stock": out.NewStock,
	})
}

// Consume godoc
// @Summary      Consumir un ingrediente en orden FIFO
// @Description  Drena lotes del más antiguo al más reciente. Falla sin mutación si el disponible no alcanza.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  false  "Identidad del operador"
// @Param        body  body  dto.ConsumeRequest  true  "ingredient_id, quantity y opcionales"
// @Success      200   {object}  dto.ConsumeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/consume [post]
func (h *BatchHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.Consume(c.Context(), inventory.ConsumeInput{
		IngredientID:  in.IngredientID,
		Quantity:      in.Quantity,
		ProductionRef: in.ProductionRef,
		Reason:        in.Reason,
		Notes:         in.Notes,
		OperatorID:    operatorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.ConsumeResponse{TotalCost: out.TotalCost, NewStock: out.NewStock}
	for _, b := range out.Batches {
		resp.Batches = append(resp.Batches, dto.ConsumedBatchDTO{
			BatchID:     b.BatchID,
			BatchNumber: b.BatchNumber,
			Consumed:    b.Consumed,
			Remaining:   b.Remaining,
			Cost:        b.Cost,
			Depleted:    b.Depleted,
		})
	}
	return c.JSON(resp)
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         batches
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetBatch(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBatchDTO(out))
}

// List godoc
// @Summary      Listar lotes de un ingrediente
// @Tags         batches
// @Produce      json
// @Param        ingredient_id  query  string  true   "ID del ingrediente"
// @Param        status         query  string  false  "Filtrar por estado (repetible)"
// @Success      200  {array}   dto.BatchDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	ingredientID := c.Query("ingredient_id")
	if ingredientID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ingredient_id es requerido"})
	}
	var statuses []string
	if st := c.Query("status"); st != "" {
		statuses = append(statuses, st)
	}
	out, err := h.query.ListBatches(c.Context(), ingredientID, statuses)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBatchDTOs(out))
}

// Process godoc
// @Summary      Aplicar un proceso al lote (limpieza, cocción, porcionado)
// @Description  nuevoNeto = neto × rendimiento efectivo; la merma se descuenta del agregado.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  false  "Identidad del operador"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.ProcessRequest  true  "process_type y opcionalmente yield_ratio"
// @Success      200   {object}  dto.ProcessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/process [post]
func (h *BatchHandler) Process(c *fiber.Ctx) error {
	var in dto.ProcessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.Process(c.Context(), inventory.ProcessInput{
		BatchID:     c.Params("id"),
		ProcessType: in.ProcessType,
		YieldRatio:  in.YieldRatio,
		Notes:       in.Notes,
		OperatorID:  operatorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProcessResponse{
		Batch:        dto.NewBatchDTO(out.Batch),
		YieldRatio:   out.Yield.Ratio,
		InputAmount:  out.Yield.Input,
		OutputAmount: out.Yield.Output,
		WasteAmount:  out.Yield.Waste,
	})
}

// WriteOff godoc
// @Summary      Dar de baja cantidad de un lote
// @Description  Sin quantity da de baja todo el remanente y el lote queda written_off.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  false  "Identidad del operador"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.WriteOffRequest  true  "reason y opcionalmente quantity"
// @Success      200   {object}  dto.WriteOffResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/write-off [post]
func (h *BatchHandler) WriteOff(c *fiber.Ctx) error {
	var in dto.WriteOffRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.WriteOff(c.Context(), inventory.WriteOffInput{
		BatchID:    c.Params("id"),
		Reason:     in.Reason,
		Quantity:   in.Quantity,
		Notes:      in.Notes,
		OperatorID: operatorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.WriteOffResponse{
		Batch:        dto.NewBatchDTO(out.Batch),
		Quantity:     out.Quantity,
		Cost:         out.Cost,
		FullWriteOff: out.FullWriteOff,
	})
}

// Count godoc
// @Summary      Reconciliar un lote con su conteo físico
// @Description  Sobrescribe el neto con lo contado; si la discrepancia supera epsilon escribe un movimiento adjust.
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  false  "Identidad del operador"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.CountRequest  true  "actual_quantity"
// @Success      200   {object}  dto.CountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/count [post]
func (h *BatchHandler) Count(c *fiber.Ctx) error {
	var in dto.CountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.Count(c.Context(), inventory.CountInput{
		BatchID:        c.Params("id"),
		ActualQuantity: in.ActualQuantity,
		Notes:          in.Notes,
		OperatorID:     operatorID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CountResponse{
		Batch:              dto.NewBatchDTO(out.Batch),
		SystemQuantity:     out.SystemQuantity,
		ActualQuantity:     out.ActualQuantity,
		Discrepancy:        out.Discrepancy,
		DiscrepancyPercent: out.DiscrepancyPercent,
	})
}

// Lock godoc
// @Summary      Bloquear un lote (advisory)
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  true  "Identidad del operador (titular del bloqueo)"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.LockRequest  false  "reason"
// @Success      200   {object}  dto.BatchDTO
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/lock [post]
func (h *BatchHandler) Lock(c *fiber.Ctx) error {
	var in dto.LockRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.Lock(c.Context(), c.Params("id"), in.Reason, operatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBatchDTO(out))
}

// Unlock godoc
// @Summary      Desbloquear un lote
// @Description  Solo el titular puede desbloquear, salvo force=true (queda auditado).
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  true  "Identidad del operador"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.UnlockRequest  false  "force"
// @Success      200   {object}  dto.BatchDTO
// @Failure      423   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/unlock [post]
func (h *BatchHandler) Unlock(c *fiber.Ctx) error {
	var in dto.UnlockRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.Unlock(c.Context(), c.Params("id"), in.Force, operatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBatchDTO(out))
}

// Reserve godoc
// @Summary      Reservar un lote para una producción
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  false  "Identidad del operador"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.ReserveRequest  false  "production_ref"
// @Success      200   {object}  dto.BatchDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/reserve [post]
func (h *BatchHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.Reserve(c.Context(), c.Params("id"), in.ProductionRef, operatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBatchDTO(out))
}

// Release godoc
// @Summary      Liberar la reserva de un lote
// @Tags         batches
// @Accept       json
// @Produce      json
// @Param        X-Operator  header  string  false  "Identidad del operador"
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.ReserveRequest  false  "production_ref"
// @Success      200   {object}  dto.BatchDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/release [post]
func (h *BatchHandler) Release(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.Release(c.Context(), c.Params("id"), in.ProductionRef, operatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewBatchDTO(out))
}

// Expiring godoc
// @Summary      Lotes por vencer y ya vencidos (solo lectura)
// @Tags         batches
// @Produce      json
// @Param        days  query  int  false  "Ventana en días"  default(3)
// @Success      200   {object}  map[string]interface{}
// @Router       /api/batches/expiring [get]
func (h *BatchHandler) Expiring(c *fiber.Ctx) error {
	days := c.QueryInt("days", h.expiryWindowDays)
	out, err := h.scanner.ExpiringSoon(c.Context(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"expiring_soon":   dto.NewBatchDTOs(out.ExpiringSoon),
		"already_expired": dto.NewBatchDTOs(out.AlreadyExpired),
	})
}

// SweepExpired godoc
// @Summary      Transicionar a expired los lotes vencidos
// @Description  Los reservados se liberan primero; los bloqueados se saltan.
// @Tags         batches
// @Produce      json
// @Param        X-Operator  header  string  false  "Identidad del operador"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/batches/sweep-expired [post]
func (h *BatchHandler) SweepExpired(c *fiber.Ctx) error {
	out, err := h.scanner.SweepExpired(c.Context(), operatorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"swept":   dto.NewBatchDTOs(out.Swept),
		"skipped": dto.NewBatchDTOs(out.Skipped),
	})
}
