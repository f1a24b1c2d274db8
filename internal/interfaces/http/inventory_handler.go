package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario.
type InventoryHandler struct {
	uc            *inventory.InventoryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.InventoryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment}
}

// UpdateStock godoc
// @Summary      Registrar entrada o salida manual
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateStockRequest  true  "product_id, variant_id, type (IN|OUT), quantity"
// @Success      200   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/update-stock [post]
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	var in dto.UpdateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateStock(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AdjustStock godoc
// @Summary      Ajustar stock a un valor absoluto
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, variant_id, new_stock, reason"
// @Success      200   {object}  dto.StockChangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust-stock [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AdjustStock(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stats totales del inventario.
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Alerts variantes en o bajo el mínimo.
func (h *InventoryHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.uc.Alerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Últimos movimientos
// @Tags         inventory
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        variant_id  query  string  false  "Filtrar por variante"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	out, err := h.uc.Movements(c.UserContext(), c.Query("product_id"), c.Query("variant_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *InventoryHandler) Movement(c *fiber.Ctx) error {
	out, err := h.uc.Movement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile compara stock y libro de una variante.
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Variantes en o bajo su mínimo con la cantidad sugerida hasta el máximo.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
