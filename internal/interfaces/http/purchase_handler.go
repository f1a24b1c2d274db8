package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/purchasing"
)

// PurchaseHandler maneja compras y proveedores.
type PurchaseHandler struct {
	uc        *purchasing.PurchaseUseCase
	suppliers *purchasing.SupplierUseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchasing.PurchaseUseCase, suppliers *purchasing.SupplierUseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, suppliers: suppliers}
}

// Create godoc
// @Summary      Crear compra
// @Description  Con delivery_status DELIVERED o PARTIAL acredita el stock de cada línea. Acepta Idempotency-Key.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.CreatePurchaseRequest  true  "Proveedor, líneas y estados"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	var f dto.PurchaseFilter
	if err := c.QueryParser(&f); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estados de pago y entrega
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la compra"
// @Param        body  body  dto.UpdatePurchaseStatusRequest  true  "payment_status y/o delivery_status"
// @Success      200   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/status [put]
func (h *PurchaseHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdatePurchaseStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "compra eliminada"})
}

func (h *PurchaseHandler) NextPurchaseNumber(c *fiber.Ctx) error {
	out, err := h.uc.NextPurchaseNumber(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *PurchaseHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.SupplierInfo
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.suppliers.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *PurchaseHandler) ListSuppliers(c *fiber.Ctx) error {
	out, err := h.suppliers.List(c.UserContext(), c.Query("search"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
