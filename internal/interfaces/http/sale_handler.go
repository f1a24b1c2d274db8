package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/sales"
)

// HeaderIdempotencyKey cabecera para reintentos seguros de creación.
const HeaderIdempotencyKey = "Idempotency-Key"

// SaleHandler maneja ventas y clientes.
type SaleHandler struct {
	uc        *sales.SaleUseCase
	customers *sales.CustomerUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase, customers *sales.CustomerUseCase) *SaleHandler {
	return &SaleHandler{uc: uc, customers: customers}
}

// Create godoc
// @Summary      Crear venta
// @Description  Descuenta stock de cada línea en una sola transacción. Acepta Idempotency-Key.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.CreateSaleRequest  true  "Cliente, líneas, método de pago"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Produce      json
// @Param        search      query  string  false  "Número de factura o cliente"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD (inclusivo)"
// @Param        status      query  string  false  "PENDING | COMPLETED | CANCELLED"
// @Success      200  {array}  dto.SaleResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var f dto.SaleFilter
	if err := c.QueryParser(&f); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus cambia el estado; mover a o desde un estado sin stock ajusta el inventario.
func (h *SaleHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateSaleStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "venta eliminada"})
}

// NextInvoiceNumber vista previa del próximo número (no lo reserva).
func (h *SaleHandler) NextInvoiceNumber(c *fiber.Ctx) error {
	out, err := h.uc.NextInvoiceNumber(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *SaleHandler) CreateCustomer(c *fiber.Ctx) error {
	var in dto.CustomerInfo
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.customers.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *SaleHandler) ListCustomers(c *fiber.Ctx) error {
	out, err := h.customers.List(c.UserContext(), c.Query("search"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
