package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/billing"
)

// InvoiceHandler vistas de factura y descarga del PDF.
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("saleId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar factura en PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        saleId  path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{saleId}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.DownloadPDF(c.UserContext(), c.Params("saleId"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdf)
}
