package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/MRD-HG/WilliamMetalAPI/internal/application/analytics"
)

// DashboardHandler indicadores del panel principal.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Stats godoc
// @Summary      Totales del panel
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardStatsDTO
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SalesChart ventas por día de los últimos ?days= días.
func (h *DashboardHandler) SalesChart(c *fiber.Ctx) error {
	out, err := h.uc.SalesChart(c.UserContext(), c.QueryInt("days", appanalytics.DefaultChartDays))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *DashboardHandler) TopProducts(c *fiber.Ctx) error {
	out, err := h.uc.TopProducts(c.UserContext(), c.QueryInt("count", appanalytics.DefaultTopLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *DashboardHandler) StockAlerts(c *fiber.Ctx) error {
	out, err := h.uc.StockAlerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Data todo el panel en una sola respuesta.
func (h *DashboardHandler) Data(c *fiber.Ctx) error {
	out, err := h.uc.Data(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
