package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/settings"
)

// SettingsHandler configuración de la empresa.
type SettingsHandler struct {
	uc *settings.SettingsUseCase
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(uc *settings.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar configuración de la empresa
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateCompanySettingsRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.CompanySettingsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/settings/company [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCompanySettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
