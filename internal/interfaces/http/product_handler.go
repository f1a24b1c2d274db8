package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/catalog"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
)

// ProductHandler maneja las peticiones HTTP del catálogo.
type ProductHandler struct {
	uc *catalog.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto con variantes
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        search        query  string  false  "Nombre, SKU o especificación"
// @Param        category      query  string  false  "Categoría"
// @Param        stock_status  query  string  false  "available | low | out"
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var f dto.ProductFilter
	if err := c.QueryParser(&f); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Search busca por texto libre (?query=).
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Categories categorías distintas del catálogo.
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	out, err := h.uc.Categories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete elimina el producto con sus variantes.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "producto eliminado"})
}

func (h *ProductHandler) AddVariant(c *fiber.Ctx) error {
	var in dto.CreateVariantRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddVariant(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *ProductHandler) UpdateVariant(c *fiber.Ctx) error {
	var in dto.UpdateVariantRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateVariant(c.UserContext(), c.Params("id"), c.Params("variantId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *ProductHandler) DeleteVariant(c *fiber.Ctx) error {
	if err := h.uc.DeleteVariant(c.UserContext(), c.Params("id"), c.Params("variantId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "variante eliminada"})
}
