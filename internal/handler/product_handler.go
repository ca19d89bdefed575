package handler

import (
	"go-shoeroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
	errors  ErrorResponder
}

func NewProductHandler(s service.ProductService, errors ErrorResponder) *ProductHandler {
	return &ProductHandler{service: s, errors: errors}
}

// GetProducts lists every product
// GET /api/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(products)
}

// GET /api/products/:sku
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("sku"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(product)
}

// CreateProduct generates the SKU when none is sent
// POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errors.invalidJSON(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct applies only the fields present in the body
// PUT /api/products/:sku
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errors.invalidJSON(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("sku"), &req)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(product)
}

// DELETE /api/products/:sku
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	product, err := h.service.DeleteProduct(c.UserContext(), c.Params("sku"))
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted", "sku": product.SKU, "id": product.ID})
}

// AdjustStock restocks or corrects one size
// PATCH /api/products/:sku/stock
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	var req service.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errors.invalidJSON(c, err)
	}

	product, err := h.service.AdjustStock(c.UserContext(), c.Params("sku"), &req)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(product)
}
