package handler

import (
	"go-shoeroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InvoiceHandler struct {
	service service.InvoiceService
	errors  ErrorResponder
}

func NewInvoiceHandler(s service.InvoiceService, errors ErrorResponder) *InvoiceHandler {
	return &InvoiceHandler{service: s, errors: errors}
}

// GetInvoices lists invoices newest first
// GET /api/invoices
func (h *InvoiceHandler) GetInvoices(c *fiber.Ctx) error {
	invoices, err := h.service.GetAllInvoices(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(invoices)
}

// CreateInvoice decrements stock and records the invoice in one unit of work
// POST /api/invoices
func (h *InvoiceHandler) CreateInvoice(c *fiber.Ctx) error {
	var req service.CreateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errors.invalidJSON(c, err)
	}

	invoice, err := h.service.CreateInvoice(c.UserContext(), &req)
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// DeleteInvoices is the administrative reset
// DELETE /api/invoices
func (h *InvoiceHandler) DeleteInvoices(c *fiber.Ctx) error {
	n, err := h.service.DeleteAllInvoices(c.UserContext())
	if err != nil {
		return h.errors.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invoices deleted", "deleted": n})
}
