package handler

import (
	"strconv"

	"go-pos-farmstall/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

type checkoutRequest struct {
	Cart []service.CartLine `json:"cart"`
}

func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.service.Checkout(req.Cart, getUserID(c), getUsername(c))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(result)
}

func (h *CheckoutHandler) GetTransactions(c *fiber.Ctx) error {
	transactions, err := h.service.GetAllTransactions()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(transactions)
}

func (h *CheckoutHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	transaction, err := h.service.GetTransactionByID(uint(id))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(transaction)
}
