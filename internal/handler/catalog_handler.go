package handler

import (
	"strconv"

	"go-pos-farmstall/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(products)
}

// ResolveProduct serves the scan/search flow: ?code= takes a decoded barcode,
// a numeric id or a product name and returns the first match.
func (h *CatalogHandler) ResolveProduct(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "code query parameter required"})
	}

	product, err := h.service.Resolve(code)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(product)
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(&req, getUsername(c))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateProduct(uint(id), &req, getUsername(c))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := h.service.DeleteProduct(name); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *CatalogHandler) SuggestedPrice(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var markupOverride *float64
	if raw := c.Query("markup"); raw != "" {
		if markup, err := strconv.ParseFloat(raw, 64); err == nil {
			markupOverride = &markup
		}
	}

	suggestion, err := h.service.SuggestedPrice(uint(id), markupOverride)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(suggestion)
}

func (h *CatalogHandler) GetPurchases(c *fiber.Ctx) error {
	purchases, err := h.service.GetAllPurchases()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(purchases)
}

func (h *CatalogHandler) CreatePurchase(c *fiber.Ctx) error {
	var req service.RecordPurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, purchase, err := h.service.RecordPurchase(&req, getUsername(c))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message":  "Purchase recorded",
		"product":  product,
		"purchase": purchase,
	})
}

func (h *CatalogHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"markup_percent": h.service.GetMarkupPercent()})
}

func (h *CatalogHandler) UpdateSettings(c *fiber.Ctx) error {
	var req struct {
		MarkupPercent *float64 `json:"markup_percent"`
	}
	if err := c.BodyParser(&req); err != nil || req.MarkupPercent == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid markup_percent"})
	}

	if err := h.service.SetMarkupPercent(*req.MarkupPercent); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update settings"})
	}
	return c.JSON(fiber.Map{"markup_percent": *req.MarkupPercent})
}
