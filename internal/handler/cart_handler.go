package handler

import (
	"encoding/json"
	"time"

	"go-pos-billing/internal/middleware"
	"go-pos-billing/internal/service"
	"go-pos-billing/pkg/jwt"
	"go-pos-billing/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	service service.CartService
	signer  *jwt.Signer
	ttl     time.Duration
}

func NewCartHandler(s service.CartService, signer *jwt.Signer, ttl time.Duration) *CartHandler {
	return &CartHandler{service: s, signer: signer, ttl: ttl}
}

type addItemRequest struct {
	ProductID uint            `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

type checkoutRequest struct {
	CustomerName string          `json:"customer_name"`
	Discount     json.RawMessage `json:"discount_percent"`
}

// NewSession issues a fresh cart handle. Every cart route needs the
// returned token.
func (h *CartHandler) NewSession(c *fiber.Ctx) error {
	sid, token, err := h.signer.NewSession()
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"session_id": sid,
		"token":      token,
		"expires_in": int(h.ttl.Seconds()),
	})
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	lines, err := h.service.ListCart(c.UserContext(), middleware.CartSession(c))
	if err != nil {
		return respondError(c, err)
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return c.JSON(fiber.Map{"items": lines, "total": total})
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	qty, err := validator.ParseDecimal(rawText(req.Quantity))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Quantity must be a number in range"})
	}

	line, err := h.service.AddToCart(c.UserContext(), middleware.CartSession(c), req.ProductID, qty)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Item added", "data": line})
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cart line ID"})
	}

	if err := h.service.RemoveFromCart(c.UserContext(), middleware.CartSession(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item removed"})
}

func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext(), middleware.CartSession(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// Checkout bills the cart. A discount that is not a number is ignored.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	discount := service.ParseDiscount(rawText(req.Discount))
	billID, err := h.service.Checkout(c.UserContext(), middleware.CartSession(c), req.CustomerName, discount)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Bill created", "bill_id": billID})
}
