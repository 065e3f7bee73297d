package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go-pos-billing/internal/model"
	"go-pos-billing/internal/receipt"
	"go-pos-billing/internal/service"
	"go-pos-billing/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type BillHandler struct {
	service  service.BillingService
	shopName string
}

func NewBillHandler(s service.BillingService, shopName string) *BillHandler {
	return &BillHandler{service: s, shopName: shopName}
}

type billItemRequest struct {
	ProductID uint            `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

type createBillRequest struct {
	CustomerName string            `json:"customer_name"`
	Discount     json.RawMessage   `json:"discount_percent"`
	Items        []billItemRequest `json:"items"`
}

func (h *BillHandler) CreateBill(c *fiber.Ctx) error {
	var req createBillRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	items := make([]model.BillLine, 0, len(req.Items))
	for i, it := range req.Items {
		qty, err := validator.ParseDecimal(rawText(it.Quantity))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": fmt.Sprintf("Item %d: quantity must be a number in range", i+1)})
		}
		items = append(items, model.BillLine{ProductID: it.ProductID, Quantity: qty})
	}

	discount := service.ParseDiscount(rawText(req.Discount))
	id, err := h.service.CreateBill(c.UserContext(), req.CustomerName, discount, items)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Bill created", "bill_id": id})
}

func (h *BillHandler) GetBills(c *fiber.Ctx) error {
	bills, err := h.service.ListBills(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bills)
}

func (h *BillHandler) GetBill(c *fiber.Ctx) error {
	bill, items, ok := h.lookup(c)
	if !ok {
		return nil
	}
	return c.JSON(fiber.Map{"bill": bill, "items": items})
}

// GetReceipt renders the bill as a PDF download
func (h *BillHandler) GetReceipt(c *fiber.Ctx) error {
	bill, items, ok := h.lookup(c)
	if !ok {
		return nil
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, bill, items, h.shopName); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, receipt.InvoiceNumber(bill)))
	return c.Send(buf.Bytes())
}

// lookup writes the error response itself and reports ok=false when the
// bill cannot be served
func (h *BillHandler) lookup(c *fiber.Ctx) (*model.Bill, []model.BillItem, bool) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Status(400).JSON(fiber.Map{"error": "Invalid bill ID"})
		return nil, nil, false
	}

	bill, items, err := h.service.GetBill(c.UserContext(), id)
	if err != nil {
		_ = respondError(c, err)
		return nil, nil, false
	}
	if bill == nil {
		_ = c.Status(404).JSON(fiber.Map{"error": "Bill not found"})
		return nil, nil, false
	}
	return bill, items, true
}
