package handler

import (
	"go-pos-billing/internal/middleware"
	"go-pos-billing/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Product   *ProductHandler
	Cart      *CartHandler
	Bill      *BillHandler
	Dashboard *DashboardHandler
}

// Register mounts the REST API on api (normally the /api/v1 group)
func Register(api fiber.Router, h Handlers, signer *jwt.Signer) {
	// Dashboard Routes
	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	api.Get("/dashboard/sales", h.Dashboard.GetSales)

	// Product Routes
	api.Get("/products", h.Product.GetProducts)
	api.Post("/products", h.Product.CreateProduct)
	api.Get("/products/:id", h.Product.GetProduct)
	api.Put("/products/:id", h.Product.UpdateProduct)
	api.Delete("/products/:id", h.Product.DeleteProduct)

	// Cart Routes (session token required, except to obtain one)
	api.Post("/cart/session", h.Cart.NewSession)
	cart := api.Group("/cart", middleware.RequireCartSession(signer))
	cart.Get("", h.Cart.GetCart)
	cart.Delete("", h.Cart.ClearCart)
	cart.Post("/items", h.Cart.AddItem)
	cart.Delete("/items/:id", h.Cart.RemoveItem)
	cart.Post("/checkout", h.Cart.Checkout)

	// Bill Routes
	api.Post("/bills", h.Bill.CreateBill)
	api.Get("/bills", h.Bill.GetBills)
	api.Get("/bills/:id", h.Bill.GetBill)
	api.Get("/bills/:id/receipt", h.Bill.GetReceipt)
}
