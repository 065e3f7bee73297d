package middleware

import (
	"strings"

	"go-pos-billing/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// CartSessionKey is the fiber.Ctx local holding the caller's cart handle
const CartSessionKey = "cart_session"

// RequireCartSession validates the cart session token and sets the cart
// handle in context. The token is read from "Authorization: Bearer <token>"
// or, for clients that cannot set that header, from X-Cart-Token.
func RequireCartSession(signer *jwt.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Get("X-Cart-Token")

		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
			}
			tokenString = parts[1]
		}

		if tokenString == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing cart session token"})
		}

		claims, err := signer.ValidateToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired cart session"})
		}

		c.Locals(CartSessionKey, claims.SessionID.String())
		return c.Next()
	}
}

// CartSession returns the cart handle set by RequireCartSession
func CartSession(c *fiber.Ctx) string {
	sid, _ := c.Locals(CartSessionKey).(string)
	return sid
}
