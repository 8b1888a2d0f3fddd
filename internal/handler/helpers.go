package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// currentUserID extracts the authenticated user's ID set by the JWT
// middleware.
func currentUserID(c *fiber.Ctx) (uint, error) {
	value := c.Locals("user_id")
	if id, ok := value.(uint); ok {
		return id, nil
	}

	return 0, fmt.Errorf("missing authenticated user")
}

// currentUserRole extracts the authenticated user's role, if any.
func currentUserRole(c *fiber.Ctx) string {
	if role, ok := c.Locals("user_role").(string); ok {
		return role
	}

	return ""
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := c.Params(key)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}

	return uint(value), nil
}

func parseIntParam(c *fiber.Ctx, key string) (int, error) {
	raw := c.Params(key)
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}

	return value, nil
}

func parseQueryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s query parameter", key)
	}

	return &value, nil
}
