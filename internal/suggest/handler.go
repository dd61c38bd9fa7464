package suggest

import (
	"github.com/gofiber/fiber/v2"
)

// POST /api/suggestions/generate
// Asks the configured AI provider for reorder suggestions covering every
// below-threshold product. Not retried on failure; the client re-invokes.
func GenerateSuggestionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		suggestions, err := svc.Generate()
		if err != nil {
			return err
		}
		return c.JSON(suggestions)
	}
}
