package settings

import (
	"errors"

	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type UpdateSettingsRequest struct {
	Provider        string `json:"provider"`
	AIModel         string `json:"aiModel"`
	APIKey          string `json:"apiKey"`
	GeminiAPIKey    string `json:"geminiApiKey"`
	OpenAIAPIKey    string `json:"openaiApiKey"`
	AnthropicAPIKey string `json:"anthropicApiKey"`
}

func validProvider(p string) bool {
	return p == "gemini" || p == "openai" || p == "anthropic"
}

// GET /api/settings
// Returns defaults when no settings row exists yet.
func GetSettingsHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		settings, err := store.GetSettings()
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(models.AppSettings{
					Provider: "gemini",
					AIModel:  "gemini-2.5-flash",
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot load settings")
		}
		return c.JSON(settings)
	}
}

// PUT /api/settings
func UpdateSettingsHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !validProvider(body.Provider) {
			return httperr.Validation("provider must be one of gemini, openai, anthropic")
		}
		if body.AIModel == "" {
			return httperr.Validation("aiModel is required")
		}

		settings, err := store.GetSettings()
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return fiber.NewError(fiber.StatusInternalServerError, "Cannot load settings")
			}
			settings = &models.AppSettings{}
		}

		settings.Provider = body.Provider
		settings.AIModel = body.AIModel
		settings.APIKey = body.APIKey
		settings.GeminiAPIKey = body.GeminiAPIKey
		settings.OpenAIAPIKey = body.OpenAIAPIKey
		settings.AnthropicAPIKey = body.AnthropicAPIKey

		if err := store.SaveSettings(settings); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cannot save settings")
		}
		return c.JSON(settings)
	}
}
