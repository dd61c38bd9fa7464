package models

import "time"

// AppSettings: single-row application preferences for the AI suggestion
// provider. APIKey is the key of the active provider; the per-provider keys
// are kept so switching providers does not lose them.
type AppSettings struct {
	ID              uint   `gorm:"primaryKey" json:"-"`
	Provider        string `gorm:"size:20;not null;default:gemini" json:"provider"` // gemini, openai, anthropic
	AIModel         string `gorm:"size:50;not null" json:"aiModel"`
	APIKey          string `gorm:"size:200" json:"apiKey"`
	GeminiAPIKey    string `gorm:"size:200" json:"geminiApiKey"`
	OpenAIAPIKey    string `gorm:"size:200" json:"openaiApiKey"`
	AnthropicAPIKey string `gorm:"size:200" json:"anthropicApiKey"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// KeyForProvider returns the credential to use for the active provider,
// falling back to the generic APIKey field.
func (s *AppSettings) KeyForProvider() string {
	switch s.Provider {
	case "gemini":
		if s.GeminiAPIKey != "" {
			return s.GeminiAPIKey
		}
	case "openai":
		if s.OpenAIAPIKey != "" {
			return s.OpenAIAPIKey
		}
	case "anthropic":
		if s.AnthropicAPIKey != "" {
			return s.AnthropicAPIKey
		}
	}
	return s.APIKey
}
