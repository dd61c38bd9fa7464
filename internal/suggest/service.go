package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"
	"econome-backend/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// Suggestion: one AI-proposed reorder line.
type Suggestion struct {
	ProductID  string  `json:"productId"`
	SupplierID string  `json:"supplierId"`
	Quantity   float64 `json:"quantity"`
	Reasoning  string  `json:"reasoning"`
}

// Service builds the reorder prompt from below-threshold products and asks
// the configured AI provider for suggestions. The call is treated as an
// opaque, possibly failing external dependency: no retry here, the caller
// re-invokes manually.
type Service struct {
	store  storage.Store
	client *resty.Client
	log    *logger.Logger

	geminiBaseURL    string
	openaiBaseURL    string
	anthropicBaseURL string
}

func NewService(store storage.Store, log *logger.Logger) *Service {
	return &Service{
		store:            store,
		client:           resty.New().SetTimeout(30 * time.Second),
		log:              log.WithComponent("suggest_service"),
		geminiBaseURL:    "https://generativelanguage.googleapis.com",
		openaiBaseURL:    "https://api.openai.com",
		anthropicBaseURL: "https://api.anthropic.com",
	}
}

type promptSupplier struct {
	SupplierID   string  `json:"supplierId"`
	SupplierName string  `json:"supplierName"`
	Price        float64 `json:"price"`
	Delivery     string  `json:"delivery"`
	MinOrder     float64 `json:"minOrder"`
}

type promptProduct struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	CurrentStock string           `json:"currentStock"`
	MinStock     string           `json:"minStock"`
	Suppliers    []promptSupplier `json:"suppliers"`
}

// Generate returns reorder suggestions for every product at or below its
// minimum stock. An empty slice (no low-stock products) is not an error.
func (s *Service) Generate() ([]Suggestion, error) {
	settings, err := s.store.GetSettings()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		settings = &models.AppSettings{Provider: "gemini", AIModel: "gemini-2.5-flash"}
	}
	apiKey := settings.KeyForProvider()
	if apiKey == "" {
		return nil, httperr.Validation("no API key configured for provider %q", settings.Provider)
	}

	lowStock, err := s.store.LowStockProducts()
	if err != nil {
		return nil, err
	}
	if len(lowStock) == 0 {
		return []Suggestion{}, nil
	}
	suppliers, err := s.store.ListSuppliers()
	if err != nil {
		return nil, err
	}

	prompt, err := buildPrompt(lowStock, suppliers)
	if err != nil {
		return nil, err
	}

	s.log.Info("Requesting reorder suggestions", "provider", settings.Provider,
		"model", settings.AIModel, "low_stock_products", len(lowStock))

	var raw string
	switch settings.Provider {
	case "gemini":
		raw, err = s.callGemini(settings.AIModel, apiKey, prompt)
	case "openai":
		raw, err = s.callOpenAI(settings.AIModel, apiKey, prompt)
	case "anthropic":
		raw, err = s.callAnthropic(settings.AIModel, apiKey, prompt)
	default:
		return nil, httperr.Validation("unknown AI provider %q", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	suggestions, err := decodeSuggestions(raw)
	if err != nil {
		return nil, httperr.External(settings.Provider, err)
	}
	return suggestions, nil
}

func buildPrompt(lowStock []models.Product, suppliers []models.Supplier) (string, error) {
	details := make([]promptProduct, 0, len(lowStock))
	for _, p := range lowStock {
		var candidates []promptSupplier
		for _, sup := range suppliers {
			for _, mapping := range sup.Products {
				if mapping.InternalProductID == p.ID {
					candidates = append(candidates, promptSupplier{
						SupplierID:   sup.ID,
						SupplierName: sup.Name,
						Price:        mapping.Price,
						Delivery:     sup.DeliveryDays,
						MinOrder:     sup.MinOrder,
					})
					break
				}
			}
		}
		details = append(details, promptProduct{
			ID:           p.ID,
			Name:         p.Name,
			CurrentStock: fmt.Sprintf("%g %s", p.CurrentStock, p.Unit),
			MinStock:     fmt.Sprintf("%g %s", p.MinStock, p.Unit),
			Suppliers:    candidates,
		})
	}

	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are 'L'Économe Pitmaster', an intelligent purchasing assistant for a restaurant.
Your goal is to prevent stock shortages by suggesting optimized orders.
Priority is 'Économie': always choose the cheapest supplier available.

Analyze the following products that are below their minimum stock level.
For each product, suggest a quantity to order to bring the stock to at least double the minimum threshold.
Then, select the supplier with the absolute lowest price per unit.

Here is the data:
%s

Respond with a valid JSON array. Each object in the array must have:
- productId (string): The ID of the product
- supplierId (string): The ID of the selected supplier
- quantity (number): The quantity to order
- reasoning (string): Brief explanation of your choice`, string(data)), nil
}

func (s *Service) callGemini(model, apiKey, prompt string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]string{"responseMimeType": "application/json"},
	}
	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", apiKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.geminiBaseURL, model))
	if err != nil {
		return "", httperr.External("gemini", err)
	}
	if resp.IsError() {
		return "", httperr.External("gemini", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", httperr.External("gemini", errors.New("empty response"))
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

func (s *Service) callOpenAI(model, apiKey, prompt string) (string, error) {
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a helpful assistant that responds with valid JSON only. Do not include any markdown formatting or code blocks.",
			},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
		"temperature":     0.7,
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey).
		SetBody(body).
		SetResult(&out).
		Post(s.openaiBaseURL + "/v1/chat/completions")
	if err != nil {
		return "", httperr.External("openai", err)
	}
	if resp.IsError() {
		return "", httperr.External("openai", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", httperr.External("openai", errors.New("no content in response"))
	}
	return out.Choices[0].Message.Content, nil
}

func (s *Service) callAnthropic(model, apiKey, prompt string) (string, error) {
	body := map[string]any{
		"model":      model,
		"max_tokens": 4096,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt + "\n\nRespond with a valid JSON array only, without any markdown formatting.",
			},
		},
	}
	var out struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetBody(body).
		SetResult(&out).
		Post(s.anthropicBaseURL + "/v1/messages")
	if err != nil {
		return "", httperr.External("anthropic", err)
	}
	if resp.IsError() {
		return "", httperr.External("anthropic", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	if len(out.Content) == 0 || out.Content[0].Text == "" {
		return "", httperr.External("anthropic", errors.New("no content in response"))
	}
	return out.Content[0].Text, nil
}

// decodeSuggestions tolerates markdown fences and the {"suggestions": [...]}
// envelope some providers wrap the array in.
func decodeSuggestions(raw string) ([]Suggestion, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	raw = strings.TrimSpace(raw)

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err == nil {
		return suggestions, nil
	}
	var wrapped struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Suggestions != nil {
		return wrapped.Suggestions, nil
	}
	return nil, fmt.Errorf("malformed suggestion payload: %.80s", raw)
}
