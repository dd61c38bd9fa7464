package suggest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"
	"econome-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	log := logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stderr"})
	svc := NewService(store, log)

	require.NoError(t, store.CreateProduct(&models.Product{
		ID: "p1", Name: "Tomates", Unit: "kg", CurrentStock: 1, MinStock: 5,
	}))
	require.NoError(t, store.CreateProduct(&models.Product{
		ID: "p2", Name: "Oignons", Unit: "kg", CurrentStock: 50, MinStock: 3,
	}))
	require.NoError(t, store.CreateSupplier(&models.Supplier{
		ID: "sup-1", Name: "Metro", DeliveryDays: "Lundi, Jeudi", MinOrder: 100,
		Products: []models.SupplierProduct{
			{SupplierID: "sup-1", InternalProductID: "p1", Price: 2.5},
		},
	}))
	return svc, store
}

const suggestionJSON = `[{"productId":"p1","supplierId":"sup-1","quantity":10,"reasoning":"Cheapest supplier"}]`

func TestGenerateWithGemini(t *testing.T) {
	svc, store := newTestService(t)

	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": suggestionJSON}}}},
			},
		})
	}))
	defer server.Close()
	svc.geminiBaseURL = server.URL

	require.NoError(t, store.SaveSettings(&models.AppSettings{
		Provider: "gemini", AIModel: "gemini-2.5-flash", GeminiAPIKey: "gk-test",
	}))

	suggestions, err := svc.Generate()
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "p1", suggestions[0].ProductID)
	assert.Equal(t, "sup-1", suggestions[0].SupplierID)
	assert.Equal(t, 10.0, suggestions[0].Quantity)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "gk-test", gotKey)
}

func TestGenerateWithOpenAI(t *testing.T) {
	svc, store := newTestService(t)

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"suggestions": ` + suggestionJSON + `}`}},
			},
		})
	}))
	defer server.Close()
	svc.openaiBaseURL = server.URL

	require.NoError(t, store.SaveSettings(&models.AppSettings{
		Provider: "openai", AIModel: "gpt-4o-mini", OpenAIAPIKey: "sk-test",
	}))

	suggestions, err := svc.Generate()
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestGenerateWithAnthropic(t *testing.T) {
	svc, store := newTestService(t)

	var gotKey, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		assert.Equal(t, "/v1/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"text": "```json\n" + suggestionJSON + "\n```"},
			},
		})
	}))
	defer server.Close()
	svc.anthropicBaseURL = server.URL

	require.NoError(t, store.SaveSettings(&models.AppSettings{
		Provider: "anthropic", AIModel: "claude-sonnet-4-20250514", AnthropicAPIKey: "ak-test",
	}))

	suggestions, err := svc.Generate()
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "ak-test", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
}

func TestGeneratePromptCarriesLowStockOnly(t *testing.T) {
	svc, store := newTestService(t)

	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "[]"}}}},
			},
		})
	}))
	defer server.Close()
	svc.geminiBaseURL = server.URL

	require.NoError(t, store.SaveSettings(&models.AppSettings{
		Provider: "gemini", AIModel: "gemini-2.5-flash", APIKey: "k",
	}))

	_, err := svc.Generate()
	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "Tomates")
	assert.Contains(t, gotPrompt, "Metro")
	assert.NotContains(t, gotPrompt, "Oignons") // well above its minimum
}

func TestGenerateWithoutAPIKey(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, store.SaveSettings(&models.AppSettings{
		Provider: "gemini", AIModel: "gemini-2.5-flash",
	}))

	var verr *httperr.ValidationError
	_, err := svc.Generate()
	require.ErrorAs(t, err, &verr)
}

func TestGenerateNoLowStockProducts(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, store.SaveSettings(&models.AppSettings{
		Provider: "gemini", AIModel: "gemini-2.5-flash", APIKey: "k",
	}))
	// Restock the only low product: no provider call should happen.
	product, err := store.GetProduct("p1")
	require.NoError(t, err)
	product.CurrentStock = 100
	require.NoError(t, store.SaveProduct(product))

	suggestions, err := svc.Generate()
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestGenerateProviderFailure(t *testing.T) {
	svc, store := newTestService(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()
	svc.geminiBaseURL = server.URL

	require.NoError(t, store.SaveSettings(&models.AppSettings{
		Provider: "gemini", AIModel: "gemini-2.5-flash", APIKey: "k",
	}))

	var xerr *httperr.ExternalServiceError
	_, err := svc.Generate()
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "gemini", xerr.Service)
}

func TestGenerateUnknownProvider(t *testing.T) {
	svc, store := newTestService(t)
	require.NoError(t, store.SaveSettings(&models.AppSettings{
		Provider: "mistral", AIModel: "mistral-large", APIKey: "k",
	}))

	var verr *httperr.ValidationError
	_, err := svc.Generate()
	require.ErrorAs(t, err, &verr)
}

func TestDecodeSuggestions(t *testing.T) {
	plain, err := decodeSuggestions(suggestionJSON)
	require.NoError(t, err)
	assert.Len(t, plain, 1)

	fenced, err := decodeSuggestions("```json\n" + suggestionJSON + "\n```")
	require.NoError(t, err)
	assert.Len(t, fenced, 1)

	wrapped, err := decodeSuggestions(`{"suggestions": ` + suggestionJSON + `}`)
	require.NoError(t, err)
	assert.Len(t, wrapped, 1)

	_, err = decodeSuggestions("I cannot help with that.")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "malformed"))
}
