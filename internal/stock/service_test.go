package stock

import (
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

	products := []models.Product{
		{ID: "p1", Name: "Poitrine de porc", Unit: "kg", CurrentStock: 3, MinStock: 5},
		{ID: "p2", Name: "Sauce BBQ", Unit: "litre", CurrentStock: 12, MinStock: 2},
	}
	for i := range products {
		require.NoError(t, store.CreateProduct(&products[i]))
	}
	return svc, store
}

func TestAdjust(t *testing.T) {
	svc, store := newTestService(t)

	updated, err := svc.Adjust("p1", 20, "Recount after delivery")
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.CurrentStock)

	movements, err := store.ListMovements("p1", 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementAdjustment, movements[0].MovementType)
	assert.Equal(t, 17.0, movements[0].Quantity)
	assert.Equal(t, 3.0, movements[0].PreviousStock)
	assert.Equal(t, 20.0, movements[0].NewStock)
	assert.Equal(t, "Recount after delivery", movements[0].Notes)
}

func TestAdjustDefaultsNotes(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Adjust("p1", 0, "")
	require.NoError(t, err)

	movements, err := store.ListMovements("p1", 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "Manual adjustment", movements[0].Notes)
	assert.Equal(t, -3.0, movements[0].Quantity)
}

func TestAdjustValidation(t *testing.T) {
	svc, _ := newTestService(t)

	var verr *httperr.ValidationError
	_, err := svc.Adjust("p1", -1, "")
	require.ErrorAs(t, err, &verr)

	var nerr *httperr.NotFoundError
	_, err = svc.Adjust("ghost", 5, "")
	require.ErrorAs(t, err, &nerr)
}

func TestApplySales(t *testing.T) {
	svc, store := newTestService(t)

	result, err := svc.ApplySales([]SaleLine{
		{ProductName: "Sauce BBQ", QuantitySold: 4},
		{ProductName: "Plat inconnu", QuantitySold: 2},
	})
	require.NoError(t, err)
	require.Len(t, result.UpdatedProducts, 1)
	assert.Equal(t, 8.0, result.UpdatedProducts[0].CurrentStock)
	assert.Equal(t, []string{"Plat inconnu"}, result.SkippedNames)

	movements, err := store.ListMovements("p2", 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementSale, movements[0].MovementType)
	assert.Equal(t, -4.0, movements[0].Quantity)
}

func TestApplySalesClampsAtZero(t *testing.T) {
	svc, store := newTestService(t)

	// Stock is 3, the export claims 5 sold: stock floors at zero and the
	// ledger records the effective change of -3.
	result, err := svc.ApplySales([]SaleLine{
		{ProductName: "Poitrine de porc", QuantitySold: 5},
	})
	require.NoError(t, err)
	require.Len(t, result.UpdatedProducts, 1)
	assert.Equal(t, 0.0, result.UpdatedProducts[0].CurrentStock)

	movements, err := store.ListMovements("p1", 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -3.0, movements[0].Quantity)
	assert.Equal(t, 3.0, movements[0].PreviousStock)
	assert.Equal(t, 0.0, movements[0].NewStock)
}

func TestApplySalesRejectsNegativeQuantity(t *testing.T) {
	svc, _ := newTestService(t)

	var verr *httperr.ValidationError
	_, err := svc.ApplySales([]SaleLine{{ProductName: "Sauce BBQ", QuantitySold: -1}})
	require.ErrorAs(t, err, &verr)
}

func TestApplyInventoryImport(t *testing.T) {
	svc, store := newTestService(t)

	result, err := svc.ApplyInventoryImport("inventaire-aout.xlsx", []CountLine{
		{ProductName: "Poitrine de porc", NewStock: 7},
		{ProductName: "Produit fantôme", NewStock: 1},
	})
	require.NoError(t, err)
	require.Len(t, result.UpdatedProducts, 1)
	assert.Equal(t, 7.0, result.UpdatedProducts[0].CurrentStock)
	assert.Equal(t, []string{"Produit fantôme"}, result.SkippedNames)
	assert.Equal(t, "inventaire-aout.xlsx", result.Record.FileName)
	assert.Equal(t, 1, result.Record.ProductsUpdated)

	movements, err := store.ListMovements("p1", 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementAdjustment, movements[0].MovementType)
	assert.Equal(t, 4.0, movements[0].Quantity)
	assert.Equal(t, result.Record.ID, movements[0].ReferenceID)

	history, err := svc.ImportHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.Record.ID, history[0].ID)
}

func TestApplyInventoryImportValidation(t *testing.T) {
	svc, _ := newTestService(t)

	var verr *httperr.ValidationError
	_, err := svc.ApplyInventoryImport("", nil)
	require.ErrorAs(t, err, &verr)

	_, err = svc.ApplyInventoryImport("counts.xlsx", []CountLine{
		{ProductName: "Sauce BBQ", NewStock: -2},
	})
	require.ErrorAs(t, err, &verr)
}

func TestMovementsFilterAndLimit(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Adjust("p1", 5, "")
	require.NoError(t, err)
	_, err = svc.Adjust("p2", 6, "")
	require.NoError(t, err)
	_, err = svc.Adjust("p1", 9, "")
	require.NoError(t, err)

	all, err := svc.Movements("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	p1Only, err := svc.Movements("p1", 0)
	require.NoError(t, err)
	require.Len(t, p1Only, 2)
	assert.Equal(t, p1Only[0].NewStock, p1Only[1].PreviousStock)

	limited, err := svc.Movements("p1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
