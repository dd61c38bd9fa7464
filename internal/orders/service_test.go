package orders

import (
	"testing"

	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"
	"econome-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stderr"})
}

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := NewService(store, testLogger())

	products := []models.Product{
		{ID: "p1", Name: "Tomates", Family: "Légumes", Unit: "kg", CurrentStock: 2, MinStock: 5},
		{ID: "p2", Name: "Oignons", Family: "Légumes", Unit: "kg", CurrentStock: 10, MinStock: 3},
		{ID: "p3", Name: "Huile d'olive", Family: "Épicerie", Unit: "litre", CurrentStock: 1, MinStock: 2},
	}
	for i := range products {
		require.NoError(t, store.CreateProduct(&products[i]))
	}

	require.NoError(t, store.CreateSupplier(&models.Supplier{
		ID:       "sup-1",
		Name:     "Metro",
		MinOrder: 100,
		Products: []models.SupplierProduct{
			{SupplierID: "sup-1", InternalProductID: "p1", SupplierSku: "MT-TOM", Price: 25},
			{SupplierID: "sup-1", InternalProductID: "p2", SupplierSku: "MT-OIG", Price: 10},
		},
	}))
	require.NoError(t, store.CreateSupplier(&models.Supplier{
		ID:       "sup-2",
		Name:     "Pomona",
		MinOrder: 50,
		Products: []models.SupplierProduct{
			{SupplierID: "sup-2", InternalProductID: "p3", SupplierSku: "PM-HUI", Price: 8},
		},
	}))

	return svc, store
}

func TestCreateFromCart(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateFromCart([]CartItem{
		{ProductID: "p1", SupplierID: "sup-1", Quantity: 10},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	order := created[0]
	assert.Equal(t, models.StatusDraft, order.Status)
	assert.Equal(t, "sup-1", order.SupplierID)
	assert.Equal(t, "Metro", order.SupplierName)
	assert.Equal(t, 250.0, order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Tomates", order.Items[0].ProductName)
	assert.Equal(t, 25.0, order.Items[0].PricePerUnit)
	assert.Equal(t, 10.0, order.Items[0].Quantity)
	assert.Equal(t, 0.0, order.Items[0].ReceivedQuantity)

	stored, err := svc.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, stored.Total)
}

func TestCreateFromCartGroupsBySupplier(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateFromCart([]CartItem{
		{ProductID: "p1", SupplierID: "sup-1", Quantity: 2},
		{ProductID: "p3", SupplierID: "sup-2", Quantity: 5},
		{ProductID: "p2", SupplierID: "sup-1", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, "sup-1", created[0].SupplierID)
	assert.Len(t, created[0].Items, 2)
	assert.Equal(t, 2*25.0+3*10.0, created[0].Total)

	assert.Equal(t, "sup-2", created[1].SupplierID)
	assert.Len(t, created[1].Items, 1)
	assert.Equal(t, 40.0, created[1].Total)
}

func TestCreateFromCartSkipsUnresolvableLines(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.CreateFromCart([]CartItem{
		{ProductID: "p1", SupplierID: "sup-1", Quantity: 1},
		{ProductID: "ghost", SupplierID: "sup-1", Quantity: 4},
		{ProductID: "p1", SupplierID: "no-such-supplier", Quantity: 2},
		{ProductID: "p3", SupplierID: "sup-1", Quantity: 2}, // sup-1 has no mapping for p3
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Len(t, created[0].Items, 1)
	assert.Equal(t, "p1", created[0].Items[0].ProductID)
}

func TestCreateFromCartValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateFromCart(nil)
	var verr *httperr.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.CreateFromCart([]CartItem{{ProductID: "p1", SupplierID: "sup-1", Quantity: -1}})
	require.ErrorAs(t, err, &verr)
}

func createDraftOrder(t *testing.T, svc *Service) models.Order {
	t.Helper()
	created, err := svc.CreateFromCart([]CartItem{
		{ProductID: "p1", SupplierID: "sup-1", Quantity: 10},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestOrderLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	order := createDraftOrder(t, svc)

	sent, err := svc.Send(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, sent.Status)

	_, err = svc.Send(order.ID)
	var serr *httperr.InvalidStateError
	require.ErrorAs(t, err, &serr)

	confirmed, err := svc.Confirm(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	// Confirmed orders can no longer be cancelled.
	_, err = svc.Cancel(order.ID)
	require.ErrorAs(t, err, &serr)
}

func TestCancelDraftAndSent(t *testing.T) {
	svc, _ := newTestService(t)

	draft := createDraftOrder(t, svc)
	cancelled, err := svc.Cancel(draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	other := createDraftOrder(t, svc)
	_, err = svc.Send(other.ID)
	require.NoError(t, err)
	cancelled, err = svc.Cancel(other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// Cancellation is terminal.
	var serr *httperr.InvalidStateError
	_, err = svc.Send(other.ID)
	require.ErrorAs(t, err, &serr)
	_, err = svc.ReceiveItems(other.ID, []ReceiveLine{{ProductID: "p1", Quantity: 1}})
	require.ErrorAs(t, err, &serr)
}

func TestReceivePartialThenFull(t *testing.T) {
	svc, store := newTestService(t)
	order := createDraftOrder(t, svc) // 10 kg of p1, stock starts at 2

	updated, err := svc.ReceiveItems(order.ID, []ReceiveLine{{ProductID: "p1", Quantity: 6}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartiallyReceived, updated.Status)
	assert.Equal(t, 6.0, updated.Items[0].ReceivedQuantity)

	product, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, 8.0, product.CurrentStock)

	movements, err := store.ListMovements("p1", 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.MovementReceiveOrder, movements[0].MovementType)
	assert.Equal(t, 6.0, movements[0].Quantity)
	assert.Equal(t, 2.0, movements[0].PreviousStock)
	assert.Equal(t, 8.0, movements[0].NewStock)
	assert.Equal(t, order.ID, movements[0].ReferenceID)

	updated, err = svc.ReceiveItems(order.ID, []ReceiveLine{{ProductID: "p1", Quantity: 4}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFullyReceived, updated.Status)
	assert.Equal(t, 10.0, updated.Items[0].ReceivedQuantity)

	product, err = store.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, 12.0, product.CurrentStock)

	// Fully received is terminal.
	var serr *httperr.InvalidStateError
	_, err = svc.ReceiveItems(order.ID, []ReceiveLine{{ProductID: "p1", Quantity: 1}})
	require.ErrorAs(t, err, &serr)
}

func TestReceiveClampsOverDelivery(t *testing.T) {
	svc, store := newTestService(t)
	order := createDraftOrder(t, svc) // 10 kg ordered

	updated, err := svc.ReceiveItems(order.ID, []ReceiveLine{{ProductID: "p1", Quantity: 15}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFullyReceived, updated.Status)
	assert.Equal(t, 10.0, updated.Items[0].ReceivedQuantity)

	product, err := store.GetProduct("p1")
	require.NoError(t, err)
	assert.Equal(t, 12.0, product.CurrentStock)

	movements, err := store.ListMovements("p1", 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 10.0, movements[0].Quantity)
}

func TestReceiveValidation(t *testing.T) {
	svc, _ := newTestService(t)
	order := createDraftOrder(t, svc)

	var verr *httperr.ValidationError
	_, err := svc.ReceiveItems(order.ID, []ReceiveLine{{ProductID: "p1", Quantity: -2}})
	require.ErrorAs(t, err, &verr)

	var nerr *httperr.NotFoundError
	_, err = svc.ReceiveItems("no-such-order", []ReceiveLine{{ProductID: "p1", Quantity: 1}})
	require.ErrorAs(t, err, &nerr)
}

func TestReceiveIgnoresUnknownLines(t *testing.T) {
	svc, store := newTestService(t)
	order := createDraftOrder(t, svc)

	updated, err := svc.ReceiveItems(order.ID, []ReceiveLine{{ProductID: "p2", Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartiallyReceived, updated.Status)
	assert.Equal(t, 0.0, updated.Items[0].ReceivedQuantity)

	movements, err := store.ListMovements("", 0)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestLedgerChainStaysConsistent(t *testing.T) {
	svc, store := newTestService(t)
	order := createDraftOrder(t, svc)

	_, err := svc.ReceiveItems(order.ID, []ReceiveLine{{ProductID: "p1", Quantity: 3}})
	require.NoError(t, err)
	_, err = svc.ReceiveItems(order.ID, []ReceiveLine{{ProductID: "p1", Quantity: 4}})
	require.NoError(t, err)

	movements, err := store.ListMovements("p1", 0)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, m.NewStock, m.PreviousStock+m.Quantity)
	}
	assert.Equal(t, movements[0].NewStock, movements[1].PreviousStock)
}

func TestDeleteOrder(t *testing.T) {
	svc, _ := newTestService(t)
	order := createDraftOrder(t, svc)

	require.NoError(t, svc.Delete(order.ID))

	var nerr *httperr.NotFoundError
	_, err := svc.Get(order.ID)
	require.ErrorAs(t, err, &nerr)
	require.ErrorAs(t, svc.Delete(order.ID), &nerr)
}

func TestListOrdersByStatus(t *testing.T) {
	svc, _ := newTestService(t)
	first := createDraftOrder(t, svc)
	second := createDraftOrder(t, svc)
	_, err := svc.Send(second.ID)
	require.NoError(t, err)

	drafts, err := svc.List(string(models.StatusDraft))
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, first.ID, drafts[0].ID)

	all, err := svc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMonthlySpendingExcludesCancelled(t *testing.T) {
	svc, _ := newTestService(t)
	kept := createDraftOrder(t, svc)    // 250
	dropped := createDraftOrder(t, svc) // 250, then cancelled
	_, err := svc.Cancel(dropped.ID)
	require.NoError(t, err)

	rows, err := svc.MonthlySpending()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, kept.Date.Format("2006-01"), rows[0].Month)
	assert.Equal(t, 1, rows[0].OrderCount)
	assert.Equal(t, 250.0, rows[0].TotalSpent)
}
