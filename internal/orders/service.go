package orders

import (
	"errors"
	"fmt"
	"time"

	"econome-backend/internal/httperr"
	"econome-backend/internal/models"
	"econome-backend/internal/storage"
	"econome-backend/pkg/logger"

	"github.com/google/uuid"
)

// CartItem: one proposed purchase line, held only until orders are placed.
type CartItem struct {
	ProductID  string  `json:"productId"`
	SupplierID string  `json:"supplierId"`
	Quantity   float64 `json:"quantity"`
}

// ReceiveLine: one delivered line of a receipt.
type ReceiveLine struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}

// Service owns the order lifecycle: creation from a cart, status
// transitions and transactional receipt application.
type Service struct {
	store storage.Store
	log   *logger.Logger
}

func NewService(store storage.Store, log *logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log.WithComponent("order_service"),
	}
}

// CreateFromCart groups cart items by supplier and persists one draft order
// per supplier represented in the cart. Item prices are resolved from the
// supplier's catalog mapping; lines that cannot be resolved (unknown product,
// unknown supplier, no mapping) are skipped with a warning rather than
// failing the whole cart.
func (s *Service) CreateFromCart(items []CartItem) ([]models.Order, error) {
	if len(items) == 0 {
		return nil, httperr.Validation("cart is empty")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, httperr.Validation("quantity must be positive for product %s", item.ProductID)
		}
	}

	// Group by supplier, preserving cart order.
	groups := make(map[string][]CartItem)
	var supplierIDs []string
	for _, item := range items {
		if _, ok := groups[item.SupplierID]; !ok {
			supplierIDs = append(supplierIDs, item.SupplierID)
		}
		groups[item.SupplierID] = append(groups[item.SupplierID], item)
	}

	var created []models.Order
	for _, supplierID := range supplierIDs {
		supplier, err := s.store.GetSupplier(supplierID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.log.Warn("Skipping cart lines: unknown supplier", "supplier_id", supplierID)
				continue
			}
			return nil, err
		}

		var orderItems []models.OrderItem
		var total float64
		for _, item := range groups[supplierID] {
			product, err := s.store.GetProduct(item.ProductID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					s.log.Warn("Skipping cart line: unknown product", "product_id", item.ProductID, "supplier_id", supplierID)
					continue
				}
				return nil, err
			}
			mapping := findMapping(supplier, item.ProductID)
			if mapping == nil {
				s.log.Warn("Skipping cart line: supplier has no mapping for product",
					"product_id", item.ProductID, "supplier_id", supplierID)
				continue
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID:        product.ID,
				ProductName:      product.Name,
				Quantity:         item.Quantity,
				ReceivedQuantity: 0,
				Unit:             product.Unit,
				PricePerUnit:     mapping.Price,
			})
			total += item.Quantity * mapping.Price
		}
		if len(orderItems) == 0 {
			continue
		}

		created = append(created, models.Order{
			ID:           uuid.NewString(),
			SupplierID:   supplier.ID,
			SupplierName: supplier.Name,
			Date:         time.Now(),
			Status:       models.StatusDraft,
			Total:        total,
			Items:        orderItems,
		})
	}

	if len(created) > 0 {
		err := s.store.Transact(func(tx storage.Store) error {
			for i := range created {
				if err := tx.CreateOrder(&created[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("Orders created from cart", "cart_lines", len(items), "orders", len(created))
	return created, nil
}

func findMapping(supplier *models.Supplier, productID string) *models.SupplierProduct {
	for i := range supplier.Products {
		if supplier.Products[i].InternalProductID == productID {
			return &supplier.Products[i]
		}
	}
	return nil
}

// Send transitions a draft order to Envoyée.
func (s *Service) Send(orderID string) (*models.Order, error) {
	return s.transition(orderID, models.StatusSent, models.StatusDraft)
}

// Confirm transitions a sent order to Confirmée.
func (s *Service) Confirm(orderID string) (*models.Order, error) {
	return s.transition(orderID, models.StatusConfirmed, models.StatusSent)
}

// Cancel voids an order that has not been received yet. No stock or ledger
// effect: nothing was delivered.
func (s *Service) Cancel(orderID string) (*models.Order, error) {
	return s.transition(orderID, models.StatusCancelled, models.StatusDraft, models.StatusSent)
}

func (s *Service) transition(orderID string, to models.OrderStatus, from ...models.OrderStatus) (*models.Order, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, status := range from {
		if order.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, httperr.InvalidState("order %s cannot go from %q to %q", orderID, order.Status, to)
	}
	order.Status = to
	if err := s.store.SaveOrder(order); err != nil {
		return nil, err
	}
	s.log.Info("Order status changed", "order_id", orderID, "status", to)
	return order, nil
}

// ReceiveItems applies a delivery against an order. Per delivered line the
// matching item's receivedQuantity is incremented (clamped so it never
// exceeds the quantity ordered), the product's stock is incremented by the
// effective quantity and a RECEIVE_ORDER ledger entry is written. The order
// status is then recomputed. Everything commits atomically; the order row is
// locked for the duration so concurrent receipts cannot double-count.
func (s *Service) ReceiveItems(orderID string, lines []ReceiveLine) (*models.Order, error) {
	for _, line := range lines {
		if line.Quantity < 0 {
			return nil, httperr.Validation("received quantity must not be negative for product %s", line.ProductID)
		}
	}

	var updated *models.Order
	err := s.store.Transact(func(tx storage.Store) error {
		order, err := tx.GetOrderForUpdate(orderID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return httperr.NotFound("order", orderID)
			}
			return err
		}
		if order.Status.Terminal() {
			return httperr.InvalidState("order %s is %q and cannot receive items", orderID, order.Status)
		}

		for _, line := range lines {
			item := findItem(order, line.ProductID)
			if item == nil {
				s.log.Warn("Received line does not match any order item", "order_id", orderID, "product_id", line.ProductID)
				continue
			}
			// Clamp to what is still outstanding on this item.
			effective := line.Quantity
			if remaining := item.Quantity - item.ReceivedQuantity; effective > remaining {
				s.log.Warn("Received quantity exceeds outstanding quantity, clamping",
					"order_id", orderID, "product_id", line.ProductID,
					"received", line.Quantity, "outstanding", remaining)
				effective = remaining
			}
			if effective <= 0 {
				continue
			}
			item.ReceivedQuantity += effective

			product, err := tx.GetProduct(line.ProductID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					s.log.Warn("Received product no longer in catalog, stock not updated",
						"order_id", orderID, "product_id", line.ProductID)
					continue
				}
				return err
			}
			previous := product.CurrentStock
			product.CurrentStock += effective
			if err := tx.SaveProduct(product); err != nil {
				return err
			}
			if err := tx.RecordMovement(&models.StockMovement{
				ProductID:     product.ID,
				MovementType:  models.MovementReceiveOrder,
				Quantity:      effective,
				PreviousStock: previous,
				NewStock:      product.CurrentStock,
				ReferenceID:   order.ID,
				Notes:         fmt.Sprintf("Received from order %s", order.ID),
			}); err != nil {
				return err
			}
		}

		order.Status = receiptStatus(order)
		if err := tx.SaveOrder(order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Receipt applied", "order_id", orderID, "status", updated.Status)
	return updated, nil
}

func findItem(order *models.Order, productID string) *models.OrderItem {
	for i := range order.Items {
		if order.Items[i].ProductID == productID {
			return &order.Items[i]
		}
	}
	return nil
}

func receiptStatus(order *models.Order) models.OrderStatus {
	for _, item := range order.Items {
		if item.ReceivedQuantity < item.Quantity {
			return models.StatusPartiallyReceived
		}
	}
	return models.StatusFullyReceived
}

// Delete removes an order unconditionally, whatever its status. This is the
// administrative escape hatch, not part of the normal lifecycle.
func (s *Service) Delete(orderID string) error {
	if err := s.store.DeleteOrder(orderID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return httperr.NotFound("order", orderID)
		}
		return err
	}
	s.log.Info("Order deleted", "order_id", orderID)
	return nil
}

// Get returns one order with its items.
func (s *Service) Get(orderID string) (*models.Order, error) {
	return s.getOrder(orderID)
}

// List returns all orders, optionally filtered by exact status.
func (s *Service) List(status string) ([]models.Order, error) {
	return s.store.ListOrders(status)
}

// MonthlySpending aggregates non-cancelled orders per month.
func (s *Service) MonthlySpending() ([]storage.MonthlySpending, error) {
	return s.store.MonthlySpending()
}

func (s *Service) getOrder(orderID string) (*models.Order, error) {
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, httperr.NotFound("order", orderID)
		}
		return nil, err
	}
	return order, nil
}
