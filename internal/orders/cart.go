package orders

import (
	"errors"

	"econome-backend/internal/storage"
)

// Cart: transient staging area of desired purchases. It is never persisted;
// the client holds it and submits its lines when placing orders.
type Cart struct {
	Items []CartItem `json:"items"`
}

// AddItem merges into an existing line with the same product+supplier pair by
// summing quantities, or appends a new line.
func (c *Cart) AddItem(productID, supplierID string, quantity float64) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].SupplierID == supplierID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, SupplierID: supplierID, Quantity: quantity})
}

// UpdateQuantity overwrites a line's quantity; a quantity of zero or less
// removes the line.
func (c *Cart) UpdateQuantity(productID, supplierID string, quantity float64) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].SupplierID == supplierID {
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			return
		}
	}
}

// GroupLine: one resolved cart line inside a supplier group.
type GroupLine struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	SupplierSku  string  `json:"supplierSku"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Total        float64 `json:"total"`
}

// SupplierGroup: the per-supplier view of a cart, as it would become an order.
type SupplierGroup struct {
	SupplierID    string      `json:"supplierId"`
	SupplierName  string      `json:"supplierName"`
	MinOrder      float64     `json:"minOrder"`
	Lines         []GroupLine `json:"lines"`
	Total         float64     `json:"total"`
	BelowMinOrder bool        `json:"belowMinOrder"`
}

// GroupBySupplier resolves the cart against the product and supplier
// catalogs: one group per supplier with product names, the supplier's unit
// price, line totals and a minimum-order shortfall flag. Lines that cannot
// be resolved are skipped with a warning, mirroring CreateFromCart.
func (s *Service) GroupBySupplier(items []CartItem) ([]SupplierGroup, error) {
	groupIndex := make(map[string]int)
	var groups []SupplierGroup

	for _, item := range items {
		idx, ok := groupIndex[item.SupplierID]
		if !ok {
			supplier, err := s.store.GetSupplier(item.SupplierID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					s.log.Warn("Skipping cart line: unknown supplier", "supplier_id", item.SupplierID)
					continue
				}
				return nil, err
			}
			groups = append(groups, SupplierGroup{
				SupplierID:   supplier.ID,
				SupplierName: supplier.Name,
				MinOrder:     supplier.MinOrder,
			})
			idx = len(groups) - 1
			groupIndex[item.SupplierID] = idx
		}

		product, err := s.store.GetProduct(item.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				s.log.Warn("Skipping cart line: unknown product", "product_id", item.ProductID)
				continue
			}
			return nil, err
		}
		supplier, err := s.store.GetSupplier(item.SupplierID)
		if err != nil {
			return nil, err
		}
		mapping := findMapping(supplier, item.ProductID)
		if mapping == nil {
			s.log.Warn("Skipping cart line: supplier has no mapping for product",
				"product_id", item.ProductID, "supplier_id", item.SupplierID)
			continue
		}

		line := GroupLine{
			ProductID:    product.ID,
			ProductName:  product.Name,
			SupplierSku:  mapping.SupplierSku,
			Unit:         product.Unit,
			Quantity:     item.Quantity,
			PricePerUnit: mapping.Price,
			Total:        item.Quantity * mapping.Price,
		}
		groups[idx].Lines = append(groups[idx].Lines, line)
		groups[idx].Total += line.Total
	}

	for i := range groups {
		groups[i].BelowMinOrder = groups[i].Total < groups[i].MinOrder
	}
	return groups, nil
}
