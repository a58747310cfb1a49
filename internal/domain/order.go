package domain

import "time"

// LineItem is a (product, quantity) pairing attached to an order. Name and
// Price mirror the catalog row at the time the item was resolved; entries
// cached straight from a creation request may carry only ProductID and
// Quantity until they are normalized.
type LineItem struct {
	ProductID int64   `json:"producto_id"`
	Name      string  `json:"nombre"`
	Price     float64 `json:"precio"`
	Quantity  int     `json:"cantidad"`
}

// Order is a ledger entry. Date is ISO-8601 text; it is parsed to a
// time.Time only at the policy boundary.
type Order struct {
	ID     int64      `json:"pedido_id"`
	Client string     `json:"cliente"`
	Date   string     `json:"fecha"`
	Items  []LineItem `json:"productos"`
}

// OrderRow is the shape an order has at the store boundary, where dates
// are structured instants rather than ISO-8601 text.
type OrderRow struct {
	ID     int64
	Client string
	Date   time.Time
	Items  []LineItem
}

// OrderView is an Order plus its derived total, the shape returned to
// callers of the order lookup and listing operations.
type OrderView struct {
	Order
	Total float64 `json:"total"`
}

// Total sums price times quantity over the line items. A missing quantity
// counts as a single unit.
func (o *Order) Total() float64 {
	var t float64
	for _, it := range o.Items {
		q := it.Quantity
		if q == 0 {
			q = 1
		}
		t += it.Price * float64(q)
	}
	return t
}

// Normalize fills in the quantity sentinel on every line item.
func (o *Order) Normalize() {
	for i := range o.Items {
		if o.Items[i].Quantity == 0 {
			o.Items[i].Quantity = 1
		}
	}
}

// View returns the order together with its computed total.
func (o *Order) View() OrderView {
	return OrderView{Order: *o, Total: o.Total()}
}
