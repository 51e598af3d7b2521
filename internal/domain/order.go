package domain

import "time"

// PaymentResult is the provider-reported outcome recorded when an order is
// paid. It is populated exactly once, by the transition to the paid state.
type PaymentResult struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	PayerEmail    string `json:"payer_email"`
}

// Order represents a customer order. An order is created unpaid and
// transitions to paid exactly once; paid is terminal.
type Order struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Items         []OrderItem    `json:"items"`
	TotalAmount   int64          `json:"total_amount"`
	Currency      string         `json:"currency"`
	IsPaid        bool           `json:"is_paid"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	PaymentResult *PaymentResult `json:"payment_result,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// OrderItem is a line item in an order. Name and price are snapshots taken
// at order-creation time; later product edits do not affect them.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns the total price for this line item.
func (i *OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// MarkPaid performs the single guarded Created→Paid transition. It returns
// false without mutating anything when the order is already paid, which is
// what makes duplicate webhook deliveries and the webhook/manual race safe.
// The repository mirrors this guard at the store level
// (UPDATE ... WHERE is_paid = FALSE).
func (o *Order) MarkPaid(result PaymentResult, at time.Time) bool {
	if o.IsPaid {
		return false
	}

	o.IsPaid = true
	o.PaidAt = &at
	o.PaymentResult = &result
	return true
}
