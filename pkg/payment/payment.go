package payment

import "context"

// Checkout is a hosted-checkout handle returned by the gateway. The kiosk
// opens RedirectURL (or embeds Token in the Snap widget).
type Checkout struct {
	Token       string
	RedirectURL string
}

// Status is the gateway's server-side view of an order, the authoritative
// source when reconciling a webhook notification.
type Status struct {
	OrderID           string
	TransactionStatus string
	PaymentType       string
	StatusCode        string
	GrossAmount       string // decimal string as delivered, e.g. "50000.00"
	FraudStatus       string
}

type Customer struct {
	Name  string
	Email string
}

// Gateway abstracts the payment provider so the reconciler and checkout flow
// can be exercised with a stub in tests.
type Gateway interface {
	CreateTransaction(ctx context.Context, orderID string, grossAmount int64, customer Customer) (*Checkout, error)
	CheckStatus(ctx context.Context, orderID string) (*Status, error)
}
