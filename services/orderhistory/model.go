package orderhistory

import (
	"fmt"
	"time"
)

// Order is the durable record of a completed checkout, keyed by order number
// so that a redelivered event cannot create a duplicate.
type Order struct {
	OrderNumber           string
	CheckoutUID           string
	TenantUID             string
	ProviderName          string
	GatewayTransactionUID string
	AmountInCents         int64
	Currency              string
	ShopperEmail          string
	ShopperPhone          string
	CreatedAt             time.Time
}

func (o Order) AmountInCurrency() string {
	return fmt.Sprintf("%s %.2f", o.Currency, float64(o.AmountInCents)/100.0)
}

func (o Order) Timestamp() string {
	return o.CreatedAt.Format(time.RFC3339)
}
