package checkout

import (
	"fmt"

	"github.com/commercekit/storefront/services/cart"
	"github.com/commercekit/storefront/services/checkoutapi"
)

// OrderTotals is a pure derivation of the cart and the fulfillment fee. It is
// recomputed on every page render and again at pay time, never cached.
type OrderTotals struct {
	Currency              string
	SubtotalInCents       int64
	PlatformFeeInCents    int64
	FulfillmentFeeInCents int64
	TotalInCents          int64
}

// platformFeePercent is charged on top of the item subtotal, independent of
// whatever the gateway charges the merchant.
const platformFeePercent = 3

func calculateTotals(crt cart.Cart, fulfillmentFeeInCents int64) OrderTotals {
	subtotal := crt.SubtotalInCents()
	platformFee := platformFeeInCents(subtotal)

	return OrderTotals{
		Currency:              crt.Currency,
		SubtotalInCents:       subtotal,
		PlatformFeeInCents:    platformFee,
		FulfillmentFeeInCents: fulfillmentFeeInCents,
		TotalInCents:          subtotal + platformFee + fulfillmentFeeInCents,
	}
}

// platformFeeInCents rounds half-up on the minor unit. Existing invoices were
// produced with this exact rounding, so it must not change.
func platformFeeInCents(subtotalInCents int64) int64 {
	return (subtotalInCents*platformFeePercent + 50) / 100
}

func (t OrderTotals) SubtotalInCurrency() string {
	return amountInCurrency(t.Currency, t.SubtotalInCents)
}

func (t OrderTotals) PlatformFeeInCurrency() string {
	return amountInCurrency(t.Currency, t.PlatformFeeInCents)
}

func (t OrderTotals) FulfillmentFeeInCurrency() string {
	return amountInCurrency(t.Currency, t.FulfillmentFeeInCents)
}

func (t OrderTotals) TotalInCurrency() string {
	return amountInCurrency(t.Currency, t.TotalInCents)
}

func amountInCurrency(currency string, amountInCents int64) string {
	return fmt.Sprintf("%s %.2f", currency, float64(amountInCents)/100.0)
}

// paymentItemsFromCart maps every cart line, in insertion order, to the shape
// the payment collaborators expect. No filtering, prices passed through as-is.
func paymentItemsFromCart(crt cart.Cart) []checkoutapi.PaymentItem {
	items := make([]checkoutapi.PaymentItem, 0, len(crt.Items))
	for _, line := range crt.Items {
		items = append(items, checkoutapi.PaymentItem{
			InventoryItemID:  line.ProductUID,
			Name:             line.Name,
			SKU:              line.SKU,
			Quantity:         line.Quantity,
			UnitPriceInCents: line.UnitPriceInCents,
			ListPriceInCents: line.ListPriceInCents,
		})
	}
	return items
}
