package cart

import (
	"context"

	"github.com/commercekit/storefront/services/checkoutapi"
)

// CartStore is the narrow capability the checkout depends on: read a cart,
// clear it once after payment, and learn when the backing store has hydrated.
//
//go:generate mockgen -source=api.go -package cart -destination store_mock.go CartStore
type CartStore interface {
	GetCart(c context.Context, tenantUID string, gateway checkoutapi.GatewayType) (Cart, bool, error)
	ClearCart(c context.Context, tenantUID string, gateway checkoutapi.GatewayType) error
	Ready() <-chan struct{}
}
