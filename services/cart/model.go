package cart

import (
	"fmt"
	"time"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/services/checkoutapi"
)

// Cart holds the selected products of one shopper, scoped to a tenant and the
// payment gateway the cart was started for.
type Cart struct {
	TenantUID    string
	Gateway      checkoutapi.GatewayType
	Currency     string
	Items        []LineItem
	CreatedAt    time.Time
	LastModified *time.Time
}

// LineItem order within Cart.Items is the order in which lines are rendered
// and submitted for payment.
type LineItem struct {
	ProductUID       string
	Name             string
	SKU              string
	Quantity         int
	UnitPriceInCents int64
	ListPriceInCents *int64
	ImageURL         string
	VariantUID       string
}

func Key(tenantUID string, gateway checkoutapi.GatewayType) string {
	return tenantUID + "/" + string(gateway)
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) SubtotalInCents() int64 {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.UnitPriceInCents * int64(item.Quantity)
	}
	return subtotal
}

func (c Cart) Timestamp() string {
	return c.CreatedAt.Format("2006-01-02 15:04:05")
}

func (c Cart) SubtotalInCurrency() string {
	return fmt.Sprintf("%s %.2f", c.Currency, float64(c.SubtotalInCents())/100.0)
}

func (c Cart) Validate() error {
	if c.TenantUID == "" {
		return myerrors.NewInvalidInputErrorf("missing tenantUID")
	}
	if _, ok := checkoutapi.ParseGatewayType(string(c.Gateway)); !ok {
		return myerrors.NewInvalidInputErrorf("unknown gateway %s", c.Gateway)
	}
	for i, item := range c.Items {
		if item.ProductUID == "" {
			return myerrors.NewInvalidInputErrorf("item %d: missing productUID", i)
		}
		if item.Quantity < 1 {
			return myerrors.NewInvalidInputErrorf("item %d: quantity must be at least 1", i)
		}
		if item.UnitPriceInCents < 0 {
			return myerrors.NewInvalidInputErrorf("item %d: negative unit price", i)
		}
		if item.ListPriceInCents != nil && *item.ListPriceInCents < item.UnitPriceInCents {
			return myerrors.NewInvalidInputErrorf("item %d: list price below unit price", i)
		}
	}
	return nil
}
