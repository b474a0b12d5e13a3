package gatewaydirectory

import (
	"context"

	"github.com/commercekit/storefront/services/checkoutapi"
)

//go:generate mockgen -source=api.go -package gatewaydirectory -destination directory_mock.go Directory

// Directory tells the checkout which payment gateways a tenant can use.
type Directory interface {
	// ActiveGateways returns the enabled gateways, default gateway first.
	// An empty slice means the tenant cannot accept payments at all.
	ActiveGateways(c context.Context, tenantUID string) ([]checkoutapi.GatewayType, error)
}
