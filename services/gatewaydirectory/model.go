package gatewaydirectory

import (
	"fmt"
	"time"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/services/checkoutapi"
)

// TenantGatewayConfig describes which payment gateways a tenant has enabled.
type TenantGatewayConfig struct {
	TenantUID    string
	Gateways     []GatewayStatus
	LastModified *time.Time
}

type GatewayStatus struct {
	Gateway   checkoutapi.GatewayType
	IsActive  bool
	IsDefault bool
}

func (c TenantGatewayConfig) Validate() error {
	if c.TenantUID == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("missing tenantUID"))
	}
	seen := map[checkoutapi.GatewayType]bool{}
	defaultCount := 0
	for _, g := range c.Gateways {
		if _, ok := checkoutapi.ParseGatewayType(string(g.Gateway)); !ok {
			return myerrors.NewInvalidInputError(fmt.Errorf("unknown gateway %s", g.Gateway))
		}
		if seen[g.Gateway] {
			return myerrors.NewInvalidInputError(fmt.Errorf("duplicate gateway %s", g.Gateway))
		}
		seen[g.Gateway] = true
		if g.IsDefault {
			defaultCount++
		}
	}
	if defaultCount > 1 {
		return myerrors.NewInvalidInputError(fmt.Errorf("at most one gateway can be default"))
	}
	return nil
}

// ActiveGateways returns the enabled gateways with the default gateway first.
func (c TenantGatewayConfig) ActiveGateways() []checkoutapi.GatewayType {
	active := []checkoutapi.GatewayType{}
	for _, g := range c.Gateways {
		if !g.IsActive {
			continue
		}
		if g.IsDefault {
			active = append([]checkoutapi.GatewayType{g.Gateway}, active...)
		} else {
			active = append(active, g.Gateway)
		}
	}
	return active
}
