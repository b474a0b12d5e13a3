package gatewaydirectory

import (
	"context"
	"fmt"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/services/checkoutapi"
)

type service struct {
	store  mystore.Store[TenantGatewayConfig]
	nower  mytime.Nower
	logger mylog.Logger
}

func newService(store mystore.Store[TenantGatewayConfig], nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		store:  store,
		nower:  nower,
		logger: logger,
	}
}

func (s *service) ActiveGateways(c context.Context, tenantUID string) ([]checkoutapi.GatewayType, error) {
	config, exists, err := s.store.Get(c, tenantUID)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching gateway config for tenant %s: %s", tenantUID, err))
	}
	if !exists {
		// A tenant without explicit config gets every supported gateway.
		return []checkoutapi.GatewayType{checkoutapi.GatewaySquare, checkoutapi.GatewayPayPal}, nil
	}
	return config.ActiveGateways(), nil
}

func (s *service) getConfig(c context.Context, tenantUID string) (TenantGatewayConfig, error) {
	config, exists, err := s.store.Get(c, tenantUID)
	if err != nil {
		return TenantGatewayConfig{}, myerrors.NewInternalError(fmt.Errorf("error fetching gateway config for tenant %s: %s", tenantUID, err))
	}
	if !exists {
		return TenantGatewayConfig{}, myerrors.NewNotFoundError(fmt.Errorf("gateway config for tenant %s not found", tenantUID))
	}
	return config, nil
}

func (s *service) upsertConfig(c context.Context, config TenantGatewayConfig) (TenantGatewayConfig, error) {
	err := config.Validate()
	if err != nil {
		return TenantGatewayConfig{}, err
	}

	now := s.nower.Now()
	config.LastModified = &now
	err = s.store.Put(c, config.TenantUID, config)
	if err != nil {
		return TenantGatewayConfig{}, myerrors.NewInternalError(fmt.Errorf("error storing gateway config for tenant %s: %s", config.TenantUID, err))
	}

	s.logger.Log(c, config.TenantUID, mylog.SeverityInfo, "Stored gateway config for tenant %s with %d gateways", config.TenantUID, len(config.Gateways))

	return config, nil
}
