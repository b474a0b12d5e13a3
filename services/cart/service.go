package cart

import (
	"context"
	"fmt"
	"sort"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/mypublisher"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/services/cart/cartevents"
	"github.com/commercekit/storefront/services/checkoutapi"
)

type service struct {
	cartStore mystore.Store[Cart]
	publisher mypublisher.Publisher
	nower     mytime.Nower
	logger    mylog.Logger
	ready     chan struct{}
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(store mystore.Store[Cart], nower mytime.Nower, logger mylog.Logger, pub mypublisher.Publisher) *service {
	s := &service{
		cartStore: store,
		publisher: pub,
		nower:     nower,
		logger:    logger,
		ready:     make(chan struct{}),
	}
	// The backing store is hydrated as soon as it has been constructed.
	close(s.ready)

	return s
}

// Ready signals that carts can be read. Callers that race a page load against
// storage hydration wait on this instead of polling.
func (s *service) Ready() <-chan struct{} {
	return s.ready
}

func (s *service) GetCart(c context.Context, tenantUID string, gateway checkoutapi.GatewayType) (Cart, bool, error) {
	crt, found, err := s.cartStore.Get(c, Key(tenantUID, gateway))
	if err != nil {
		return Cart{}, false, myerrors.NewInternalError(err)
	}

	return crt, found, nil
}

// ClearCart removes the cart and broadcasts the change so that observing UI
// (header badges and the like) can refresh.
func (s *service) ClearCart(c context.Context, tenantUID string, gateway checkoutapi.GatewayType) error {
	s.logger.Log(c, Key(tenantUID, gateway), mylog.SeverityInfo, "Clearing cart of tenant %s (%s)", tenantUID, gateway)

	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		err := s.cartStore.Delete(c, Key(tenantUID, gateway))
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartChanged{
			TenantUID: tenantUID,
			Gateway:   string(gateway),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *service) listCarts(c context.Context) ([]Cart, error) {
	s.logger.Log(c, "", mylog.SeverityInfo, "Fetch all carts")

	carts, err := s.cartStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	sort.Slice(carts, func(i, j int) bool {
		return carts[i].CreatedAt.After(carts[j].CreatedAt)
	})
	return carts, nil
}

func (s *service) getCart(c context.Context, tenantUID string, gateway checkoutapi.GatewayType) (Cart, error) {
	crt, found, err := s.GetCart(c, tenantUID, gateway)
	if err != nil {
		return Cart{}, err
	}
	if !found {
		return Cart{}, myerrors.NewNotFoundError(fmt.Errorf("cart of tenant %s (%s) not found", tenantUID, gateway))
	}

	return crt, nil
}

// upsertCart is the external mutation path: storefront pages maintain the cart
// contents up to the moment checkout starts.
func (s *service) upsertCart(c context.Context, crt Cart) (Cart, error) {
	err := crt.Validate()
	if err != nil {
		return Cart{}, err
	}

	now := s.nower.Now()

	s.logger.Log(c, Key(crt.TenantUID, crt.Gateway), mylog.SeverityInfo, "Storing cart of tenant %s (%s) with %d items", crt.TenantUID, crt.Gateway, len(crt.Items))

	err = s.cartStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		existing, found, err := s.cartStore.Get(c, Key(crt.TenantUID, crt.Gateway))
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			crt.CreatedAt = existing.CreatedAt
			crt.LastModified = &now
		} else {
			crt.CreatedAt = now
		}

		err = s.cartStore.Put(c, Key(crt.TenantUID, crt.Gateway), crt)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartChanged{
			TenantUID: crt.TenantUID,
			Gateway:   string(crt.Gateway),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return Cart{}, err
	}

	return crt, nil
}
