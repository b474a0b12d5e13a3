package orderhistory

import (
	"context"
	"fmt"
	"sort"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/myhttp"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/mypubsub"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/services/checkout/checkoutevents"
)

type service struct {
	orderStore mystore.Store[Order]
	pubsub     mypubsub.PubSub
	nower      mytime.Nower
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(orderStore mystore.Store[Order], pubsub mypubsub.PubSub, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		orderStore: orderStore,
		pubsub:     pubsub,
		nower:      nower,
		logger:     logger,
	}
}

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.Subscribe(c, checkoutevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/orders/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	return nil
}

// OnCheckoutFinalized persists the order. The event may be delivered more
// than once, so an existing order wins over the incoming one.
func (s *service) OnCheckoutFinalized(c context.Context, topic string, event checkoutevents.CheckoutFinalized) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityInfo, "Webhook: checkout %s finalized as order %s", event.CheckoutUID, event.OrderNumber)

	return s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		_, exists, err := s.orderStore.Get(c, event.OrderNumber)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if exists {
			return nil
		}

		return s.orderStore.Put(c, event.OrderNumber, Order{
			OrderNumber:           event.OrderNumber,
			CheckoutUID:           event.CheckoutUID,
			TenantUID:             event.TenantUID,
			ProviderName:          event.ProviderName,
			GatewayTransactionUID: event.GatewayTransactionUID,
			AmountInCents:         event.AmountInCents,
			Currency:              event.Currency,
			ShopperEmail:          event.ShopperEmail,
			ShopperPhone:          event.ShopperPhone,
			CreatedAt:             s.nower.Now(),
		})
	})
}

// listOrders returns orders newest first, optionally narrowed to one shopper.
func (s *service) listOrders(c context.Context, email string) ([]Order, error) {
	var orders []Order
	var err error

	if email != "" {
		orders, err = s.orderStore.Query(c, []mystore.Filter{
			{Field: "ShopperEmail", Compare: "=", Value: email},
		}, "CreatedAt")
	} else {
		orders, err = s.orderStore.List(c)
	}
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	if email != "" {
		// the in-memory store does not apply filters
		kept := make([]Order, 0, len(orders))
		for _, o := range orders {
			if o.ShopperEmail == email {
				kept = append(kept, o)
			}
		}
		orders = kept
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
