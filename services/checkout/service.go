package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/mypublisher"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/lib/myuuid"
	"github.com/commercekit/storefront/services/cart"
	"github.com/commercekit/storefront/services/checkout/checkoutevents"
	"github.com/commercekit/storefront/services/checkoutapi"
	"github.com/commercekit/storefront/services/gatewaydirectory"
)

// bootstrapGraceInterval is how long a freshly started checkout waits for the
// cart store to hydrate before concluding the cart does not exist.
const bootstrapGraceInterval = 300 * time.Millisecond

var (
	errMissingIdentity = fmt.Errorf("missing tenant identity")
	errCartNotFound    = fmt.Errorf("cart not found")
)

type service struct {
	sessionStore  mystore.Store[CheckoutSession]
	cartStore     cart.CartStore
	directory     gatewaydirectory.Directory
	collaborators map[checkoutapi.GatewayType]checkoutapi.PaymentCollaborator
	publisher     mypublisher.Publisher
	nower         mytime.Nower
	uuider        myuuid.UUIDer
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(sessionStore mystore.Store[CheckoutSession], cartStore cart.CartStore,
	directory gatewaydirectory.Directory,
	collaborators map[checkoutapi.GatewayType]checkoutapi.PaymentCollaborator,
	publisher mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer,
	logger mylog.Logger) *service {
	return &service{
		sessionStore:  sessionStore,
		cartStore:     cartStore,
		directory:     directory,
		collaborators: collaborators,
		publisher:     publisher,
		nower:         nower,
		uuider:        uuider,
		logger:        logger,
	}
}

// startCheckout bootstraps a new session for the cart identified by the page
// parameters. This is the only place the redirect-on-missing-cart check runs:
// once a session exists it is marked initialized and the check never repeats.
func (s *service) startCheckout(c context.Context, tenantUID string, gatewayParam string) (CheckoutSession, error) {
	if tenantUID == "" {
		return CheckoutSession{}, errMissingIdentity
	}

	gateway, ok := checkoutapi.ParseGatewayType(gatewayParam)
	if !ok {
		gateway = checkoutapi.GatewaySquare
	}

	crt, err := s.locateCart(c, tenantUID, gateway)
	if err != nil {
		return CheckoutSession{}, err
	}

	activeGateways := s.fetchActiveGateways(c, tenantUID)

	session := CheckoutSession{
		UID:            s.uuider.Create(),
		TenantUID:      tenantUID,
		Gateway:        gateway,
		Step:           StepReview,
		PaymentMethod:  resolvePaymentMethod(gateway, activeGateways),
		ActiveGateways: activeGateways,
		Initialized:    true,
		CreatedAt:      s.nower.Now(),
	}

	totals := calculateTotals(crt, 0)

	s.logger.Log(c, session.UID, mylog.SeverityInfo, "Starting checkout %s for tenant %s (%s) with %d items",
		session.UID, tenantUID, gateway, len(crt.Items))

	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		err := s.sessionStore.Put(c, session.UID, session)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			CheckoutUID:   session.UID,
			TenantUID:     tenantUID,
			ProviderName:  string(session.PaymentMethod),
			AmountInCents: totals.TotalInCents,
			Currency:      crt.Currency,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	return session, nil
}

// locateCart looks the cart up once and, when it is not there yet, waits a
// single grace interval for the store's ready signal before one retry. There
// is no further polling: a cart still missing after that means redirect.
func (s *service) locateCart(c context.Context, tenantUID string, gateway checkoutapi.GatewayType) (cart.Cart, error) {
	crt, found, err := s.cartStore.GetCart(c, tenantUID, gateway)
	if err != nil {
		return cart.Cart{}, err
	}
	if !found {
		timer := time.NewTimer(bootstrapGraceInterval)
		select {
		case <-s.cartStore.Ready():
			timer.Stop()
		case <-timer.C:
		case <-c.Done():
			timer.Stop()
			return cart.Cart{}, myerrors.NewInternalError(c.Err())
		}

		crt, found, err = s.cartStore.GetCart(c, tenantUID, gateway)
		if err != nil {
			return cart.Cart{}, err
		}
	}
	if !found || crt.IsEmpty() {
		return cart.Cart{}, errCartNotFound
	}

	return crt, nil
}

// fetchActiveGateways treats a directory failure as "no gateways": the payment
// step then shows its blocking message instead of a retry.
func (s *service) fetchActiveGateways(c context.Context, tenantUID string) []checkoutapi.GatewayType {
	gateways, err := s.directory.ActiveGateways(c, tenantUID)
	if err != nil {
		s.logger.Log(c, tenantUID, mylog.SeverityWarn, "Error fetching gateways of tenant %s: %s", tenantUID, err)
		return []checkoutapi.GatewayType{}
	}
	return gateways
}

// resolvePaymentMethod falls back to the first active gateway when the seeded
// one is not enabled for this tenant.
func resolvePaymentMethod(seeded checkoutapi.GatewayType, active []checkoutapi.GatewayType) checkoutapi.GatewayType {
	for _, g := range active {
		if g == seeded {
			return seeded
		}
	}
	if len(active) > 0 {
		return active[0]
	}
	return seeded
}

func (s *service) getSession(c context.Context, checkoutUID string) (CheckoutSession, error) {
	session, exists, err := s.sessionStore.Get(c, checkoutUID)
	if err != nil {
		return CheckoutSession{}, myerrors.NewInternalError(err)
	}
	if !exists {
		return CheckoutSession{}, myerrors.NewNotFoundError(fmt.Errorf("checkout %s not found", checkoutUID))
	}
	return session, nil
}

func (s *service) submitCustomer(c context.Context, checkoutUID string, customer checkoutapi.CustomerInfo) (CheckoutSession, error) {
	if !customer.IsComplete() {
		return CheckoutSession{}, myerrors.NewInvalidInputErrorf("email, first name, last name and phone are all required")
	}

	return s.updateSession(c, checkoutUID, func(session *CheckoutSession) error {
		if session.Step != StepReview {
			return myerrors.NewInvalidInputErrorf("customer info can only be submitted on the review step")
		}
		session.Customer = customer
		session.Step = StepFulfillment
		return nil
	})
}

func (s *service) submitFulfillment(c context.Context, checkoutUID string, methodParam string, feeInCents int64) (CheckoutSession, error) {
	method, ok := checkoutapi.ParseFulfillmentMethod(methodParam)
	if !ok {
		return CheckoutSession{}, myerrors.NewInvalidInputErrorf("unknown fulfillment method %s", methodParam)
	}
	if feeInCents < 0 {
		return CheckoutSession{}, myerrors.NewInvalidInputErrorf("fulfillment fee cannot be negative")
	}

	return s.updateSession(c, checkoutUID, func(session *CheckoutSession) error {
		if session.Step != StepFulfillment {
			return myerrors.NewInvalidInputErrorf("fulfillment can only be submitted on the fulfillment step")
		}
		session.FulfillmentMethod = method
		session.FulfillmentFeeInCents = feeInCents
		if method == checkoutapi.FulfillmentPickup {
			// pickup never carries an address
			session.ShippingAddress = nil
			session.Step = StepPayment
		} else {
			session.Step = StepShipping
		}
		return nil
	})
}

func (s *service) submitShipping(c context.Context, checkoutUID string, address checkoutapi.Address) (CheckoutSession, error) {
	if !address.IsComplete() {
		return CheckoutSession{}, myerrors.NewInvalidInputErrorf("all address fields except line2 are required")
	}

	return s.updateSession(c, checkoutUID, func(session *CheckoutSession) error {
		if session.Step != StepShipping {
			return myerrors.NewInvalidInputErrorf("a shipping address can only be submitted on the shipping step")
		}
		session.ShippingAddress = &address
		session.Step = StepPayment
		return nil
	})
}

// selectPaymentMethod switches the gateway while keeping everything collected
// on the earlier steps.
func (s *service) selectPaymentMethod(c context.Context, checkoutUID string, gatewayParam string) (CheckoutSession, error) {
	gateway, ok := checkoutapi.ParseGatewayType(gatewayParam)
	if !ok {
		return CheckoutSession{}, myerrors.NewInvalidInputErrorf("unknown gateway %s", gatewayParam)
	}

	return s.updateSession(c, checkoutUID, func(session *CheckoutSession) error {
		if session.Step != StepPayment {
			return myerrors.NewInvalidInputErrorf("the gateway can only be switched on the payment step")
		}
		if !session.HasActiveGateway(gateway) {
			return myerrors.NewInvalidInputErrorf("gateway %s is not active for tenant %s", gateway, session.TenantUID)
		}
		session.PaymentMethod = gateway
		return nil
	})
}

// goBack walks one step back. The second return value is false when the
// session is already at review: the shopper then leaves for the cart listing.
func (s *service) goBack(c context.Context, checkoutUID string) (CheckoutSession, bool, error) {
	exited := false
	session, err := s.updateSession(c, checkoutUID, func(session *CheckoutSession) error {
		previous, ok := session.PreviousStep()
		if !ok {
			exited = true
			return nil
		}
		session.Step = previous
		return nil
	})
	if err != nil {
		return CheckoutSession{}, false, err
	}

	return session, !exited, nil
}

// pay submits the composed payment to the collaborator for the selected
// gateway and finalizes on success.
func (s *service) pay(c context.Context, checkoutUID string, paymentToken string) (CheckoutSession, error) {
	session, err := s.getSession(c, checkoutUID)
	if err != nil {
		return CheckoutSession{}, err
	}
	if session.Finalized {
		// a second submission after success changes nothing
		return session, nil
	}
	if session.Step != StepPayment {
		return CheckoutSession{}, myerrors.NewInvalidInputErrorf("checkout %s is not on the payment step", checkoutUID)
	}
	if len(session.ActiveGateways) == 0 {
		return CheckoutSession{}, myerrors.NewUnavailableError(fmt.Errorf("tenant %s has no payment method configured", session.TenantUID))
	}

	collaborator, found := s.collaborators[session.PaymentMethod]
	if !found {
		return CheckoutSession{}, myerrors.NewNotImplementedError(fmt.Errorf("no payment collaborator for gateway %s", session.PaymentMethod))
	}

	crt, found, err := s.cartStore.GetCart(c, session.TenantUID, session.Gateway)
	if err != nil {
		return CheckoutSession{}, myerrors.NewInternalError(err)
	}
	if !found || crt.IsEmpty() {
		return CheckoutSession{}, myerrors.NewNotFoundError(fmt.Errorf("cart of tenant %s (%s) no longer exists", session.TenantUID, session.Gateway))
	}

	totals := calculateTotals(crt, session.FulfillmentFeeInCents)

	confirmation, err := collaborator.Submit(c, checkoutapi.PaymentRequest{
		TenantUID:         session.TenantUID,
		Reference:         session.UID,
		AmountInCents:     totals.TotalInCents,
		Currency:          crt.Currency,
		Customer:          session.Customer,
		ShippingAddress:   session.ShippingAddress,
		FulfillmentMethod: session.FulfillmentMethod,
		Items:             paymentItemsFromCart(crt),
		PaymentToken:      paymentToken,
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	return s.finalize(c, session.UID, totals, crt.Currency, confirmation)
}

// finalize runs at most once per session, no matter how often the gateway
// reports success: the Finalized flag flips inside the same transaction that
// records the order number. Clearing the cart and publishing are best-effort,
// the shopper is redirected to order history regardless.
func (s *service) finalize(c context.Context, checkoutUID string, totals OrderTotals, currency string, confirmation checkoutapi.PaymentConfirmation) (CheckoutSession, error) {
	alreadyFinalized := false
	var session CheckoutSession

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		var exists bool
		var err error
		session, exists, err = s.sessionStore.Get(c, checkoutUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !exists {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout %s not found", checkoutUID))
		}
		if session.Finalized {
			alreadyFinalized = true
			return nil
		}

		now := s.nower.Now()
		session.Finalized = true
		session.OrderNumber = confirmation.OrderNumber
		session.LastModified = &now

		err = s.sessionStore.Put(c, checkoutUID, session)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return CheckoutSession{}, err
	}
	if alreadyFinalized {
		return session, nil
	}

	s.logger.Log(c, checkoutUID, mylog.SeverityInfo, "Finalized checkout %s as order %s (%s)",
		checkoutUID, confirmation.OrderNumber, confirmation.GatewayTransactionID)

	// The shopper has been charged at this point. Publishing and clearing the
	// cart happen after the commit and must never surface an error: the order
	// record can be repaired, a failed payment page cannot.
	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutFinalized{
		CheckoutUID:           session.UID,
		TenantUID:             session.TenantUID,
		ProviderName:          string(session.PaymentMethod),
		OrderNumber:           confirmation.OrderNumber,
		GatewayTransactionUID: confirmation.GatewayTransactionID,
		AmountInCents:         totals.TotalInCents,
		Currency:              currency,
		ShopperEmail:          session.Customer.Email,
		ShopperPhone:          session.Customer.PhoneNumber,
	})
	if err != nil {
		s.logger.Log(c, checkoutUID, mylog.SeverityWarn, "Error publishing finalization of checkout %s: %s",
			checkoutUID, err)
	}

	err = s.cartStore.ClearCart(c, session.TenantUID, session.Gateway)
	if err != nil {
		// best-effort: a stale cart is annoying, a blocked shopper is worse
		s.logger.Log(c, checkoutUID, mylog.SeverityWarn, "Error clearing cart of tenant %s (%s): %s",
			session.TenantUID, session.Gateway, err)
	}

	return session, nil
}

// cartForSession is the tolerant read used when rendering a step page. A cart
// that has vanished mid-session renders as empty totals instead of an error.
func (s *service) cartForSession(c context.Context, session CheckoutSession) cart.Cart {
	crt, found, err := s.cartStore.GetCart(c, session.TenantUID, session.Gateway)
	if err != nil || !found {
		return cart.Cart{TenantUID: session.TenantUID, Gateway: session.Gateway}
	}
	return crt
}

func (s *service) updateSession(c context.Context, checkoutUID string, update func(session *CheckoutSession) error) (CheckoutSession, error) {
	var session CheckoutSession

	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		var exists bool
		var err error
		session, exists, err = s.sessionStore.Get(c, checkoutUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !exists {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout %s not found", checkoutUID))
		}
		if session.Finalized {
			return myerrors.NewInvalidInputErrorf("checkout %s has already been completed", checkoutUID)
		}

		err = update(&session)
		if err != nil {
			return err
		}

		now := s.nower.Now()
		session.LastModified = &now

		return s.sessionStore.Put(c, checkoutUID, session)
	})
	if err != nil {
		return CheckoutSession{}, err
	}

	return session, nil
}
