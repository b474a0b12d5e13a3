package checkout

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/commercekit/storefront/lib/mypublisher"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/lib/myuuid"
	"github.com/commercekit/storefront/services/cart"
	"github.com/commercekit/storefront/services/checkout/checkoutevents"
	"github.com/commercekit/storefront/services/checkoutapi"
	"github.com/commercekit/storefront/services/gatewaydirectory"
)

var testCart = cart.Cart{
	TenantUID: "tenant-a",
	Gateway:   checkoutapi.GatewaySquare,
	Currency:  "USD",
	Items: []cart.LineItem{
		{ProductUID: "prod-1", Name: "Tennis racket", SKU: "TR-1", Quantity: 2, UnitPriceInCents: 10000},
		{ProductUID: "prod-2", Name: "Tennis balls", SKU: "TB-6", Quantity: 1, UnitPriceInCents: 1000},
	},
}

var testCustomer = checkoutapi.CustomerInfo{
	Email:       "jane@example.com",
	FirstName:   "Jane",
	LastName:    "Doe",
	PhoneNumber: "+1555123456",
}

var testAddress = checkoutapi.Address{
	Line1:      "1 Main St",
	City:       "Springfield",
	State:      "IL",
	PostalCode: "62701",
	Country:    "US",
}

func TestStartCheckout(t *testing.T) {

	t.Run("Start without tenant redirects to cart listing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// when
		response := doRequest(f.router, http.MethodGet, "/checkout/start", nil)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/cart", response.Header().Get("Location"))
	})

	t.Run("Start with missing cart retries once then redirects", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given: the cart never shows up, the store is already hydrated
		f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(cart.Cart{}, false, nil).Times(2)
		f.cartStore.EXPECT().Ready().Return(closedChannel()).AnyTimes()

		// when
		response := doRequest(f.router, http.MethodGet, "/checkout/start?tenantUID=tenant-a", nil)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/cart", response.Header().Get("Location"))
	})

	t.Run("Start creates an initialized session on the review step", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(testCart, true, nil)
		f.directory.EXPECT().ActiveGateways(gomock.Any(), "tenant-a").
			Return([]checkoutapi.GatewayType{checkoutapi.GatewaySquare, checkoutapi.GatewayPayPal}, nil)
		f.uuider.EXPECT().Create().Return("checkout-123")
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			CheckoutUID:   "checkout-123",
			TenantUID:     "tenant-a",
			ProviderName:  "square",
			AmountInCents: 21630, // 21000 + 3%
			Currency:      "USD",
		}).Return(nil)

		// when
		response := doRequest(f.router, http.MethodGet, "/checkout/start?tenantUID=tenant-a&gateway=square", nil)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/checkout/checkout-123", response.Header().Get("Location"))

		session, exists, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.True(t, exists)
		assert.Equal(t, StepReview, session.Step)
		assert.True(t, session.Initialized)
		assert.Equal(t, checkoutapi.GatewaySquare, session.PaymentMethod)
	})

	t.Run("Seeded gateway falls back to first active one", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given: shopper asked for paypal but only square is enabled
		f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewayPayPal).
			Return(testCart, true, nil)
		f.directory.EXPECT().ActiveGateways(gomock.Any(), "tenant-a").
			Return([]checkoutapi.GatewayType{checkoutapi.GatewaySquare}, nil)
		f.uuider.EXPECT().Create().Return("checkout-456")
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := doRequest(f.router, http.MethodGet, "/checkout/start?tenantUID=tenant-a&gateway=paypal", nil)

		// then
		assert.Equal(t, 303, response.Code)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-456")
		assert.Equal(t, checkoutapi.GatewaySquare, session.PaymentMethod)
	})

	t.Run("Directory failure counts as zero gateways", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(testCart, true, nil)
		f.directory.EXPECT().ActiveGateways(gomock.Any(), "tenant-a").
			Return(nil, fmt.Errorf("directory down"))
		f.uuider.EXPECT().Create().Return("checkout-789")
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)

		// when
		response := doRequest(f.router, http.MethodGet, "/checkout/start?tenantUID=tenant-a", nil)

		// then
		assert.Equal(t, 303, response.Code)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-789")
		assert.Empty(t, session.ActiveGateways)
	})

	t.Run("Step pages never re-run the missing-cart redirect", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given: an initialized session whose cart has since vanished
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepReview, Initialized: true,
		})
		f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(cart.Cart{}, false, nil).AnyTimes()

		// when: rendered repeatedly
		for i := 0; i < 3; i++ {
			response := doRequest(f.router, http.MethodGet, "/checkout/checkout-123", nil)

			// then: stays on the step, no redirect
			assert.Equal(t, 200, response.Code)
			assert.Empty(t, response.Header().Get("Location"))
		}
	})
}

func TestCheckoutSteps(t *testing.T) {

	t.Run("Customer submission moves review to fulfillment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepReview, Initialized: true,
		})
		f.expectCartReads()
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/customer", customerForm(testCustomer))

		// then
		assert.Equal(t, 200, response.Code)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, StepFulfillment, session.Step)
		assert.Equal(t, testCustomer, session.Customer)
	})

	t.Run("Incomplete customer info stays on review with inline error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepReview, Initialized: true,
		})
		f.expectCartReads()

		// when: no phone number
		form := url.Values{}
		form.Set("email", "jane@example.com")
		form.Set("firstName", "Jane")
		form.Set("lastName", "Doe")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/customer", form)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `class="error"`)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, StepReview, session.Step)
	})

	t.Run("Pickup goes straight to payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepFulfillment, Customer: testCustomer, Initialized: true,
			ActiveGateways: []checkoutapi.GatewayType{checkoutapi.GatewaySquare},
			PaymentMethod:  checkoutapi.GatewaySquare,
		})
		f.expectCartReads()
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		form := url.Values{}
		form.Set("fulfillmentMethod", "pickup")
		form.Set("fulfillmentFeeInCents", "0")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/fulfillment", form)

		// then
		assert.Equal(t, 200, response.Code)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, StepPayment, session.Step)
		assert.Nil(t, session.ShippingAddress)
	})

	t.Run("Delivery detours via shipping before payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepFulfillment, Customer: testCustomer, Initialized: true,
			ActiveGateways: []checkoutapi.GatewayType{checkoutapi.GatewaySquare},
			PaymentMethod:  checkoutapi.GatewaySquare,
		})
		f.expectCartReads()
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		form := url.Values{}
		form.Set("fulfillmentMethod", "delivery")
		form.Set("fulfillmentFeeInCents", "500")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/fulfillment", form)

		// then
		assert.Equal(t, 200, response.Code)
		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, StepShipping, session.Step)

		// and when the full address arrives
		response = doRequest(f.router, http.MethodPost, "/checkout/checkout-123/shipping", addressForm(testAddress))

		// then payment is reached
		assert.Equal(t, 200, response.Code)
		session, _, _ = f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, StepPayment, session.Step)
		assert.Equal(t, &testAddress, session.ShippingAddress)
	})

	t.Run("Partial address stays on shipping", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepShipping, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentDelivery,
			FulfillmentFeeInCents: 500, Initialized: true,
		})
		f.expectCartReads()

		// when: city missing
		form := url.Values{}
		form.Set("line1", "1 Main St")
		form.Set("state", "IL")
		form.Set("postalCode", "62701")
		form.Set("country", "US")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/shipping", form)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `class="error"`)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, StepShipping, session.Step)
	})

	t.Run("Back from payment returns to shipping for delivery", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentDelivery,
			FulfillmentFeeInCents: 500, ShippingAddress: &testAddress, Initialized: true,
		})
		f.expectCartReads()
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/back", nil)

		// then
		assert.Equal(t, 200, response.Code)
		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, StepShipping, session.Step)
	})

	t.Run("Back from payment returns to fulfillment for pickup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentPickup,
			Initialized: true,
		})
		f.expectCartReads()
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/back", nil)

		// then
		assert.Equal(t, 200, response.Code)
		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, StepFulfillment, session.Step)
	})

	t.Run("Back from review exits to the cart listing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepReview, Initialized: true,
		})
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/back", nil)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/cart", response.Header().Get("Location"))
	})

	t.Run("Switching gateway keeps collected data", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentDelivery,
			FulfillmentFeeInCents: 500, ShippingAddress: &testAddress, Initialized: true,
			ActiveGateways: []checkoutapi.GatewayType{checkoutapi.GatewaySquare, checkoutapi.GatewayPayPal},
			PaymentMethod:  checkoutapi.GatewaySquare,
		})
		f.expectCartReads()
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		form := url.Values{}
		form.Set("gateway", "paypal")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/payment-method", form)

		// then
		assert.Equal(t, 200, response.Code)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, checkoutapi.GatewayPayPal, session.PaymentMethod)
		assert.Equal(t, testCustomer, session.Customer)
		assert.Equal(t, checkoutapi.FulfillmentDelivery, session.FulfillmentMethod)
		assert.Equal(t, &testAddress, session.ShippingAddress)
	})

	t.Run("Switching to an inactive gateway is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentPickup,
			Initialized:    true,
			ActiveGateways: []checkoutapi.GatewayType{checkoutapi.GatewaySquare},
			PaymentMethod:  checkoutapi.GatewaySquare,
		})
		f.expectCartReads()

		// when
		form := url.Values{}
		form.Set("gateway", "paypal")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/payment-method", form)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `class="error"`)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.Equal(t, checkoutapi.GatewaySquare, session.PaymentMethod)
	})

	t.Run("Payment page without gateways shows blocking message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentPickup,
			Initialized:    true,
			ActiveGateways: []checkoutapi.GatewayType{},
		})
		f.expectCartReads()

		// when
		response := doRequest(f.router, http.MethodGet, "/checkout/checkout-123", nil)

		// then
		assert.Equal(t, 200, response.Code)
		got := response.Body.String()
		assert.Contains(t, got, "No payment method configured")
		assert.NotContains(t, got, "/checkout/checkout-123/pay\"")
	})
}

func TestPay(t *testing.T) {

	t.Run("Successful payment finalizes exactly once", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentDelivery,
			FulfillmentFeeInCents: 500, ShippingAddress: &testAddress, Initialized: true,
			ActiveGateways: []checkoutapi.GatewayType{checkoutapi.GatewaySquare},
			PaymentMethod:  checkoutapi.GatewaySquare,
		})
		f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(testCart, true, nil).AnyTimes()
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		f.squarePayer.EXPECT().Submit(gomock.Any(), checkoutapi.PaymentRequest{
			TenantUID:         "tenant-a",
			Reference:         "checkout-123",
			AmountInCents:     22130, // 21000 + 630 platform fee + 500 delivery
			Currency:          "USD",
			Customer:          testCustomer,
			ShippingAddress:   &testAddress,
			FulfillmentMethod: checkoutapi.FulfillmentDelivery,
			Items: []checkoutapi.PaymentItem{
				{InventoryItemID: "prod-1", Name: "Tennis racket", SKU: "TR-1", Quantity: 2, UnitPriceInCents: 10000},
				{InventoryItemID: "prod-2", Name: "Tennis balls", SKU: "TB-6", Quantity: 1, UnitPriceInCents: 1000},
			},
			PaymentToken: "tok-1",
		}).Return(checkoutapi.PaymentConfirmation{OrderNumber: "ORD-1", GatewayTransactionID: "txn-99"}, nil)

		// exactly one publish and one clear, no matter what follows
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutFinalized{
			CheckoutUID:           "checkout-123",
			TenantUID:             "tenant-a",
			ProviderName:          "square",
			OrderNumber:           "ORD-1",
			GatewayTransactionUID: "txn-99",
			AmountInCents:         22130,
			Currency:              "USD",
			ShopperEmail:          "jane@example.com",
			ShopperPhone:          "+1555123456",
		}).Return(nil).Times(1)
		f.cartStore.EXPECT().ClearCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(nil).Times(1)

		// when
		form := url.Values{}
		form.Set("gateway", "square")
		form.Set("paymentToken", "tok-1")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/pay", form)

		// then
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/orders?email=jane%40example.com", response.Header().Get("Location"))

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.True(t, session.Finalized)
		assert.Equal(t, "ORD-1", session.OrderNumber)

		// and when the gateway reports success a second time
		response = doRequest(f.router, http.MethodPost, "/checkout/checkout-123/pay", form)

		// then: redirect again, but no second clear or publish
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/orders?email=jane%40example.com", response.Header().Get("Location"))
	})

	t.Run("Publish failure after charge still redirects", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentPickup,
			Initialized:    true,
			ActiveGateways: []checkoutapi.GatewayType{checkoutapi.GatewaySquare},
			PaymentMethod:  checkoutapi.GatewaySquare,
		})
		f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(testCart, true, nil).AnyTimes()
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()
		f.squarePayer.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(checkoutapi.PaymentConfirmation{OrderNumber: "ORD-1", GatewayTransactionID: "txn-99"}, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).
			Return(fmt.Errorf("outbox down")).Times(1)
		f.cartStore.EXPECT().ClearCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(nil).Times(1)

		// when
		form := url.Values{}
		form.Set("gateway", "square")
		form.Set("paymentToken", "tok-1")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/pay", form)

		// then: the shopper was charged, so the redirect happens regardless
		assert.Equal(t, 303, response.Code)
		assert.Equal(t, "/orders?email=jane%40example.com", response.Header().Get("Location"))

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.True(t, session.Finalized)
		assert.Equal(t, "ORD-1", session.OrderNumber)
	})

	t.Run("Collaborator failure keeps shopper on payment step", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentPickup,
			Initialized:    true,
			ActiveGateways: []checkoutapi.GatewayType{checkoutapi.GatewaySquare},
			PaymentMethod:  checkoutapi.GatewaySquare,
		})
		f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
			Return(testCart, true, nil).AnyTimes()
		f.squarePayer.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(checkoutapi.PaymentConfirmation{}, fmt.Errorf("card declined"))

		// when
		form := url.Values{}
		form.Set("gateway", "square")
		form.Set("paymentToken", "tok-1")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/pay", form)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `class="error"`)

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.False(t, session.Finalized)
	})

	t.Run("Pay without gateways is blocked", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(ctrl)

		// given
		f.seedSession(CheckoutSession{
			UID: "checkout-123", TenantUID: "tenant-a", Gateway: checkoutapi.GatewaySquare,
			Step: StepPayment, Customer: testCustomer, FulfillmentMethod: checkoutapi.FulfillmentPickup,
			Initialized:    true,
			ActiveGateways: []checkoutapi.GatewayType{},
			PaymentMethod:  checkoutapi.GatewaySquare,
		})
		f.expectCartReads()

		// when
		form := url.Values{}
		form.Set("paymentToken", "tok-1")
		response := doRequest(f.router, http.MethodPost, "/checkout/checkout-123/pay", form)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), "No payment method configured")

		session, _, _ := f.sessionStore.Get(f.ctx, "checkout-123")
		assert.False(t, session.Finalized)
	})
}

type fixture struct {
	ctx          context.Context
	router       *mux.Router
	sessionStore mystore.Store[CheckoutSession]
	cartStore    *cart.MockCartStore
	directory    *gatewaydirectory.MockDirectory
	squarePayer  *checkoutapi.MockPaymentCollaborator
	paypalPayer  *checkoutapi.MockPaymentCollaborator
	publisher    *mypublisher.MockPublisher
	nower        *mytime.MockNower
	uuider       *myuuid.MockUUIDer
}

func setup(ctrl *gomock.Controller) *fixture {
	c := context.TODO()
	sessionStore, _, _ := mystore.NewInMemoryStore[CheckoutSession](c)
	cartStore := cart.NewMockCartStore(ctrl)
	directory := gatewaydirectory.NewMockDirectory(ctrl)
	squarePayer := checkoutapi.NewMockPaymentCollaborator(ctrl)
	paypalPayer := checkoutapi.NewMockPaymentCollaborator(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)

	sut := NewService(sessionStore, cartStore, directory,
		map[checkoutapi.GatewayType]checkoutapi.PaymentCollaborator{
			checkoutapi.GatewaySquare: squarePayer,
			checkoutapi.GatewayPayPal: paypalPayer,
		},
		publisher, nower, uuider)
	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	return &fixture{
		ctx:          c,
		router:       router,
		sessionStore: sessionStore,
		cartStore:    cartStore,
		directory:    directory,
		squarePayer:  squarePayer,
		paypalPayer:  paypalPayer,
		publisher:    publisher,
		nower:        nower,
		uuider:       uuider,
	}
}

func (f *fixture) seedSession(session CheckoutSession) {
	f.sessionStore.Put(f.ctx, session.UID, session)
}

func (f *fixture) expectCartReads() {
	f.cartStore.EXPECT().GetCart(gomock.Any(), "tenant-a", checkoutapi.GatewaySquare).
		Return(testCart, true, nil).AnyTimes()
}

func customerForm(customer checkoutapi.CustomerInfo) url.Values {
	form := url.Values{}
	form.Set("email", customer.Email)
	form.Set("firstName", customer.FirstName)
	form.Set("lastName", customer.LastName)
	form.Set("phone", customer.PhoneNumber)
	return form
}

func addressForm(address checkoutapi.Address) url.Values {
	form := url.Values{}
	form.Set("line1", address.Line1)
	form.Set("line2", address.Line2)
	form.Set("city", address.City)
	form.Set("state", address.State)
	form.Set("postalCode", address.PostalCode)
	form.Set("country", address.Country)
	return form
}

func doRequest(router *mux.Router, method string, target string, form url.Values) *httptest.ResponseRecorder {
	var request *http.Request
	if form != nil {
		request, _ = http.NewRequest(method, target, strings.NewReader(form.Encode()))
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		request, _ = http.NewRequest(method, target, nil)
	}
	request.Host = "localhost:8888"
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)

	return response
}

func closedChannel() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
