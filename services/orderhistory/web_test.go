package orderhistory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/commercekit/storefront/lib/mypublisher"
	"github.com/commercekit/storefront/lib/mypubsub"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/services/checkout/checkoutevents"
)

var (
	order1 = Order{
		OrderNumber: "ORD-1", CheckoutUID: "checkout-1", TenantUID: "tenant-a",
		ProviderName: "square", AmountInCents: 10800, Currency: "USD",
		ShopperEmail: "jane@example.com", CreatedAt: time.Now(),
	}
	order2 = Order{
		OrderNumber: "ORD-2", CheckoutUID: "checkout-2", TenantUID: "tenant-a",
		ProviderName: "paypal", AmountInCents: 5000, Currency: "USD",
		ShopperEmail: "john@example.com", CreatedAt: time.Now().Add(time.Minute),
	}
)

func TestOrderHistoryService(t *testing.T) {

	t.Run("List orders", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _ := setup(ctrl)

		// given
		storer.Put(ctx, order1.OrderNumber, order1)
		storer.Put(ctx, order2.OrderNumber, order2)

		// when
		request, err := http.NewRequest(http.MethodGet, "/orders", nil)
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := response.Body.String()
		assert.Contains(t, got, "<td>ORD-1</td>")
		assert.Contains(t, got, "<td>ORD-2</td>")
		assert.Contains(t, got, "USD 108.00")
	})

	t.Run("List orders filtered on email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _ := setup(ctrl)

		// given
		storer.Put(ctx, order1.OrderNumber, order1)
		storer.Put(ctx, order2.OrderNumber, order2)

		// when
		request, err := http.NewRequest(http.MethodGet, "/orders?email=jane%40example.com", nil)
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		got := response.Body.String()
		assert.Contains(t, got, "<td>ORD-1</td>")
		assert.NotContains(t, got, "<td>ORD-2</td>")
	})

	t.Run("Checkout finalized event stores order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, nower, _ := setup(ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		request, err := http.NewRequest(http.MethodPost, "/api/orders/event",
			strings.NewReader(mypublisher.CreatePubsubMessage(checkoutevents.TopicName, checkoutevents.CheckoutFinalized{
				CheckoutUID:           "checkout-1",
				TenantUID:             "tenant-a",
				ProviderName:          "square",
				OrderNumber:           "ORD-1",
				GatewayTransactionUID: "txn-99",
				AmountInCents:         10800,
				Currency:              "USD",
				ShopperEmail:          "jane@example.com",
				ShopperPhone:          "+1555123456",
			})))
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		order, exists, _ := storer.Get(ctx, "ORD-1")
		assert.True(t, exists)
		assert.Equal(t, "checkout-1", order.CheckoutUID)
		assert.Equal(t, "jane@example.com", order.ShopperEmail)
		assert.Equal(t, int64(10800), order.AmountInCents)
		assert.Equal(t, mytime.ExampleTime, order.CreatedAt)
	})

	t.Run("Redelivered event does not overwrite the order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, storer, _, _ := setup(ctrl)

		// given
		storer.Put(ctx, order1.OrderNumber, order1)

		// when: the same finalization arrives again with a different amount
		request, err := http.NewRequest(http.MethodPost, "/api/orders/event",
			strings.NewReader(mypublisher.CreatePubsubMessage(checkoutevents.TopicName, checkoutevents.CheckoutFinalized{
				CheckoutUID:   "checkout-1",
				OrderNumber:   "ORD-1",
				AmountInCents: 99999,
			})))
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		order, _, _ := storer.Get(ctx, "ORD-1")
		assert.Equal(t, int64(10800), order.AmountInCents)
	})

	t.Run("Checkout started event is ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _ := setup(ctrl)

		// when
		request, err := http.NewRequest(http.MethodPost, "/api/orders/event",
			strings.NewReader(mypublisher.CreatePubsubMessage(checkoutevents.TopicName, checkoutevents.CheckoutStarted{
				CheckoutUID: "checkout-1",
			})))
		assert.NoError(t, err)
		request.Host = "localhost:8888"
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
	})

	t.Run("Subscribe registers the push endpoint", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, _, _, _, pubsub := setup(ctrl)

		// given
		pubsub.EXPECT().Subscribe(ctx, checkoutevents.TopicName, "http://localhost:8080/api/orders/event").Return(nil)

		// when
		sut := NewService(newStore(ctx), pubsub, mytime.RealNower{})
		err := sut.Subscribe(ctx)

		// then
		assert.NoError(t, err)
	})
}

func newStore(c context.Context) mystore.Store[Order] {
	storer, _, _ := mystore.NewInMemoryStore[Order](c)
	return storer
}

func setup(ctrl *gomock.Controller) (context.Context, *mux.Router, mystore.Store[Order], *mytime.MockNower, *mypubsub.MockPubSub) {
	c := context.TODO()
	storer, _, _ := mystore.NewInMemoryStore[Order](c)
	nower := mytime.NewMockNower(ctrl)
	pubsub := mypubsub.NewMockPubSub(ctrl)
	sut := NewService(storer, pubsub, nower)
	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	return c, router, storer, nower, pubsub
}
