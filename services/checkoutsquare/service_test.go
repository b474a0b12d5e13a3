package checkoutsquare

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/commercekit/storefront/lib/myvault"
	"github.com/commercekit/storefront/services/checkoutapi"
)

var paymentRequest = checkoutapi.PaymentRequest{
	TenantUID:     "tenant-a",
	Reference:     "checkout-123",
	AmountInCents: 10800,
	Currency:      "USD",
	Customer: checkoutapi.CustomerInfo{
		Email:       "jane@example.com",
		FirstName:   "Jane",
		LastName:    "Doe",
		PhoneNumber: "+1555123456",
	},
	FulfillmentMethod: checkoutapi.FulfillmentPickup,
	Items: []checkoutapi.PaymentItem{
		{InventoryItemID: "prod-1", Name: "Tennis racket", Quantity: 1, UnitPriceInCents: 10000},
	},
	PaymentToken: "cnon:card-nonce",
}

func TestSquareSubmit(t *testing.T) {

	t.Run("Completed payment with platform credentials", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, payer, vault, sut := setup(ctrl)

		// given: nothing vaulted for this tenant
		vault.EXPECT().Get(gomock.Any(), "square_credentials_tenant-a").
			Return(Credentials{}, false, nil)
		payer.EXPECT().UseAccessToken("platform-token")
		payer.EXPECT().CreatePayment(gomock.Any(), CreatePaymentRequest{
			IdempotencyKey:    "checkout-123",
			SourceID:          "cnon:card-nonce",
			AmountMoney:       Money{Amount: 10800, Currency: "USD"},
			LocationID:        "platform-location",
			ReferenceID:       "checkout-123",
			BuyerEmailAddress: "jane@example.com",
			Note:              "pickup order, 1 items",
		}).Return(Payment{ID: "pay-1", Status: "COMPLETED", ReceiptNumber: "R-42"}, nil)

		// when
		confirmation, err := sut.Submit(c, paymentRequest)

		// then
		assert.NoError(t, err)
		assert.Equal(t, "R-42", confirmation.OrderNumber)
		assert.Equal(t, "pay-1", confirmation.GatewayTransactionID)
	})

	t.Run("Vaulted tenant credentials take precedence", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, payer, vault, sut := setup(ctrl)

		// given
		vault.EXPECT().Get(gomock.Any(), "square_credentials_tenant-a").
			Return(Credentials{AccessToken: "tenant-token", LocationID: "tenant-location"}, true, nil)
		payer.EXPECT().UseAccessToken("tenant-token")
		payer.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
			Return(Payment{ID: "pay-2", Status: "APPROVED"}, nil)

		// when
		confirmation, err := sut.Submit(c, paymentRequest)

		// then: order number falls back to the payment id without a receipt
		assert.NoError(t, err)
		assert.Equal(t, "pay-2", confirmation.OrderNumber)
	})

	t.Run("Non-terminal payment status is an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, payer, vault, sut := setup(ctrl)

		// given
		vault.EXPECT().Get(gomock.Any(), gomock.Any()).Return(Credentials{}, false, nil)
		payer.EXPECT().UseAccessToken(gomock.Any())
		payer.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
			Return(Payment{ID: "pay-3", Status: "FAILED"}, nil)

		// when
		_, err := sut.Submit(c, paymentRequest)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "FAILED")
	})

	t.Run("Gateway error propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, payer, vault, sut := setup(ctrl)

		// given
		vault.EXPECT().Get(gomock.Any(), gomock.Any()).Return(Credentials{}, false, nil)
		payer.EXPECT().UseAccessToken(gomock.Any())
		payer.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
			Return(Payment{}, fmt.Errorf("card declined"))

		// when
		_, err := sut.Submit(c, paymentRequest)

		// then
		assert.Error(t, err)
	})

	t.Run("Shipping address is mapped to square fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, payer, vault, sut := setup(ctrl)

		// given
		request := paymentRequest
		request.FulfillmentMethod = checkoutapi.FulfillmentShipping
		request.ShippingAddress = &checkoutapi.Address{
			Line1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
		}

		vault.EXPECT().Get(gomock.Any(), gomock.Any()).Return(Credentials{}, false, nil)
		payer.EXPECT().UseAccessToken(gomock.Any())
		payer.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req CreatePaymentRequest) (Payment, error) {
				assert.Equal(t, &Address{
					AddressLine1:                 "1 Main St",
					Locality:                     "Springfield",
					AdministrativeDistrictLevel1: "IL",
					PostalCode:                   "62701",
					Country:                      "US",
				}, req.ShippingAddress)
				return Payment{ID: "pay-4", Status: "COMPLETED"}, nil
			})

		// when
		_, err := sut.Submit(c, request)

		// then
		assert.NoError(t, err)
	})
}

func setup(ctrl *gomock.Controller) (context.Context, *MockPayer, *myvault.MockVaultReader[Credentials], checkoutapi.PaymentCollaborator) {
	c := context.TODO()
	payer := NewMockPayer(ctrl)
	vault := myvault.NewMockVaultReader[Credentials](ctrl)
	sut := NewService(Config{AccessToken: "platform-token", LocationID: "platform-location"}, payer, vault)

	return c, payer, vault, sut
}
