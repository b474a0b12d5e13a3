package checkoutsquare

import (
	"context"
	"fmt"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/myvault"
	"github.com/commercekit/storefront/services/checkoutapi"
)

// Config holds the platform-level Square credentials used for tenants that
// have not stored their own in the vault.
type Config struct {
	AccessToken string
	LocationID  string
}

type service struct {
	config Config
	payer  Payer
	vault  myvault.VaultReader[Credentials]
	logger mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(config Config, payer Payer, vault myvault.VaultReader[Credentials]) checkoutapi.PaymentCollaborator {
	return &service{
		config: config,
		payer:  payer,
		vault:  vault,
		logger: mylog.New("checkoutsquare"),
	}
}

func (s *service) Submit(c context.Context, req checkoutapi.PaymentRequest) (checkoutapi.PaymentConfirmation, error) {
	s.logger.Log(c, req.Reference, mylog.SeverityInfo, "Submitting square payment of %d %s for tenant %s",
		req.AmountInCents, req.Currency, req.TenantUID)

	creds := s.setupAuthentication(c, req.TenantUID)

	payment, err := s.payer.CreatePayment(c, CreatePaymentRequest{
		// the checkout reference doubles as idempotency key: resubmitting the
		// same checkout can never charge twice
		IdempotencyKey:    req.Reference,
		SourceID:          req.PaymentToken,
		AmountMoney:       Money{Amount: req.AmountInCents, Currency: req.Currency},
		LocationID:        creds.LocationID,
		ReferenceID:       req.Reference,
		BuyerEmailAddress: req.Customer.Email,
		ShippingAddress:   shippingAddress(req.ShippingAddress),
		Note:              fmt.Sprintf("%s order, %d items", req.FulfillmentMethod, len(req.Items)),
	})
	if err != nil {
		return checkoutapi.PaymentConfirmation{}, err
	}

	if payment.Status != paymentStatusCompleted && payment.Status != paymentStatusApproved {
		return checkoutapi.PaymentConfirmation{}, myerrors.NewInvalidInputError(
			fmt.Errorf("square payment %s ended in status %s", payment.ID, payment.Status))
	}

	s.logger.Log(c, req.Reference, mylog.SeverityInfo, "Square payment %s %s", payment.ID, payment.Status)

	return checkoutapi.PaymentConfirmation{
		OrderNumber:          orderNumber(payment),
		GatewayTransactionID: payment.ID,
	}, nil
}

func (s *service) setupAuthentication(c context.Context, tenantUID string) Credentials {
	creds, exists, err := s.vault.Get(c, credentialsVaultKeyPrefix+tenantUID)
	if err != nil || !exists || creds.AccessToken == "" {
		s.logger.Log(c, tenantUID, mylog.SeverityInfo, "Using platform credentials for tenant %s", tenantUID)
		creds = Credentials{AccessToken: s.config.AccessToken, LocationID: s.config.LocationID}
	} else {
		s.logger.Log(c, tenantUID, mylog.SeverityInfo, "Using vaulted credentials of tenant %s", tenantUID)
	}

	s.payer.UseAccessToken(creds.AccessToken)
	return creds
}

func orderNumber(payment Payment) string {
	if payment.ReceiptNumber != "" {
		return payment.ReceiptNumber
	}
	return payment.ID
}

func shippingAddress(address *checkoutapi.Address) *Address {
	if address == nil {
		return nil
	}
	return &Address{
		AddressLine1:                 address.Line1,
		AddressLine2:                 address.Line2,
		Locality:                     address.City,
		AdministrativeDistrictLevel1: address.State,
		PostalCode:                   address.PostalCode,
		Country:                      address.Country,
	}
}
