package checkoutpaypal

import (
	"context"
	"fmt"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/myvault"
	"github.com/commercekit/storefront/services/checkoutapi"
)

// Credentials authenticate one merchant against the PayPal REST API.
type Credentials struct {
	ClientID string
	Secret   string
}

const credentialsVaultKeyPrefix = "paypal_credentials_"

const captureStatusCompleted = "COMPLETED"

// Config holds the platform-level PayPal app credentials used for tenants
// that have not stored their own in the vault.
type Config struct {
	ClientID string
	Secret   string
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
		logger: mylog.New("checkoutpaypal"),
	}
}

// Submit captures the order the shopper approved in the PayPal popup. The
// payment token carries the approved order id.
func (s *service) Submit(c context.Context, req checkoutapi.PaymentRequest) (checkoutapi.PaymentConfirmation, error) {
	s.logger.Log(c, req.Reference, mylog.SeverityInfo, "Capturing paypal order of %d %s for tenant %s",
		req.AmountInCents, req.Currency, req.TenantUID)

	if req.PaymentToken == "" {
		return checkoutapi.PaymentConfirmation{}, myerrors.NewInvalidInputErrorf("missing approved paypal order id")
	}

	err := s.setupAuthentication(c, req.TenantUID)
	if err != nil {
		return checkoutapi.PaymentConfirmation{}, err
	}

	capture, err := s.payer.CaptureOrder(c, req.PaymentToken)
	if err != nil {
		return checkoutapi.PaymentConfirmation{}, err
	}

	if capture.Status != captureStatusCompleted {
		return checkoutapi.PaymentConfirmation{}, myerrors.NewInvalidInputError(
			fmt.Errorf("paypal capture of order %s ended in status %s", capture.ID, capture.Status))
	}

	s.logger.Log(c, req.Reference, mylog.SeverityInfo, "Paypal order %s captured", capture.ID)

	return checkoutapi.PaymentConfirmation{
		OrderNumber:          capture.ID,
		GatewayTransactionID: capture.ID,
	}, nil
}

func (s *service) setupAuthentication(c context.Context, tenantUID string) error {
	creds, exists, err := s.vault.Get(c, credentialsVaultKeyPrefix+tenantUID)
	if err != nil || !exists || creds.ClientID == "" {
		s.logger.Log(c, tenantUID, mylog.SeverityInfo, "Using platform credentials for tenant %s", tenantUID)
		creds = Credentials{ClientID: s.config.ClientID, Secret: s.config.Secret}
	} else {
		s.logger.Log(c, tenantUID, mylog.SeverityInfo, "Using vaulted credentials of tenant %s", tenantUID)
	}

	return s.payer.UseCredentials(c, creds.ClientID, creds.Secret)
}
