package checkoutpaypal

import (
	"context"
	"fmt"

	"github.com/plutov/paypal/v4"

	"github.com/commercekit/storefront/lib/myerrors"
)

//go:generate mockgen -source=payer.go -package checkoutpaypal -destination payer_mock.go Payer
type Payer interface {
	UseCredentials(ctx context.Context, clientID string, secret string) error
	CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureOrderResponse, error)
}

type paypalPayer struct {
	apiBase string
	client  *paypal.Client
}

// NewPayer targets paypal.APIBaseSandBox or paypal.APIBaseLive.
func NewPayer(apiBase string) Payer {
	return &paypalPayer{
		apiBase: apiBase,
	}
}

func (p *paypalPayer) UseCredentials(ctx context.Context, clientID string, secret string) error {
	client, err := paypal.NewClient(clientID, secret, p.apiBase)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error creating paypal client: %s", err))
	}

	_, err = client.GetAccessToken(ctx)
	if err != nil {
		return myerrors.NewAuthenticationError(fmt.Errorf("error authenticating against paypal: %s", err))
	}

	p.client = client
	return nil
}

func (p *paypalPayer) CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureOrderResponse, error) {
	resp, err := p.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, myerrors.NewInvalidInputError(fmt.Errorf("error capturing paypal order %s: %s", orderID, err))
	}

	return resp, nil
}
