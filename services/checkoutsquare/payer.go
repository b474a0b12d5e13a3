package checkoutsquare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/myhttpclient"
)

const (
	SandboxBaseURL    = "https://connect.squareupsandbox.com"
	ProductionBaseURL = "https://connect.squareup.com"

	// pinned api version, sent on every request
	squareAPIVersion = "2024-06-04"
)

//go:generate mockgen -source=payer.go -package checkoutsquare -destination payer_mock.go Payer
type Payer interface {
	UseAccessToken(accessToken string)
	CreatePayment(ctx context.Context, request CreatePaymentRequest) (Payment, error)
}

// Square publishes no supported Go SDK, so this is a thin REST client.
type restPayer struct {
	baseURL     string
	accessToken string
	httpClient  myhttpclient.HTTPSender
}

func NewPayer(baseURL string, httpClient myhttpclient.HTTPSender) Payer {
	return &restPayer{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (p *restPayer) UseAccessToken(accessToken string) {
	p.accessToken = accessToken
}

func (p *restPayer) CreatePayment(ctx context.Context, request CreatePaymentRequest) (Payment, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return Payment{}, myerrors.NewInternalError(fmt.Errorf("error marshalling payment request: %s", err))
	}

	headers := map[string]string{
		"Authorization":  "Bearer " + p.accessToken,
		"Square-Version": squareAPIVersion,
	}

	httpStatus, respBody, err := p.httpClient.Send(ctx, http.MethodPost, p.baseURL+"/v2/payments", headers, body)
	if err != nil {
		return Payment{}, myerrors.NewInternalError(fmt.Errorf("error creating square payment: %s", err))
	}

	resp := createPaymentResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return Payment{}, myerrors.NewInternalError(fmt.Errorf("error parsing square payment response: %s", err))
	}

	if httpStatus != http.StatusOK || len(resp.Errors) > 0 {
		return Payment{}, myerrors.NewInvalidInputError(fmt.Errorf("square payment refused (http %d): %s", httpStatus, describeErrors(resp.Errors)))
	}

	return resp.Payment, nil
}

func describeErrors(errors []apiError) string {
	if len(errors) == 0 {
		return "no detail"
	}
	first := errors[0]
	return fmt.Sprintf("%s/%s: %s", first.Category, first.Code, first.Detail)
}
