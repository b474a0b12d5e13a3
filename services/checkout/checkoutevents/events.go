package checkoutevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/myevents"
)

const (
	TopicName             = "checkout"
	checkoutStartedName   = TopicName + ".started"
	checkoutFinalizedName = TopicName + ".finalized"
)

type CheckoutEventService interface {
	Subscribe(c context.Context) error
	OnCheckoutStarted(c context.Context, topic string, event CheckoutStarted) error
	OnCheckoutFinalized(c context.Context, topic string, event CheckoutFinalized) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CheckoutEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case checkoutStartedName:
		{
			event := CheckoutStarted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCheckoutStarted(c, envelope.Topic, event)
		}
	case checkoutFinalizedName:
		{
			event := CheckoutFinalized{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCheckoutFinalized(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("%s", envelope.EventTypeName))
	}
}

type CheckoutStarted struct {
	CheckoutUID   string
	TenantUID     string
	ProviderName  string
	AmountInCents int64
	Currency      string
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.CheckoutUID
}

type CheckoutFinalized struct {
	CheckoutUID           string
	TenantUID             string
	ProviderName          string
	OrderNumber           string
	GatewayTransactionUID string
	AmountInCents         int64
	Currency              string
	ShopperEmail          string
	ShopperPhone          string
}

func (e CheckoutFinalized) GetEventTypeName() string {
	return checkoutFinalizedName
}

func (e CheckoutFinalized) GetAggregateName() string {
	return e.CheckoutUID
}
