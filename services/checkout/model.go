package checkout

import (
	"time"

	"github.com/commercekit/storefront/services/checkoutapi"
)

// Step is the phase a checkout session is in.
type Step string

const (
	StepReview      Step = "review"
	StepFulfillment Step = "fulfillment"
	StepShipping    Step = "shipping"
	StepPayment     Step = "payment"
)

// CheckoutSession walks a shopper through
// review -> fulfillment -> (shipping) -> payment for one cart.
type CheckoutSession struct {
	UID                   string
	TenantUID             string
	Gateway               checkoutapi.GatewayType
	Step                  Step
	Customer              checkoutapi.CustomerInfo
	FulfillmentMethod     checkoutapi.FulfillmentMethod
	FulfillmentFeeInCents int64
	ShippingAddress       *checkoutapi.Address
	PaymentMethod         checkoutapi.GatewayType
	ActiveGateways        []checkoutapi.GatewayType
	Initialized           bool
	Finalized             bool
	OrderNumber           string
	CreatedAt             time.Time
	LastModified          *time.Time
}

// HasActiveGateway reports whether the tenant can accept the given gateway at all.
func (s CheckoutSession) HasActiveGateway(gateway checkoutapi.GatewayType) bool {
	for _, g := range s.ActiveGateways {
		if g == gateway {
			return true
		}
	}
	return false
}

// NeedsShipping reports whether the chosen fulfillment method requires an address.
func (s CheckoutSession) NeedsShipping() bool {
	return s.FulfillmentMethod != "" && s.FulfillmentMethod != checkoutapi.FulfillmentPickup
}

// PreviousStep implements the back transitions of the step machine. From
// review there is no previous step: the shopper leaves for the cart listing.
func (s CheckoutSession) PreviousStep() (Step, bool) {
	switch s.Step {
	case StepPayment:
		if s.NeedsShipping() {
			return StepShipping, true
		}
		return StepFulfillment, true
	case StepShipping:
		return StepFulfillment, true
	case StepFulfillment:
		return StepReview, true
	default:
		return "", false
	}
}
