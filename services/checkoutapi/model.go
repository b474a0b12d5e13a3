package checkoutapi

import (
	"context"
	"strings"
)

// GatewayType identifies the payment processor that owns a cart/order.
type GatewayType string

const (
	GatewaySquare GatewayType = "square"
	GatewayPayPal GatewayType = "paypal"
)

func ParseGatewayType(value string) (GatewayType, bool) {
	switch GatewayType(strings.ToLower(value)) {
	case GatewaySquare:
		return GatewaySquare, true
	case GatewayPayPal:
		return GatewayPayPal, true
	default:
		return "", false
	}
}

// FulfillmentMethod describes how an order reaches the shopper.
type FulfillmentMethod string

const (
	FulfillmentPickup   FulfillmentMethod = "pickup"
	FulfillmentDelivery FulfillmentMethod = "delivery"
	FulfillmentShipping FulfillmentMethod = "shipping"
)

func ParseFulfillmentMethod(value string) (FulfillmentMethod, bool) {
	switch FulfillmentMethod(strings.ToLower(value)) {
	case FulfillmentPickup:
		return FulfillmentPickup, true
	case FulfillmentDelivery:
		return FulfillmentDelivery, true
	case FulfillmentShipping:
		return FulfillmentShipping, true
	default:
		return "", false
	}
}

type CustomerInfo struct {
	Email       string `form:"email"`
	FirstName   string `form:"firstName"`
	LastName    string `form:"lastName"`
	PhoneNumber string `form:"phone"`
}

func (ci CustomerInfo) IsComplete() bool {
	return ci.Email != "" && ci.FirstName != "" && ci.LastName != "" && ci.PhoneNumber != ""
}

func (ci CustomerInfo) FullName() string {
	return ci.FirstName + " " + ci.LastName
}

type Address struct {
	Line1      string `form:"line1"`
	Line2      string `form:"line2"`
	City       string `form:"city"`
	State      string `form:"state"`
	PostalCode string `form:"postalCode"`
	Country    string `form:"country"`
}

// IsComplete reports whether all mandatory address fields are present. Line2 is optional.
func (a Address) IsComplete() bool {
	return a.Line1 != "" && a.City != "" && a.State != "" && a.PostalCode != "" && a.Country != ""
}

// PaymentItem is the shape in which cart lines are handed to a payment gateway.
type PaymentItem struct {
	InventoryItemID  string
	Name             string
	SKU              string
	Quantity         int
	UnitPriceInCents int64
	ListPriceInCents *int64
}

type PaymentRequest struct {
	TenantUID         string
	Reference         string
	AmountInCents     int64
	Currency          string
	Customer          CustomerInfo
	ShippingAddress   *Address
	FulfillmentMethod FulfillmentMethod
	Items             []PaymentItem
	PaymentToken      string
}

type PaymentConfirmation struct {
	OrderNumber          string
	GatewayTransactionID string
}

// PaymentCollaborator submits a fully composed payment to one specific gateway.
// Implementations own their gateway-specific error detail; the checkout only
// learns about confirmed success.
//
//go:generate mockgen -source=model.go -package checkoutapi -destination collaborator_mock.go PaymentCollaborator
type PaymentCollaborator interface {
	Submit(c context.Context, req PaymentRequest) (PaymentConfirmation, error)
}
