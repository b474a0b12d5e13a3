package checkoutapi

import (
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"

	"github.com/commercekit/storefront/lib/myerrors"
)

type FulfillmentForm struct {
	Method     string `form:"fulfillmentMethod"`
	FeeInCents int64  `form:"fulfillmentFeeInCents"`
}

type PaymentForm struct {
	Gateway      string `form:"gateway"`
	PaymentToken string `form:"paymentToken"`
}

func NewCustomerFromRequest(r *http.Request) (CustomerInfo, error) {
	customer := CustomerInfo{}
	err := decodeForm(r, &customer)
	return customer, err
}

func NewFulfillmentFromRequest(r *http.Request) (FulfillmentForm, error) {
	fulfillment := FulfillmentForm{}
	err := decodeForm(r, &fulfillment)
	return fulfillment, err
}

func NewAddressFromRequest(r *http.Request) (Address, error) {
	address := Address{}
	err := decodeForm(r, &address)
	return address, err
}

func NewPaymentFromRequest(r *http.Request) (PaymentForm, error) {
	payment := PaymentForm{}
	err := decodeForm(r, &payment)
	return payment, err
}

func decodeForm(r *http.Request, target interface{}) error {
	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}
	return decodeValues(target, r.Form)
}

func decodeValues(target interface{}, values url.Values) error {
	err := formcodec.NewDecoder().Decode(target, values)
	if err != nil {
		return myerrors.NewInvalidInputErrorf("error decoding form: %s", err)
	}

	return nil
}
