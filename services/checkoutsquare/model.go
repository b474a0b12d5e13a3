package checkoutsquare

// Credentials authenticate one merchant against the Square payments API.
// Stored per tenant in the vault; the config-level credentials act as the
// fallback for tenants that have not connected their own account.
type Credentials struct {
	AccessToken string
	LocationID  string
}

const credentialsVaultKeyPrefix = "square_credentials_"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Address struct {
	AddressLine1                 string `json:"address_line_1,omitempty"`
	AddressLine2                 string `json:"address_line_2,omitempty"`
	Locality                     string `json:"locality,omitempty"`
	AdministrativeDistrictLevel1 string `json:"administrative_district_level_1,omitempty"`
	PostalCode                   string `json:"postal_code,omitempty"`
	Country                      string `json:"country,omitempty"`
}

// CreatePaymentRequest is the payload of POST /v2/payments.
type CreatePaymentRequest struct {
	IdempotencyKey    string   `json:"idempotency_key"`
	SourceID          string   `json:"source_id"`
	AmountMoney       Money    `json:"amount_money"`
	LocationID        string   `json:"location_id,omitempty"`
	ReferenceID       string   `json:"reference_id,omitempty"`
	BuyerEmailAddress string   `json:"buyer_email_address,omitempty"`
	ShippingAddress   *Address `json:"shipping_address,omitempty"`
	Note              string   `json:"note,omitempty"`
}

type Payment struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ReceiptNumber string `json:"receipt_number"`
	OrderID       string `json:"order_id"`
}

const (
	paymentStatusApproved  = "APPROVED"
	paymentStatusCompleted = "COMPLETED"
)

type createPaymentResponse struct {
	Payment Payment    `json:"payment"`
	Errors  []apiError `json:"errors"`
}

type apiError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}
