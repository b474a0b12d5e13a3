package checkout

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/commercekit/storefront/lib/mycontext"
	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/myhttp"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/mypublisher"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/lib/myuuid"
	"github.com/commercekit/storefront/services/cart"
	"github.com/commercekit/storefront/services/checkoutapi"
	"github.com/commercekit/storefront/services/gatewaydirectory"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(sessionStore mystore.Store[CheckoutSession], cartStore cart.CartStore,
	directory gatewaydirectory.Directory,
	collaborators map[checkoutapi.GatewayType]checkoutapi.PaymentCollaborator,
	publisher mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("checkout")
	return &webService{
		service: newService(sessionStore, cartStore, directory, collaborators, publisher, nower, uuider, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {

	// Entry point: the cart page links here
	router.HandleFunc("/checkout/start", s.startPage()).Methods("GET")

	// Step pages and step submissions
	router.HandleFunc("/checkout/{checkoutUID}", s.stepPage()).Methods("GET")
	router.HandleFunc("/checkout/{checkoutUID}/customer", s.submitCustomerPage()).Methods("POST")
	router.HandleFunc("/checkout/{checkoutUID}/fulfillment", s.submitFulfillmentPage()).Methods("POST")
	router.HandleFunc("/checkout/{checkoutUID}/shipping", s.submitShippingPage()).Methods("POST")
	router.HandleFunc("/checkout/{checkoutUID}/payment-method", s.selectPaymentMethodPage()).Methods("POST")
	router.HandleFunc("/checkout/{checkoutUID}/back", s.backPage()).Methods("POST")
	router.HandleFunc("/checkout/{checkoutUID}/pay", s.payPage()).Methods("POST")
}

//go:embed templates
var templateFolder embed.FS

var stepTemplates map[Step]*template.Template

func init() {
	stepTemplates = map[Step]*template.Template{
		StepReview:      template.Must(template.ParseFS(templateFolder, "templates/checkout_review.html")),
		StepFulfillment: template.Must(template.ParseFS(templateFolder, "templates/checkout_fulfillment.html")),
		StepShipping:    template.Must(template.ParseFS(templateFolder, "templates/checkout_shipping.html")),
		StepPayment:     template.Must(template.ParseFS(templateFolder, "templates/checkout_payment.html")),
	}
}

type stepPage struct {
	Session CheckoutSession
	Cart    cart.Cart
	Totals  OrderTotals
	Error   string
}

func (s *webService) startPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.service.startCheckout(c, r.URL.Query().Get("tenantUID"), r.URL.Query().Get("gateway"))
		if err != nil {
			// a shopper without identity or cart is sent back without a message
			if errors.Is(err, errMissingIdentity) || errors.Is(err, errCartNotFound) {
				http.Redirect(w, r, "/cart", http.StatusSeeOther)
				return
			}
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, "/checkout/"+session.UID, http.StatusSeeOther)
	}
}

func (s *webService) stepPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, err := s.service.getSession(c, mux.Vars(r)["checkoutUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.renderStep(c, w, session, "")
	}
}

func (s *webService) submitCustomerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		checkoutUID := mux.Vars(r)["checkoutUID"]

		customer, err := checkoutapi.NewCustomerFromRequest(r)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		session, err := s.service.submitCustomer(c, checkoutUID, customer)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		s.renderStep(c, w, session, "")
	}
}

func (s *webService) submitFulfillmentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		checkoutUID := mux.Vars(r)["checkoutUID"]

		fulfillment, err := checkoutapi.NewFulfillmentFromRequest(r)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		session, err := s.service.submitFulfillment(c, checkoutUID, fulfillment.Method, fulfillment.FeeInCents)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		s.renderStep(c, w, session, "")
	}
}

func (s *webService) submitShippingPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		checkoutUID := mux.Vars(r)["checkoutUID"]

		address, err := checkoutapi.NewAddressFromRequest(r)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		session, err := s.service.submitShipping(c, checkoutUID, address)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		s.renderStep(c, w, session, "")
	}
}

func (s *webService) selectPaymentMethodPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		checkoutUID := mux.Vars(r)["checkoutUID"]

		payment, err := checkoutapi.NewPaymentFromRequest(r)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		session, err := s.service.selectPaymentMethod(c, checkoutUID, payment.Gateway)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		s.renderStep(c, w, session, "")
	}
}

func (s *webService) backPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		session, stillInCheckout, err := s.service.goBack(c, mux.Vars(r)["checkoutUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if !stillInCheckout {
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}

		s.renderStep(c, w, session, "")
	}
}

func (s *webService) payPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		checkoutUID := mux.Vars(r)["checkoutUID"]

		payment, err := checkoutapi.NewPaymentFromRequest(r)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		session, err := s.service.pay(c, checkoutUID, payment.PaymentToken)
		if err != nil {
			s.renderStepWithError(c, w, errorWriter, checkoutUID, err)
			return
		}

		// unconditional: whatever happened after the payment confirmation,
		// the shopper ends up on the order-history page
		http.Redirect(w, r, "/orders?email="+url.QueryEscape(session.Customer.Email), http.StatusSeeOther)
	}
}

func (s *webService) renderStep(c context.Context, w http.ResponseWriter, session CheckoutSession, errorMessage string) {
	errorWriter := myhttp.NewWriter(s.logger)

	crt := s.service.cartForSession(c, session)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := stepTemplates[session.Step].Execute(w, stepPage{
		Session: session,
		Cart:    crt,
		Totals:  calculateTotals(crt, session.FulfillmentFeeInCents),
		Error:   errorMessage,
	})
	if err != nil {
		errorWriter.WriteError(c, w, 10, myerrors.NewInternalError(err))
		return
	}
}

// renderStepWithError keeps the shopper on the current step with an inline
// explanation. Only when the session itself cannot be loaded does the error
// escape as a JSON response.
func (s *webService) renderStepWithError(c context.Context, w http.ResponseWriter, errorWriter myhttp.ResponseWriter, checkoutUID string, stepErr error) {
	session, err := s.service.getSession(c, checkoutUID)
	if err != nil {
		errorWriter.WriteError(c, w, 1, err)
		return
	}

	s.renderStep(c, w, session, stepErr.Error())
}
