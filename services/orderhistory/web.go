package orderhistory

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/commercekit/storefront/lib/mycontext"
	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/myhttp"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/mypubsub"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/services/checkout/checkoutevents"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(orderStore mystore.Store[Order], pubsub mypubsub.PubSub, nower mytime.Nower) *webService {
	logger := mylog.New("orderhistory")
	return &webService{
		service: newService(orderStore, pubsub, nower, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {

	// The page the checkout redirects to after a successful payment
	router.HandleFunc("/orders", s.orderListPage()).Methods("GET")

	// The pubsub push-subscription delivers checkout events here
	router.HandleFunc("/api/orders/event", s.eventHandler()).Methods("POST")
}

func (s *webService) Subscribe(c context.Context) error {
	return s.service.Subscribe(c)
}

//go:embed templates
var templateFolder embed.FS
var orderListPageTemplate *template.Template

func init() {
	orderListPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/order_list.html"))
}

type orderListPage struct {
	Email  string
	Orders []Order
}

func (s *webService) orderListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		email := r.URL.Query().Get("email")

		orders, err := s.service.listOrders(c, email)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = orderListPageTemplate.Execute(w, orderListPage{Email: email, Orders: orders})
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) eventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := checkoutevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}
