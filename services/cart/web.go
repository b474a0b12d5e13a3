package cart

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/commercekit/storefront/lib/mycontext"
	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/myhttp"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/mypublisher"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/services/checkoutapi"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(store mystore.Store[Cart], nower mytime.Nower, pub mypublisher.Publisher) *webService {
	logger := mylog.New("cart")
	return &webService{
		service: newService(store, nower, logger, pub),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {

	// Endpoints that compose the userinterface
	router.HandleFunc("/", s.cartListPage()).Methods("GET")
	router.HandleFunc("/cart", s.cartListPage()).Methods("GET")
	router.HandleFunc("/cart/{tenantUID}/{gateway}", s.cartDetailPage()).Methods("GET")

	// Storefront pages maintain cart contents through this api
	router.HandleFunc("/api/cart/{tenantUID}/{gateway}", s.getCartAPI()).Methods("GET")
	router.HandleFunc("/api/cart/{tenantUID}/{gateway}", s.upsertCartAPI()).Methods("PUT")
	router.HandleFunc("/api/cart/{tenantUID}/{gateway}", s.clearCartAPI()).Methods("DELETE")
}

// CartStore exposes the narrow read/clear/ready capabilities to the checkout.
func (s *webService) CartStore() CartStore {
	return s.service
}

//go:embed templates
var templateFolder embed.FS
var (
	cartListPageTemplate   *template.Template
	cartDetailPageTemplate *template.Template
)

func init() {
	cartListPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/cart_list.html"))
	cartDetailPageTemplate = template.Must(template.ParseFS(templateFolder, "templates/cart_detail.html"))
}

func (s *webService) cartListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		carts, err := s.service.listCarts(c)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = cartListPageTemplate.Execute(w, carts)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) cartDetailPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		tenantUID := mux.Vars(r)["tenantUID"]
		gateway, ok := checkoutapi.ParseGatewayType(mux.Vars(r)["gateway"])
		if !ok {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("unknown gateway %s", mux.Vars(r)["gateway"]))
			return
		}

		crt, err := s.service.getCart(c, tenantUID, gateway)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = cartDetailPageTemplate.Execute(w, crt)
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) getCartAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		tenantUID := mux.Vars(r)["tenantUID"]
		gateway, ok := checkoutapi.ParseGatewayType(mux.Vars(r)["gateway"])
		if !ok {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("unknown gateway %s", mux.Vars(r)["gateway"]))
			return
		}

		crt, err := s.service.getCart(c, tenantUID, gateway)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, crt)
	}
}

func (s *webService) upsertCartAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		tenantUID := mux.Vars(r)["tenantUID"]
		gateway, ok := checkoutapi.ParseGatewayType(mux.Vars(r)["gateway"])
		if !ok {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("unknown gateway %s", mux.Vars(r)["gateway"]))
			return
		}

		crt := Cart{}
		err := json.NewDecoder(r.Body).Decode(&crt)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}
		crt.TenantUID = tenantUID
		crt.Gateway = gateway

		crt, err = s.service.upsertCart(c, crt)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, crt)
	}
}

func (s *webService) clearCartAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		tenantUID := mux.Vars(r)["tenantUID"]
		gateway, ok := checkoutapi.ParseGatewayType(mux.Vars(r)["gateway"])
		if !ok {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("unknown gateway %s", mux.Vars(r)["gateway"]))
			return
		}

		err := s.service.ClearCart(c, tenantUID, gateway)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}
