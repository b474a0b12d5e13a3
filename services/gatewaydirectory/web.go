package gatewaydirectory

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/commercekit/storefront/lib/mycontext"
	"github.com/commercekit/storefront/lib/myerrors"
	"github.com/commercekit/storefront/lib/myhttp"
	"github.com/commercekit/storefront/lib/mylog"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(store mystore.Store[TenantGatewayConfig], nower mytime.Nower) *webService {
	logger := mylog.New("gatewaydirectory")
	return &webService{
		service: newService(store, nower, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {

	// Storefront pages and the checkout consult this to learn which gateways work
	router.HandleFunc("/api/tenant/{tenantUID}/payment-gateways/public", s.publicGatewaysAPI()).Methods("GET")

	// Tenant administrators maintain their gateway config through this api
	router.HandleFunc("/api/tenant/{tenantUID}/payment-gateways", s.getConfigAPI()).Methods("GET")
	router.HandleFunc("/api/tenant/{tenantUID}/payment-gateways", s.upsertConfigAPI()).Methods("PUT")
}

// Directory exposes gateway lookup to the checkout.
func (s *webService) Directory() Directory {
	return s.service
}

type publicGatewaysResponse struct {
	Gateways []publicGateway `json:"gateways"`
}

type publicGateway struct {
	GatewayType string `json:"gateway_type"`
	IsActive    bool   `json:"is_active"`
}

func (s *webService) publicGatewaysAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		tenantUID := mux.Vars(r)["tenantUID"]

		gateways, err := s.service.ActiveGateways(c, tenantUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		resp := publicGatewaysResponse{Gateways: []publicGateway{}}
		for _, g := range gateways {
			resp.Gateways = append(resp.Gateways, publicGateway{
				GatewayType: string(g),
				IsActive:    true,
			})
		}

		errorWriter.Write(c, w, http.StatusOK, resp)
	}
}

func (s *webService) getConfigAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		tenantUID := mux.Vars(r)["tenantUID"]

		config, err := s.service.getConfig(c, tenantUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, config)
	}
}

func (s *webService) upsertConfigAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		tenantUID := mux.Vars(r)["tenantUID"]

		config := TenantGatewayConfig{}
		err := json.NewDecoder(r.Body).Decode(&config)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("error parsing gateway config: %s", err))
			return
		}
		config.TenantUID = tenantUID

		stored, err := s.service.upsertConfig(c, config)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, stored)
	}
}
