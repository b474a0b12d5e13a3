package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/plutov/paypal/v4"

	"github.com/commercekit/storefront/lib/myhttpclient"
	"github.com/commercekit/storefront/lib/mypublisher"
	"github.com/commercekit/storefront/lib/mypubsub"
	"github.com/commercekit/storefront/lib/myqueue"
	"github.com/commercekit/storefront/lib/mystore"
	"github.com/commercekit/storefront/lib/mytime"
	"github.com/commercekit/storefront/lib/myuuid"
	"github.com/commercekit/storefront/lib/myvault"
	"github.com/commercekit/storefront/services/cart"
	"github.com/commercekit/storefront/services/cart/cartevents"
	"github.com/commercekit/storefront/services/checkout"
	"github.com/commercekit/storefront/services/checkout/checkoutevents"
	"github.com/commercekit/storefront/services/checkoutapi"
	"github.com/commercekit/storefront/services/checkoutpaypal"
	"github.com/commercekit/storefront/services/checkoutsquare"
	"github.com/commercekit/storefront/services/gatewaydirectory"
	"github.com/commercekit/storefront/services/orderhistory"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	publisher, publisherCleanup := createPublisher(c, router, nower)
	defer publisherCleanup()

	cartStore, cartCleanup := createCartService(c, router, nower, publisher)
	defer cartCleanup()

	directory, directoryCleanup := createGatewayDirectoryService(c, router, nower)
	defer directoryCleanup()

	squareCollaborator, squareCleanup := createSquareCollaborator(c)
	defer squareCleanup()

	paypalCollaborator, paypalCleanup := createPaypalCollaborator(c)
	defer paypalCleanup()

	checkoutCleanup := createCheckoutService(c, router, cartStore, directory,
		map[checkoutapi.GatewayType]checkoutapi.PaymentCollaborator{
			checkoutapi.GatewaySquare: squareCollaborator,
			checkoutapi.GatewayPayPal: paypalCollaborator,
		}, publisher, nower, uuider)
	defer checkoutCleanup()

	orderHistoryCleanup := createOrderHistoryService(c, router, nower)
	defer orderHistoryCleanup()

	startWebServerBlocking(router)
}

func createPublisher(c context.Context, router *mux.Router, nower mytime.Nower) (mypublisher.Publisher, func()) {
	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	publisher.RegisterEndpoints(c, router)

	err = publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		log.Fatalf("Error creating topic %s: %s", cartevents.TopicName, err)
	}
	err = publisher.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		log.Fatalf("Error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	return publisher, func() {
		publisherCleanup()
		queueCleanup()
		pubsubCleanup()
	}
}

func createCartService(c context.Context, router *mux.Router, nower mytime.Nower, publisher mypublisher.Publisher) (cart.CartStore, func()) {
	cartStore, cleanup, err := mystore.New[cart.Cart](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}

	cartService := cart.NewService(cartStore, nower, publisher)
	cartService.RegisterEndpoints(c, router)

	return cartService.CartStore(), cleanup
}

func createGatewayDirectoryService(c context.Context, router *mux.Router, nower mytime.Nower) (gatewaydirectory.Directory, func()) {
	configStore, cleanup, err := mystore.New[gatewaydirectory.TenantGatewayConfig](c)
	if err != nil {
		log.Fatalf("Error creating gateway config store: %s", err)
	}

	directoryService := gatewaydirectory.NewService(configStore, nower)
	directoryService.RegisterEndpoints(c, router)

	return directoryService.Directory(), cleanup
}

func createSquareCollaborator(c context.Context) (checkoutapi.PaymentCollaborator, func()) {
	vault, cleanup, err := myvault.New[checkoutsquare.Credentials](c)
	if err != nil {
		log.Fatalf("Error creating square vault: %s", err)
	}

	baseURL := checkoutsquare.SandboxBaseURL
	if os.Getenv("SQUARE_LIVE") != "" {
		baseURL = checkoutsquare.ProductionBaseURL
	}

	payer := checkoutsquare.NewPayer(baseURL, myhttpclient.New())
	collaborator := checkoutsquare.NewService(checkoutsquare.Config{
		AccessToken: os.Getenv("SQUARE_ACCESS_TOKEN"),
		LocationID:  os.Getenv("SQUARE_LOCATION_ID"),
	}, payer, vault)

	return collaborator, cleanup
}

func createPaypalCollaborator(c context.Context) (checkoutapi.PaymentCollaborator, func()) {
	vault, cleanup, err := myvault.New[checkoutpaypal.Credentials](c)
	if err != nil {
		log.Fatalf("Error creating paypal vault: %s", err)
	}

	apiBase := paypal.APIBaseSandBox
	if os.Getenv("PAYPAL_LIVE") != "" {
		apiBase = paypal.APIBaseLive
	}

	payer := checkoutpaypal.NewPayer(apiBase)
	collaborator := checkoutpaypal.NewService(checkoutpaypal.Config{
		ClientID: os.Getenv("PAYPAL_CLIENT_ID"),
		Secret:   os.Getenv("PAYPAL_SECRET"),
	}, payer, vault)

	return collaborator, cleanup
}

func createCheckoutService(c context.Context, router *mux.Router, cartStore cart.CartStore,
	directory gatewaydirectory.Directory,
	collaborators map[checkoutapi.GatewayType]checkoutapi.PaymentCollaborator,
	publisher mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) func() {

	sessionStore, cleanup, err := mystore.New[checkout.CheckoutSession](c)
	if err != nil {
		log.Fatalf("Error creating checkout session store: %s", err)
	}

	checkoutService := checkout.NewService(sessionStore, cartStore, directory, collaborators, publisher, nower, uuider)
	checkoutService.RegisterEndpoints(c, router)

	return cleanup
}

func createOrderHistoryService(c context.Context, router *mux.Router, nower mytime.Nower) func() {
	orderStore, storeCleanup, err := mystore.New[orderhistory.Order](c)
	if err != nil {
		log.Fatalf("Error creating order store: %s", err)
	}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}

	orderHistoryService := orderhistory.NewService(orderStore, pubsub, nower)
	orderHistoryService.RegisterEndpoints(c, router)

	err = orderHistoryService.Subscribe(c)
	if err != nil {
		log.Fatalf("Error subscribing order history service: %s", err)
	}

	return func() {
		pubsubCleanup()
		storeCleanup()
	}
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
