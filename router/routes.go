package router

import (
	"github.com/andeanlabs/pagoflow/handler"
	"github.com/andeanlabs/pagoflow/infra/config"
	v1 "github.com/andeanlabs/pagoflow/router/v1"
	"github.com/go-chi/chi/v5"
)

// Routes registers the versioned API routes and the webhook endpoints.
// Webhooks live outside /v1: their paths are part of the contract registered
// with the gateways.
func Routes(r chi.Router, paymentService handler.PaymentServiceInterface) {
	paymentHandler := handler.NewPaymentHandler(paymentService, config.App().Validator)

	r.Route("/v1", func(r chi.Router) {
		v1.Routes(r, paymentService)
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/{provider}", paymentHandler.Webhook)
	})
}
