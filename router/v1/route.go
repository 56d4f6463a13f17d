package v1

import (
	"github.com/andeanlabs/pagoflow/handler"
	"github.com/andeanlabs/pagoflow/infra/config"
	"github.com/go-chi/chi/v5"
)

// Routes registers all v1 API routes
func Routes(r chi.Router, paymentService handler.PaymentServiceInterface) {
	paymentHandler := handler.NewPaymentHandler(paymentService, config.App().Validator)

	// Payment routes
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", paymentHandler.CreatePayment)

		// Simulated-mode confirmation, registered before the provider routes
		// so "simulated" never matches as a provider name.
		r.Post("/simulated/{paymentID}/confirm", paymentHandler.ConfirmSimulatedPayment)

		r.Get("/{provider}/{paymentID}", paymentHandler.GetPaymentStatus)
		r.Post("/{provider}/{paymentID}/refund", paymentHandler.Refund)
	})

	// PSE financial institutions
	r.Get("/banks", paymentHandler.ListBanks)
}
