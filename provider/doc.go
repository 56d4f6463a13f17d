// Package provider defines the unified payment abstraction: the
// PaymentProvider interface, the request/result types shared by every
// gateway adapter, canonical status normalization, the simulated-payment
// store and the PaymentService orchestration facade.
//
// Adapter packages (mercadopago, wompi) register themselves into
// DefaultRegistry from init, so importing an adapter for side effects is
// enough to make it available:
//
//	import _ "github.com/andeanlabs/pagoflow/provider/mercadopago"
package provider
