// Package pagoflow unifies heterogeneous payment gateways behind a single
// provider-agnostic API.
//
// Two live gateways are supported: Mercado Pago (redirect-based checkout
// preferences) and Wompi (direct PSE, Nequi and card transactions), plus a
// cash-on-delivery pseudo-provider. When neither gateway is configured the
// service runs in simulated mode: payments are synthesized against an
// in-process store so the surrounding checkout flow keeps working without
// merchant credentials.
//
// Layout:
//
//	cmd/        server bootstrap
//	provider/   core types, facade, registry and per-gateway adapters
//	handler/    HTTP handlers
//	router/     route wiring
//	infra/      config, logging, metrics, response helpers
package pagoflow
