// Package handler contains the HTTP handlers for the payment API: payment
// creation, status retrieval, refunds, PSE bank listing, simulated-payment
// confirmation and gateway webhooks.
package handler
