package provider

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		provider ProviderName
		raw      string
		want     CanonicalStatus
	}{
		{"mp pending", ProviderMercadoPago, "pending", StatusPending},
		{"mp in_process", ProviderMercadoPago, "in_process", StatusPending},
		{"mp in_mediation", ProviderMercadoPago, "in_mediation", StatusPending},
		{"mp authorized", ProviderMercadoPago, "authorized", StatusPending},
		{"mp approved", ProviderMercadoPago, "approved", StatusCompleted},
		{"mp rejected", ProviderMercadoPago, "rejected", StatusFailed},
		{"mp cancelled", ProviderMercadoPago, "cancelled", StatusCancelled},
		{"mp refunded", ProviderMercadoPago, "refunded", StatusRefunded},
		{"mp charged_back", ProviderMercadoPago, "charged_back", StatusRefunded},
		{"wompi pending", ProviderWompi, "PENDING", StatusPending},
		{"wompi approved", ProviderWompi, "APPROVED", StatusCompleted},
		{"wompi declined", ProviderWompi, "DECLINED", StatusFailed},
		{"wompi error", ProviderWompi, "ERROR", StatusFailed},
		{"wompi voided", ProviderWompi, "VOIDED", StatusCancelled},
		{"cash pending", ProviderCash, "pending", StatusPending},
		{"cash completed", ProviderCash, "completed", StatusCompleted},
		{"unknown status", ProviderMercadoPago, "something_new", StatusUnknown},
		{"wrong case", ProviderWompi, "approved", StatusUnknown},
		{"unknown provider", ProviderName("stripe"), "approved", StatusUnknown},
		{"empty status", ProviderWompi, "", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.provider, tt.raw); got != tt.want {
				t.Errorf("Normalize(%q, %q) = %q, want %q", tt.provider, tt.raw, got, tt.want)
			}
		})
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		cents  int64
	}{
		{0, 0},
		{1, 100},
		{0.01, 1},
		{19.99, 1999},
		{50000, 5000000},
		{0.005, 1}, // rounds half away from zero
		{123456.78, 12345678},
	}

	for _, tt := range tests {
		if got := ToMinorUnits(tt.amount); got != tt.cents {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tt.amount, got, tt.cents)
		}
	}

	if got := FromMinorUnits(1999); got != 19.99 {
		t.Errorf("FromMinorUnits(1999) = %v, want 19.99", got)
	}
}
