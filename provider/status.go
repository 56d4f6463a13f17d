package provider

// CanonicalStatus is the provider-independent payment-state vocabulary every
// provider-native status normalizes into.
type CanonicalStatus string

const (
	StatusPending   CanonicalStatus = "pending"
	StatusCompleted CanonicalStatus = "completed"
	StatusFailed    CanonicalStatus = "failed"
	StatusRefunded  CanonicalStatus = "refunded"
	StatusCancelled CanonicalStatus = "cancelled"
	StatusUnknown   CanonicalStatus = "unknown"
)

// statusTable maps each provider's native status vocabulary onto the
// canonical set. Keyed first by provider name, then by the native string.
var statusTable = map[ProviderName]map[string]CanonicalStatus{
	ProviderMercadoPago: {
		"pending":      StatusPending,
		"in_process":   StatusPending,
		"in_mediation": StatusPending,
		"authorized":   StatusPending,
		"approved":     StatusCompleted,
		"rejected":     StatusFailed,
		"cancelled":    StatusCancelled,
		"refunded":     StatusRefunded,
		"charged_back": StatusRefunded,
	},
	ProviderWompi: {
		"PENDING":  StatusPending,
		"APPROVED": StatusCompleted,
		"DECLINED": StatusFailed,
		"ERROR":    StatusFailed,
		"VOIDED":   StatusCancelled,
	},
	ProviderCash: {
		"pending":   StatusPending,
		"completed": StatusCompleted,
		"cancelled": StatusCancelled,
	},
}

// Normalize maps a provider-native status string to its canonical value.
// Total and pure: any provider or status absent from the table yields
// StatusUnknown, never an error.
func Normalize(provider ProviderName, rawStatus string) CanonicalStatus {
	table, ok := statusTable[provider]
	if !ok {
		return StatusUnknown
	}
	status, ok := table[rawStatus]
	if !ok {
		return StatusUnknown
	}
	return status
}
