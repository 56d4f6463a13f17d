package wompi

import "github.com/andeanlabs/pagoflow/provider"

func init() {
	provider.Register(provider.ProviderWompi, NewProvider)
}
