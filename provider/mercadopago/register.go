package mercadopago

import "github.com/andeanlabs/pagoflow/provider"

func init() {
	provider.Register(provider.ProviderMercadoPago, NewProvider)
}
