package paymentsvc

import (
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/checkout"
)

// providers
const (
	ProviderConsole  = "console"
	ProviderStripe   = "stripe"
	ProviderMidtrans = "midtrans"
)

// NewGateway returns the gateway of the configured payment provider.
func NewGateway(conf *core.Config, logger core.Logger) (checkout.Gateway, error) {
	switch conf.Payment.Provider {
	case ProviderConsole, "":
		return NewConsoleGateway(logger), nil
	case ProviderStripe:
		if conf.Payment.StripeSecretKey == "" {
			return nil, errors.New("stripe secret key is not set")
		}
		return NewStripeGateway(conf), nil
	case ProviderMidtrans:
		if conf.Payment.MidtransServerKey == "" {
			return nil, errors.New("midtrans server key is not set")
		}
		return NewMidtransGateway(conf), nil
	default:
		return nil, errors.Errorf("unknown payment provider %q", conf.Payment.Provider)
	}
}
