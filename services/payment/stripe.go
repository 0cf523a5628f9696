package paymentsvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/checkout"
)

type stripeGateway struct {
	api *client.API
}

var _ checkout.Gateway = (*stripeGateway)(nil)

func NewStripeGateway(conf *core.Config) checkout.Gateway {
	api := new(client.API)
	api.Init(conf.Payment.StripeSecretKey, nil)
	return &stripeGateway{api: api}
}

func (gw *stripeGateway) Name() string { return ProviderStripe }

func (gw *stripeGateway) CreateProduct(ctx context.Context, name string) (string, error) {
	params := &stripe.ProductParams{Name: stripe.String(name)}
	params.Context = ctx
	p, err := gw.api.Products.New(params)
	if err != nil {
		return "", errors.Wrap(err, "stripe: creating product")
	}
	return p.ID, nil
}

func (gw *stripeGateway) CreatePrice(ctx context.Context, amount int64, currency, productID string) (string, error) {
	params := &stripe.PriceParams{
		Currency:   stripe.String(currency),
		UnitAmount: stripe.Int64(amount),
		Product:    stripe.String(productID),
	}
	params.Context = ctx
	p, err := gw.api.Prices.New(params)
	if err != nil {
		return "", errors.Wrap(err, "stripe: creating price")
	}
	return p.ID, nil
}

func (gw *stripeGateway) CreateSession(ctx context.Context, sp checkout.SessionParams) (checkout.Session, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(sp.SuccessURL),
		CancelURL:          stripe.String(sp.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(sp.PriceID), Quantity: stripe.Int64(sp.Quantity)},
		},
	}
	params.Context = ctx
	s, err := gw.api.CheckoutSessions.New(params)
	if err != nil {
		return checkout.Session{}, errors.Wrap(err, "stripe: creating checkout session")
	}
	return checkout.Session{ID: s.ID, URL: s.URL}, nil
}
