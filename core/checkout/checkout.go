// Package checkout turns a priced course into an external checkout session and
// reconciles it with the enrollment ledger.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/user"
)

var hundred = decimal.NewFromInt(100)

type (
	// Gateway is the external payment processor.
	Gateway interface {
		// Name identifies the gateway; it is stored as the payment method.
		Name() string
		CreateProduct(ctx context.Context, name string) (productID string, err error)
		CreatePrice(ctx context.Context, amount int64, currency, productID string) (priceID string, err error)
		CreateSession(ctx context.Context, params SessionParams) (Session, error)
	}

	// SessionParams describes a checkout session holding a single line item.
	SessionParams struct {
		PriceID    string
		Quantity   int64
		SuccessURL string
		CancelURL  string
	}

	Session struct {
		ID  string
		URL string
	}
)

// PriceSubunits converts an amount to the smallest currency subunit, truncating extra decimals.
func PriceSubunits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}

// Orchestrator runs the checkout of a course. It neither retries nor de-duplicates:
// every call opens a new product, price and session on the gateway.
type Orchestrator struct {
	gateway Gateway
	ledger  enrollment.Service
	conf    core.PaymentConfig
}

func NewOrchestrator(gateway Gateway, ledger enrollment.Service, conf *core.Config) *Orchestrator {
	return &Orchestrator{
		gateway: gateway,
		ledger:  ledger,
		conf:    conf.Payment,
	}
}

// Checkout records a payment for actor on c, opens a gateway checkout session for it and attaches
// the session to the payment. When a gateway call fails the payment is left without a session.
func (o *Orchestrator) Checkout(ctx context.Context, actor user.User, c course.Course) (enrollment.Payment, error) {
	p, err := o.ledger.RecordPayment(ctx, actor.ID, c, o.gateway.Name())
	if err != nil {
		return enrollment.Payment{}, errors.Wrap(err, "recording payment")
	}

	productID, err := o.gateway.CreateProduct(ctx, c.Name)
	if err != nil {
		return p, errors.Wrap(err, "creating product")
	}
	priceID, err := o.gateway.CreatePrice(ctx, PriceSubunits(p.Amount), o.conf.Currency, productID)
	if err != nil {
		return p, errors.Wrap(err, "creating price")
	}
	sess, err := o.gateway.CreateSession(ctx, SessionParams{
		PriceID:    priceID,
		Quantity:   1,
		SuccessURL: o.successURL(c.ID),
		CancelURL:  o.conf.CancelURL,
	})
	if err != nil {
		return p, errors.Wrap(err, "creating session")
	}

	p, err = o.ledger.AttachCheckoutSession(ctx, p.ID, sess.ID, sess.URL)
	return p, errors.Wrap(err, "attaching checkout session")
}

func (o *Orchestrator) successURL(courseID int) string {
	if strings.Contains(o.conf.SuccessURL, "%d") {
		return fmt.Sprintf(o.conf.SuccessURL, courseID)
	}
	return o.conf.SuccessURL
}
