// Package paymentsvc implements checkout.Gateway on top of the supported payment processors.
package paymentsvc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/checkout"
)

// consoleGateway logs the calls a real gateway would receive and hands out random ids.
type consoleGateway struct {
	logger core.Logger
}

var _ checkout.Gateway = (*consoleGateway)(nil)

func NewConsoleGateway(logger core.Logger) checkout.Gateway {
	return &consoleGateway{logger: logger}
}

func (gw *consoleGateway) Name() string { return ProviderConsole }

func (gw *consoleGateway) CreateProduct(_ context.Context, name string) (string, error) {
	id := "prod_" + uuid.NewString()
	gw.logger.Info(fmt.Sprintf("payment: product %s created: %q", id, name))
	return id, nil
}

func (gw *consoleGateway) CreatePrice(_ context.Context, amount int64, currency, productID string) (string, error) {
	id := "price_" + uuid.NewString()
	gw.logger.Info(fmt.Sprintf("payment: price %s created: %d %s for %s", id, amount, currency, productID))
	return id, nil
}

func (gw *consoleGateway) CreateSession(_ context.Context, params checkout.SessionParams) (checkout.Session, error) {
	id := "cs_" + uuid.NewString()
	sess := checkout.Session{
		ID:  id,
		URL: params.SuccessURL + "?session_id=" + id,
	}
	gw.logger.Info(fmt.Sprintf("payment: session %s created: %d x %s", id, params.Quantity, params.PriceID))
	return sess, nil
}
