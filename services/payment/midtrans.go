package paymentsvc

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/checkout"
)

type midtransPrice struct {
	amount    int64 // subunits
	productID string
}

// midtransGateway opens Snap transactions. Snap has no product or price objects:
// they are kept in a local catalogue until the session gets created.
type midtransGateway struct {
	client snap.Client

	mu       sync.Mutex
	products map[string]string // {id: name}
	prices   map[string]midtransPrice
}

var _ checkout.Gateway = (*midtransGateway)(nil)

func NewMidtransGateway(conf *core.Config) checkout.Gateway {
	gw := &midtransGateway{
		products: make(map[string]string),
		prices:   make(map[string]midtransPrice),
	}
	env := midtrans.Sandbox
	if conf.Payment.MidtransProduction {
		env = midtrans.Production
	}
	gw.client.New(conf.Payment.MidtransServerKey, env)
	return gw
}

func (gw *midtransGateway) Name() string { return ProviderMidtrans }

func (gw *midtransGateway) CreateProduct(_ context.Context, name string) (string, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	id := uuid.NewString()
	gw.products[id] = name
	return id, nil
}

func (gw *midtransGateway) CreatePrice(_ context.Context, amount int64, _, productID string) (string, error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if _, ok := gw.products[productID]; !ok {
		return "", errors.Errorf("midtrans: unknown product %q", productID)
	}
	id := uuid.NewString()
	gw.prices[id] = midtransPrice{amount: amount, productID: productID}
	return id, nil
}

func (gw *midtransGateway) CreateSession(_ context.Context, sp checkout.SessionParams) (checkout.Session, error) {
	gw.mu.Lock()
	price, ok := gw.prices[sp.PriceID]
	name := gw.products[price.productID]
	delete(gw.prices, sp.PriceID)
	delete(gw.products, price.productID)
	gw.mu.Unlock()
	if !ok {
		return checkout.Session{}, errors.Errorf("midtrans: unknown price %q", sp.PriceID)
	}

	unit := price.amount / 100 // snap expects whole currency units
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  uuid.NewString(),
			GrossAmt: unit * sp.Quantity,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    sp.PriceID,
				Name:  truncate(name, 50),
				Price: unit,
				Qty:   int32(sp.Quantity),
			},
		},
		Callbacks: &snap.Callbacks{Finish: sp.SuccessURL},
	}

	resp, mErr := gw.client.CreateTransaction(req)
	if mErr != nil {
		return checkout.Session{}, errors.Wrap(mErr, "midtrans: creating transaction")
	}
	return checkout.Session{ID: resp.Token, URL: resp.RedirectURL}, nil
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
