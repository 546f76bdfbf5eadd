package payment

import (
	"context"
	"errors"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

// MidtransGateway drives Midtrans Snap for checkout and the Core API for
// server-side status lookup.
type MidtransGateway struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtransGateway(cfg MidtransConfig) *MidtransGateway {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}
	g := &MidtransGateway{}
	g.snap.New(cfg.ServerKey, env)
	g.core.New(cfg.ServerKey, env)
	return g
}

func (g *MidtransGateway) CreateTransaction(ctx context.Context, orderID string, grossAmount int64, customer Customer) (*Checkout, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: grossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customer.Name,
			Email: customer.Email,
		},
	}
	resp, errSnap := g.snap.CreateTransaction(req)
	if errSnap != nil {
		return nil, errors.New(errSnap.GetMessage())
	}
	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// CheckStatus asks Midtrans for the authoritative order status. The SDK call
// has no context support, so it runs on a goroutine and the ctx deadline wins;
// the caller falls back to the raw webhook payload on timeout.
func (g *MidtransGateway) CheckStatus(ctx context.Context, orderID string) (*Status, error) {
	type result struct {
		res *coreapi.TransactionStatusResponse
		err error
	}
	ch := make(chan result, 1)
	go func() {
		res, apiErr := g.core.CheckTransaction(orderID)
		if apiErr != nil {
			ch <- result{err: errors.New(apiErr.GetMessage())}
			return
		}
		ch <- result{res: res}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return &Status{
			OrderID:           r.res.OrderID,
			TransactionStatus: r.res.TransactionStatus,
			PaymentType:       r.res.PaymentType,
			StatusCode:        r.res.StatusCode,
			GrossAmount:       r.res.GrossAmount,
			FraudStatus:       r.res.FraudStatus,
		}, nil
	}
}
