package payment

import (
	"context"
	"fmt"
)

// StubGateway is a canned gateway for development and tests.
type StubGateway struct {
	Status    *Status
	StatusErr error
}

func (s *StubGateway) CreateTransaction(ctx context.Context, orderID string, grossAmount int64, customer Customer) (*Checkout, error) {
	return &Checkout{
		Token:       fmt.Sprintf("stub-token-%s", orderID),
		RedirectURL: fmt.Sprintf("https://stub.local/pay/%s", orderID),
	}, nil
}

func (s *StubGateway) CheckStatus(ctx context.Context, orderID string) (*Status, error) {
	if s.StatusErr != nil {
		return nil, s.StatusErr
	}
	if s.Status != nil {
		return s.Status, nil
	}
	return nil, fmt.Errorf("no status for order %s", orderID)
}
