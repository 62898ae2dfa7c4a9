package services

import (
	"context"
	"errors"

	"github.com/nnamdiindu/cara-store/internal/paystack"
	"github.com/nnamdiindu/cara-store/internal/repos"
)

var (
	// ErrGatewayDeclined means initialize came back with status=false.
	// No order is written; the buyer can retry.
	ErrGatewayDeclined = errors.New("payment initialization declined")

	// ErrUnknownReference means a callback arrived for a reference with
	// no local order.
	ErrUnknownReference = errors.New("no order for reference")
)

// Gateway is the slice of the payment client the checkout flow needs.
type Gateway interface {
	Initialize(ctx context.Context, email string, amount float64) (paystack.InitResponse, error)
	Verify(ctx context.Context, reference string) (paystack.VerifyResponse, error)
}

type CheckoutService struct {
	Collections *repos.CollectionRepo
	Orders      *repos.OrderRepo
	Gateway     Gateway
}

func NewCheckoutService(collections *repos.CollectionRepo, orders *repos.OrderRepo, gw Gateway) *CheckoutService {
	return &CheckoutService{Collections: collections, Orders: orders, Gateway: gw}
}

// StartResult carries what the handler needs to redirect the buyer to the
// gateway's hosted payment page.
type StartResult struct {
	OrderID          int64
	Reference        string
	Amount           float64
	AuthorizationURL string
}

// Start computes the total for a collection purchase, initializes the
// gateway transaction and records a pending order under the reference the
// gateway issued. The order is written only after a successful init, so a
// declined init leaves no local state.
func (s *CheckoutService) Start(ctx context.Context, userID int64, email string, collectionID int64, quantity int) (StartResult, error) {
	col, err := s.Collections.Get(collectionID)
	if err != nil {
		return StartResult{}, err
	}
	if quantity < 1 {
		quantity = 1
	}
	total := col.Amount * float64(quantity)

	init, err := s.Gateway.Initialize(ctx, email, total)
	if err != nil {
		return StartResult{}, err
	}
	if !init.Status {
		return StartResult{}, ErrGatewayDeclined
	}

	orderID, err := s.Orders.Create(collectionID, email, total, init.Data.Reference, userID)
	if err != nil {
		return StartResult{}, err
	}
	return StartResult{
		OrderID:          orderID,
		Reference:        init.Data.Reference,
		Amount:           total,
		AuthorizationURL: init.Data.AuthorizationURL,
	}, nil
}

// ReconcileResult reports how a callback settled.
type ReconcileResult struct {
	Confirmed    bool
	Transitioned bool // false when the order was already settled
	Transaction  paystack.VerifyData
}

// Reconcile handles the gateway redirecting the buyer back with a
// reference. It re-verifies with the gateway and settles the matching
// order. Both settle paths are guarded updates, so replaying a callback is
// a no-op rather than a second write.
func (s *CheckoutService) Reconcile(ctx context.Context, reference string) (ReconcileResult, error) {
	verify, err := s.Gateway.Verify(ctx, reference)
	if err != nil {
		return ReconcileResult{}, err
	}

	if verify.Status && verify.Data.Status == "success" {
		moved, err := s.Orders.MarkCompleted(reference)
		if err != nil {
			return ReconcileResult{}, err
		}
		if !moved {
			// Either a replayed callback or a reference we never issued.
			if _, err := s.Orders.ByReference(reference); err != nil {
				if repos.IsNotFound(err) {
					return ReconcileResult{}, ErrUnknownReference
				}
				return ReconcileResult{}, err
			}
		}
		return ReconcileResult{Confirmed: true, Transitioned: moved, Transaction: verify.Data}, nil
	}

	// Gateway says not paid: mark a pending order failed if one exists.
	moved, err := s.Orders.MarkFailed(reference)
	if err != nil {
		return ReconcileResult{}, err
	}
	return ReconcileResult{Confirmed: false, Transitioned: moved, Transaction: verify.Data}, nil
}
