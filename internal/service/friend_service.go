package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitcheck/internal/calculator"
	"github.com/mmynk/splitcheck/internal/metrics"
	"github.com/mmynk/splitcheck/internal/models"
	"github.com/mmynk/splitcheck/internal/storage"
)

// ProductInput is one submitted line item, before filtering.
// Items that fail the filter (blank name, price <= 0, quantity < 1) are
// dropped, not rejected; the bounds only cap what a single line may hold.
type ProductInput struct {
	ProductName string  `json:"productName" validate:"max=200"`
	UnitPrice   float64 `json:"unitPrice" validate:"lte=1000000000"`
	Quantity    int     `json:"quantity" validate:"lte=10000"`
}

// JoinParams are a friend's inputs when joining a session.
type JoinParams struct {
	Name          string               `json:"name" validate:"max=100"`
	Products      []ProductInput       `json:"products" validate:"max=200,dive"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// FriendService handles joining a session and payment status updates.
type FriendService struct {
	store    storage.Store
	metrics  *metrics.Metrics
	locks    *SessionLocks
	validate *validator.Validate
}

// NewFriendService creates a FriendService. locks must be the table shared
// with the SessionService.
func NewFriendService(store storage.Store, m *metrics.Metrics, locks *SessionLocks) *FriendService {
	return &FriendService{store: store, metrics: m, locks: locks, validate: newValidator()}
}

// Join validates the order, computes the friend's contribution from the
// session's fees and stores it. Joins to the same session run one at a time
// so the delivery split sees a consistent friend count.
func (s *FriendService) Join(ctx context.Context, sessionID string, params JoinParams) (*models.Friend, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, calculator.ErrMissingName
	}
	if err := s.validate.Struct(params); err != nil {
		slog.Debug("Join validation failed", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrInvalidFriend, describeValidation(err))
	}

	products := make([]calculator.Product, len(params.Products))
	for i, p := range params.Products {
		products[i] = calculator.Product{Name: p.ProductName, UnitPrice: p.UnitPrice, Quantity: p.Quantity}
	}
	accepted := calculator.FilterProducts(products)
	if len(accepted) == 0 {
		return nil, calculator.ErrNoValidProducts
	}

	method := params.PaymentMethod
	if !method.Valid() {
		method = models.PaymentCash
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	friend, err := s.store.AddFriend(ctx, sessionID, func(session *models.Session, joined int) (*models.Friend, error) {
		sharers := calculator.DeliverySharers(session.ExpectedFriends(), joined)
		c, err := calculator.CalculateContribution(name, accepted, feesOf(session), sharers)
		if err != nil {
			return nil, err
		}

		slog.Debug("Contribution calculated",
			"session_id", session.ID,
			"name", name,
			"joined_before", joined,
			"sharers", sharers,
			"subtotal", c.Subtotal,
			"tax", c.Tax,
			"service", c.Service,
			"delivery", c.Delivery,
			"total", c.Total,
		)

		items := make([]models.Product, len(c.Products))
		for i, p := range c.Products {
			items[i] = models.Product{ProductName: p.Name, UnitPrice: p.UnitPrice, Quantity: p.Quantity}
		}
		return &models.Friend{
			Name:          name,
			Products:      items,
			PaymentMethod: method,
			Subtotal:      c.Subtotal,
			TaxAmount:     c.Tax,
			ServiceAmount: c.Service,
			DeliveryShare: c.Delivery,
			TotalAmount:   c.Total,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FriendJoined(friend.PaymentMethod.String())
	slog.Info("Friend joined",
		"session_id", sessionID,
		"friend_id", friend.ID,
		"payment_method", friend.PaymentMethod,
		"total", friend.TotalAmount,
	)
	return friend, nil
}

// UpdatePayment sets a friend's paid flag. Repeating the same value is a
// no-op; concurrent updates to one friend resolve last-write-wins.
func (s *FriendService) UpdatePayment(ctx context.Context, sessionID, friendID string, hasPaid bool) error {
	if err := s.store.SetFriendPaid(ctx, sessionID, friendID, hasPaid); err != nil {
		return err
	}

	s.metrics.PaymentUpdated(hasPaid)
	slog.Info("Payment updated", "session_id", sessionID, "friend_id", friendID, "has_paid", hasPaid)
	return nil
}

func feesOf(session *models.Session) calculator.Fees {
	var fees calculator.Fees
	if session.TaxPercentage != nil {
		fees.TaxPercentage = *session.TaxPercentage
	}
	if session.ServicePercentage != nil {
		fees.ServicePercentage = *session.ServicePercentage
	}
	if session.DeliveryFee != nil {
		fees.DeliveryFee = *session.DeliveryFee
	}
	return fees
}
