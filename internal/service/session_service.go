package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitcheck/internal/calculator"
	"github.com/mmynk/splitcheck/internal/images"
	"github.com/mmynk/splitcheck/internal/metrics"
	"github.com/mmynk/splitcheck/internal/models"
	"github.com/mmynk/splitcheck/internal/storage"
)

// CreateSessionParams are the initiator's inputs for a new bill session.
type CreateSessionParams struct {
	TotalOrderAmount  float64  `json:"totalOrderAmount" validate:"gt=0,lte=1000000000000"`
	TaxPercentage     *float64 `json:"taxPercentage" validate:"omitnil,gte=0,lte=100"`
	ServicePercentage *float64 `json:"servicePercentage" validate:"omitnil,gte=0,lte=100"`
	DeliveryFee       *float64 `json:"deliveryFee" validate:"omitnil,gte=0,lte=1000000000000"`
	NumberOfFriends   *int     `json:"numberOfFriends" validate:"omitnil,gte=1"`
	InstaPayURL       string   `json:"instaPayURL" validate:"omitempty,url"`

	// BillImage is the raw uploaded photo, if any.
	BillImage io.Reader `json:"-"`
}

// SessionService implements the session ledger: create, read, delete and
// the on-demand payment summary.
type SessionService struct {
	store    storage.Store
	images   *images.Uploader
	metrics  *metrics.Metrics
	locks    *SessionLocks
	validate *validator.Validate
}

// NewSessionService creates a SessionService. images may be nil, in which
// case sessions with a bill image are rejected.
func NewSessionService(store storage.Store, uploader *images.Uploader, m *metrics.Metrics, locks *SessionLocks) *SessionService {
	return &SessionService{
		store:    store,
		images:   uploader,
		metrics:  m,
		locks:    locks,
		validate: newValidator(),
	}
}

// SessionLink returns the join URL for a session, or "" when the client's
// origin is unknown.
func SessionLink(baseURL, sessionID string) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/join/" + sessionID
}

// CreateSession validates the parameters, stores the bill image and persists
// the session. baseURL is the web client's origin used for the join link.
func (s *SessionService) CreateSession(ctx context.Context, params CreateSessionParams, baseURL string) (*models.Session, error) {
	params.InstaPayURL = strings.TrimSpace(params.InstaPayURL)
	if err := s.validate.Struct(params); err != nil {
		slog.Debug("CreateSession validation failed", "error", err)
		return nil, fmt.Errorf("%w: %s", ErrInvalidSession, describeValidation(err))
	}

	session := &models.Session{
		TotalOrderAmount:  params.TotalOrderAmount,
		TaxPercentage:     params.TaxPercentage,
		ServicePercentage: params.ServicePercentage,
		DeliveryFee:       params.DeliveryFee,
		NumberOfFriends:   params.NumberOfFriends,
		InstaPayURL:       params.InstaPayURL,
	}

	if params.BillImage != nil {
		if s.images == nil {
			return nil, fmt.Errorf("%w: bill images are not supported", ErrInvalidSession)
		}
		stored, err := s.images.Upload(ctx, params.BillImage)
		if err != nil {
			return nil, err
		}
		session.BillImage = stored.URL
		session.BillImageKey = stored.Key
	}

	// Save to storage (generates ID and timestamps)
	if err := s.store.CreateSession(ctx, session); err != nil {
		s.discardImage(ctx, session)
		return nil, err
	}

	session.SessionLink = SessionLink(baseURL, session.ID)
	s.metrics.SessionCreated()
	slog.Info("Session created",
		"session_id", session.ID,
		"total", session.TotalOrderAmount,
		"expected_friends", session.ExpectedFriends(),
		"has_image", session.BillImage != "",
	)
	return session, nil
}

// GetSession returns the session with its friends.
func (s *SessionService) GetSession(ctx context.Context, sessionID, baseURL string) (*models.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	friends, err := s.store.ListFriends(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Friends = friends
	session.SessionLink = SessionLink(baseURL, session.ID)
	return session, nil
}

// DeleteSession removes the session and everything under it. The bill image
// is removed afterwards; a failure there is logged, not returned.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}

	s.discardImage(ctx, session)
	s.metrics.SessionDeleted()
	slog.Info("Session deleted", "session_id", sessionID)
	return nil
}

// Summary folds the session's friends into payment totals. It always reads
// the current state; nothing is cached.
func (s *SessionService) Summary(ctx context.Context, sessionID string) (*models.Summary, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	friends, err := s.store.ListFriends(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	forSummary := make([]calculator.FriendForSummary, len(friends))
	for i, f := range friends {
		forSummary[i] = calculator.FriendForSummary{
			TotalAmount:   f.TotalAmount,
			PaymentMethod: f.PaymentMethod,
			HasPaid:       f.HasPaid,
		}
	}
	totals := calculator.Summarize(session.TotalOrderAmount, forSummary)

	slog.Debug("Summary computed",
		"session_id", sessionID,
		"friends", totals.FriendsCount,
		"paid_instapay", totals.PaidInstaPay,
		"paid_cash", totals.PaidCash,
		"unpaid", totals.Unpaid,
	)

	return &models.Summary{
		SessionID:            session.ID,
		TotalOrderAmount:     session.TotalOrderAmount,
		TotalPaidInstaPay:    totals.PaidInstaPay,
		TotalPaidCash:        totals.PaidCash,
		TotalUnpaid:          totals.Unpaid,
		TotalCollected:       totals.Collected,
		RemainingFromOrder:   totals.RemainingFromOrder,
		FriendsCount:         totals.FriendsCount,
		ExpectedFriendsCount: session.ExpectedFriends(),
		BillImage:            session.BillImage,
		Friends:              friends,
	}, nil
}

func (s *SessionService) discardImage(ctx context.Context, session *models.Session) {
	if s.images == nil || session.BillImageKey == "" {
		return
	}
	if err := s.images.Delete(ctx, session.BillImageKey); err != nil {
		slog.Warn("Failed to delete bill image", "session_id", session.ID, "key", session.BillImageKey, "error", err)
	}
}
