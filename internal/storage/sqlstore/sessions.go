package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitcheck/internal/models"
	"github.com/mmynk/splitcheck/internal/storage"
)

const sessionColumns = `id, total_order_amount, tax_percentage, service_percentage, delivery_fee,
	number_of_friends, insta_pay_url, bill_image, bill_image_key, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateSession persists a new session to the database.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	// Generate ID and timestamps if not set
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = session.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, s.bind(
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		session.ID, session.TotalOrderAmount,
		nullFloat(session.TaxPercentage), nullFloat(session.ServicePercentage), nullFloat(session.DeliveryFee),
		nullInt(session.NumberOfFriends), session.InstaPayURL, session.BillImage, session.BillImageKey,
		session.CreatedAt.UnixMilli(), session.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, s.bind(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`), sessionID)
	return scanSession(row, sessionID)
}

// DeleteSession removes the session, its friends and their products.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.bind("DELETE FROM products WHERE session_id = ?"), sessionID); err != nil {
		return fmt.Errorf("failed to delete products: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.bind("DELETE FROM friends WHERE session_id = ?"), sessionID); err != nil {
		return fmt.Errorf("failed to delete friends: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.bind("DELETE FROM sessions WHERE id = ?"), sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanSession(row rowScanner, sessionID string) (*models.Session, error) {
	session := &models.Session{}
	var (
		tax, service, delivery sql.NullFloat64
		friends                sql.NullInt64
		createdAt, updatedAt   int64
	)

	err := row.Scan(&session.ID, &session.TotalOrderAmount, &tax, &service, &delivery,
		&friends, &session.InstaPayURL, &session.BillImage, &session.BillImageKey, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.TaxPercentage = floatPtr(tax)
	session.ServicePercentage = floatPtr(service)
	session.DeliveryFee = floatPtr(delivery)
	session.NumberOfFriends = intPtr(friends)
	session.CreatedAt = time.UnixMilli(createdAt).UTC()
	session.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	return session, nil
}
