package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitcheck/internal/models"
	"github.com/mmynk/splitcheck/internal/storage"
)

// AddFriend appends a friend built by build to the session.
func (s *Store) AddFriend(ctx context.Context, sessionID string, build storage.JoinFunc) (*models.Friend, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, s.bind(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`+s.dialect.LockRow), sessionID)
	session, err := scanSession(row, sessionID)
	if err != nil {
		return nil, err
	}

	var joined int
	err = tx.QueryRowContext(ctx, s.bind("SELECT COUNT(*) FROM friends WHERE session_id = ?"), sessionID).Scan(&joined)
	if err != nil {
		return nil, fmt.Errorf("failed to count friends: %w", err)
	}

	friend, err := build(session, joined)
	if err != nil {
		return nil, err
	}

	// Generate IDs if not set
	friend.SessionID = sessionID
	if friend.ID == "" {
		friend.ID = uuid.New().String()
	}
	if friend.JoinedAt.IsZero() {
		friend.JoinedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx, s.bind(
		`INSERT INTO friends (id, session_id, position, name, payment_method, has_paid,
		 subtotal, tax_amount, service_amount, delivery_share, total_amount, joined_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		friend.ID, sessionID, joined, friend.Name, string(friend.PaymentMethod), friend.HasPaid,
		friend.Subtotal, friend.TaxAmount, friend.ServiceAmount, friend.DeliveryShare, friend.TotalAmount,
		friend.JoinedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert friend: %w", err)
	}

	// Insert products in submission order
	for i := range friend.Products {
		product := &friend.Products[i]
		if product.ID == "" {
			product.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx, s.bind(
			`INSERT INTO products (id, friend_id, session_id, position, product_name, unit_price, quantity)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`),
			product.ID, friend.ID, sessionID, i, product.ProductName, product.UnitPrice, product.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert product: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, s.bind("UPDATE sessions SET updated_at = ? WHERE id = ?"),
		friend.JoinedAt.UnixMilli(), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return friend, nil
}

// ListFriends retrieves all friends of a session in join order.
func (s *Store) ListFriends(ctx context.Context, sessionID string) ([]models.Friend, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(
		`SELECT id, name, payment_method, has_paid, subtotal, tax_amount, service_amount,
		 delivery_share, total_amount, joined_at
		 FROM friends WHERE session_id = ? ORDER BY position`), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	defer rows.Close()

	friends := []models.Friend{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			friend   models.Friend
			method   string
			joinedAt int64
		)
		if err := rows.Scan(&friend.ID, &friend.Name, &method, &friend.HasPaid, &friend.Subtotal,
			&friend.TaxAmount, &friend.ServiceAmount, &friend.DeliveryShare, &friend.TotalAmount, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friend.SessionID = sessionID
		friend.PaymentMethod = models.PaymentMethod(method)
		friend.JoinedAt = time.UnixMilli(joinedAt).UTC()
		friend.Products = []models.Product{}

		index[friend.ID] = len(friends)
		friends = append(friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	rows.Close()

	if len(friends) == 0 {
		return friends, nil
	}

	// Load every product of the session in one query and attach by friend
	productRows, err := s.db.QueryContext(ctx, s.bind(
		`SELECT friend_id, id, product_name, unit_price, quantity
		 FROM products WHERE session_id = ? ORDER BY friend_id, position`), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer productRows.Close()

	for productRows.Next() {
		var (
			friendID string
			product  models.Product
		)
		if err := productRows.Scan(&friendID, &product.ID, &product.ProductName, &product.UnitPrice, &product.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		i, ok := index[friendID]
		if !ok {
			continue
		}
		friends[i].Products = append(friends[i].Products, product)
	}
	if err := productRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return friends, nil
}

// SetFriendPaid updates a friend's payment flag.
func (s *Store) SetFriendPaid(ctx context.Context, sessionID, friendID string, hasPaid bool) error {
	result, err := s.db.ExecContext(ctx, s.bind(
		"UPDATE friends SET has_paid = ? WHERE id = ? AND session_id = ?"),
		hasPaid, friendID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("friend %s in session %s: %w", friendID, sessionID, storage.ErrNotFound)
	}

	return nil
}
