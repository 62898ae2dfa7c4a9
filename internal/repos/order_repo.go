package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/nnamdiindu/cara-store/internal/domain"
)

var ErrNotFound = errors.New("record not found")

func rowsOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create inserts a pending order for a gateway reference.
func (r *OrderRepo) Create(collectionID int64, email string, amount float64, reference string, userID int64) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO orders(email, amount, reference, status, user_id, collection_id)
	  VALUES(?, ?, ?, 'pending', ?, ?)
	`, email, amount, reference, userID, collectionID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *OrderRepo) ByReference(reference string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
	  SELECT id, email, amount, reference, status, COALESCE(paid_at,'') AS paid_at,
	         user_id, collection_id, created_at
	  FROM orders WHERE reference = ?
	`, reference)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Summary row for the order-history page.
type OrderSummary struct {
	ID        int64   `db:"id"`
	BrandName string  `db:"brand_name"`
	Amount    float64 `db:"amount"`
	Reference string  `db:"reference"`
	Status    string  `db:"status"`
	CreatedAt string  `db:"created_at"`
}

func (r *OrderRepo) ListByUser(userID int64) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
	  SELECT o.id, c.brand_name, o.amount, o.reference, o.status, o.created_at
	  FROM orders o
	  JOIN collections c ON c.id = o.collection_id
	  WHERE o.user_id = ?
	  ORDER BY datetime(o.created_at) DESC
	`, userID)
	return out, err
}

// MarkCompleted transitions a pending order to completed and stamps
// paid_at. The WHERE clause guards the transition: a reference that is
// unknown or already settled changes nothing, and the return value says
// whether a row actually moved.
func (r *OrderRepo) MarkCompleted(reference string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders
	  SET status='completed', paid_at=CURRENT_TIMESTAMP
	  WHERE reference = ? AND status = 'pending'
	`, reference)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkFailed transitions a pending order to failed. Same guard as
// MarkCompleted; settled orders are never rewritten.
func (r *OrderRepo) MarkFailed(reference string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders SET status='failed' WHERE reference = ? AND status = 'pending'
	`, reference)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
