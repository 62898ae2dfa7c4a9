package domain

// Order statuses. An order is created pending and moves to exactly one of
// completed or failed; it never moves back.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderFailed    = "failed"
)

type Collection struct {
	ID          int64   `db:"id"`
	BrandName   string  `db:"brand_name"`
	Description string  `db:"description"`
	Filename    string  `db:"filename"`
	Amount      float64 `db:"amount"`
	Data        []byte  `db:"data"`
	Mimetype    string  `db:"mimetype"`
	CreatedAt   string  `db:"created_at"`
}

type Order struct {
	ID           int64   `db:"id"`
	Email        string  `db:"email"`
	Amount       float64 `db:"amount"`
	Reference    string  `db:"reference"`
	Status       string  `db:"status"`
	PaidAt       string  `db:"paid_at"`
	UserID       int64   `db:"user_id"`
	CollectionID int64   `db:"collection_id"`
	CreatedAt    string  `db:"created_at"`
}
