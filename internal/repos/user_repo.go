package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/nnamdiindu/cara-store/internal/domain"
)

var ErrEmailTaken = errors.New("email already registered")

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a new user and returns its id. ErrEmailTaken when the
// email is already registered.
func (r *UserRepo) Create(name, email, passwordHash string) (int64, error) {
	var exists int
	if err := r.DB.Get(&exists, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, email); err != nil {
		return 0, err
	}
	if exists > 0 {
		return 0, ErrEmailTaken
	}
	res, err := r.DB.Exec(`INSERT INTO users(name,email,password_hash) VALUES(?,?,?)`, name, email, passwordHash)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
		SELECT id,name,email,password_hash,created_at
		FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,name,email,password_hash,created_at FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) BindSession(sid string, userID int64) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT u.id,u.name,u.email,u.password_hash,u.created_at
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// IsNotFound reports whether err is the driver's no-rows error.
func IsNotFound(err error) bool { return errors.Is(err, sql.ErrNoRows) }
