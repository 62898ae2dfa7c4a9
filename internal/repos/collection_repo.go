package repos

import (
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/nnamdiindu/cara-store/internal/domain"
)

// ErrCollectionInUse is returned when deleting a collection that still has
// orders pointing at it. Orders are kept as an audit trail, so the delete
// is refused rather than cascaded.
var ErrCollectionInUse = errors.New("collection has existing orders")

type CollectionRepo struct{ db *sqlx.DB }

func NewCollectionRepo(db *sqlx.DB) *CollectionRepo { return &CollectionRepo{db: db} }

func (r *CollectionRepo) Create(c domain.Collection) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO collections(brand_name, description, filename, amount, data, mimetype)
	  VALUES(?,?,?,?,?,?)
	`, c.BrandName, c.Description, c.Filename, c.Amount, c.Data, c.Mimetype)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *CollectionRepo) Get(id int64) (domain.Collection, error) {
	var c domain.Collection
	err := r.db.Get(&c, `
	  SELECT id, brand_name, description, filename, amount, data, mimetype, created_at
	  FROM collections WHERE id = ?
	`, id)
	return c, err
}

// List returns all collections in insertion order.
func (r *CollectionRepo) List() ([]domain.Collection, error) {
	var out []domain.Collection
	err := r.db.Select(&out, `
	  SELECT id, brand_name, description, filename, amount, data, mimetype, created_at
	  FROM collections
	  ORDER BY id
	`)
	return out, err
}

// Update rewrites the text/price fields; image columns only when newImage
// is true.
func (r *CollectionRepo) Update(c domain.Collection, newImage bool) error {
	if newImage {
		res, err := r.db.Exec(`
		  UPDATE collections
		  SET brand_name=?, description=?, amount=?, filename=?, data=?, mimetype=?
		  WHERE id=?
		`, c.BrandName, c.Description, c.Amount, c.Filename, c.Data, c.Mimetype, c.ID)
		return rowsOrNotFound(res, err)
	}
	res, err := r.db.Exec(`
	  UPDATE collections SET brand_name=?, description=?, amount=? WHERE id=?
	`, c.BrandName, c.Description, c.Amount, c.ID)
	return rowsOrNotFound(res, err)
}

func (r *CollectionRepo) Delete(id int64) error {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM orders WHERE collection_id=?`, id); err != nil {
		return err
	}
	if n > 0 {
		return ErrCollectionInUse
	}
	res, err := r.db.Exec(`DELETE FROM collections WHERE id=?`, id)
	return rowsOrNotFound(res, err)
}
