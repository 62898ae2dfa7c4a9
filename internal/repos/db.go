package repos

import (
	"encoding/base64"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Demo data on an empty database (idempotent; safe to run every start)
	if err := seedCollections(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id INTEGER NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Collections (catalog items, image stored in-row)
CREATE TABLE IF NOT EXISTS collections(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  brand_name TEXT NOT NULL,
  description TEXT NOT NULL,
  filename TEXT NOT NULL,
  amount NUMERIC NOT NULL CHECK (amount >= 0),
  data BLOB NOT NULL,
  mimetype TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_collections_created_at ON collections(created_at);

-- Orders (one row per purchase attempt; reference is the gateway join key)
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  reference TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','completed','failed')),
  paid_at TEXT,
  user_id INTEGER NOT NULL REFERENCES users(id),
  collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE RESTRICT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_reference ON orders(reference);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
`
	_, err := db.Exec(schema)
	return err
}

// 1x1 transparent PNG used for seeded demo collections.
const seedPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func seedCollections(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM collections`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo collections")
	img, err := base64.StdEncoding.DecodeString(seedPNG)
	if err != nil {
		return err
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	rows := []struct {
		Brand, Desc, File string
		Amount            float64
	}{
		{"Aurora", "Hand-finished leather weekend bag", "aurora.png", 149.99},
		{"Meridian", "Slim canvas backpack, water resistant", "meridian.png", 89.00},
	}
	for _, r := range rows {
		if _, err := tx.Exec(`
			INSERT INTO collections(brand_name, description, filename, amount, data, mimetype)
			VALUES(?,?,?,?,?,?)
		`, r.Brand, r.Desc, r.File, r.Amount, img, "image/png"); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedUsers ensures demo accounts exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		Name, Email, Hash string
	}
	mk := func(name, email, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{Name: name, Email: email, Hash: string(h)}
	}

	users := []u{
		mk("Alice", "alice@cara.test", "Passw0rd!"),
		mk("Bob", "bob@cara.test", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(name,email,password_hash)
			VALUES(?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.Name, x.Email, x.Hash); err != nil {
			return err
		}
	}
	return tx.Commit()
}
