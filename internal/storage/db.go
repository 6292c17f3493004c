package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS catalog_products (
  menoraId TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  supplierCode TEXT NOT NULL,
  typeCode TEXT NOT NULL,
  descriptionHebrew TEXT NOT NULL,
  descriptionEnglish TEXT NOT NULL,
  category TEXT NOT NULL,
  subcategory TEXT,
  specsJson TEXT,
  pricingJson TEXT,
  inStock INTEGER NOT NULL,
  leadTimeDays INTEGER NOT NULL,
  tagsJson TEXT NOT NULL,
  supplierName TEXT NOT NULL,
  originJson TEXT NOT NULL,
  imageUrl TEXT,
  imagePath TEXT,
  thumbnailUrl TEXT,
  synthetic INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_catalog_products_position ON catalog_products(position);

CREATE TABLE IF NOT EXISTS shopping_lists (
  id TEXT PRIMARY KEY,
  userCode TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  createdAt TEXT NOT NULL,
  updatedAt TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_shopping_lists_user ON shopping_lists(userCode);

CREATE TABLE IF NOT EXISTS shopping_items (
  id TEXT PRIMARY KEY,
  listId TEXT NOT NULL,
  position INTEGER NOT NULL,
  menoraId TEXT NOT NULL,
  supplierCode TEXT NOT NULL,
  descriptionHebrew TEXT NOT NULL,
  descriptionEnglish TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unitPrice TEXT NOT NULL,
  currency TEXT NOT NULL,
  notes TEXT,
  addedAt TEXT NOT NULL,
  updatedAt TEXT NOT NULL,
  FOREIGN KEY(listId) REFERENCES shopping_lists(id)
);
CREATE INDEX IF NOT EXISTS idx_shopping_items_list ON shopping_items(listId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	return setMetadata(context.Background(), d.conn, key, value)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setMetadata(ctx context.Context, x execer, key, value string) error {
	_, err := x.ExecContext(ctx, `
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
