package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"menora/internal/quote"
)

// SaveList writes the list header and replaces its items.
func (d *DB) SaveList(ctx context.Context, l *quote.List) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO shopping_lists (id, userCode, name, description, status, createdAt, updatedAt)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  userCode=excluded.userCode,
  name=excluded.name,
  description=excluded.description,
  status=excluded.status,
  updatedAt=excluded.updatedAt
`, l.ID, l.UserCode, l.Name, l.Description, l.Status, formatTime(l.CreatedAt), formatTime(l.UpdatedAt)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_items WHERE listId = ?`, l.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO shopping_items (
  id, listId, position, menoraId, supplierCode, descriptionHebrew, descriptionEnglish,
  quantity, unitPrice, currency, notes, addedAt, updatedAt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range l.Items {
		if _, err := stmt.ExecContext(ctx,
			it.ID, l.ID, i, it.MenoraID, it.SupplierCode, it.Descriptions.Hebrew, it.Descriptions.English,
			it.Quantity, it.UnitPrice.String(), it.Currency, it.Notes, formatTime(it.AddedAt), formatTime(it.UpdatedAt),
		); err != nil {
			return fmt.Errorf("item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

func (d *DB) GetList(ctx context.Context, id string) (*quote.List, error) {
	var l quote.List
	var description sql.NullString
	var createdAt, updatedAt string
	err := d.conn.QueryRowContext(ctx, `
SELECT id, userCode, name, description, status, createdAt, updatedAt
FROM shopping_lists WHERE id = ?
`, id).Scan(&l.ID, &l.UserCode, &l.Name, &description, &l.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	l.Description = description.String
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)

	items, err := d.listItems(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	l.Items = items
	return &l, nil
}

func (d *DB) listItems(ctx context.Context, listID string) ([]quote.Item, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT id, menoraId, supplierCode, descriptionHebrew, descriptionEnglish,
       quantity, unitPrice, currency, notes, addedAt, updatedAt
FROM shopping_items WHERE listId = ? ORDER BY position ASC
`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []quote.Item{}
	for rows.Next() {
		var it quote.Item
		var price string
		var notes sql.NullString
		var addedAt, updatedAt string
		if err := rows.Scan(
			&it.ID, &it.MenoraID, &it.SupplierCode, &it.Descriptions.Hebrew, &it.Descriptions.English,
			&it.Quantity, &price, &it.Currency, &notes, &addedAt, &updatedAt,
		); err != nil {
			return nil, err
		}
		it.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("item %s price: %w", it.ID, err)
		}
		it.Notes = notes.String
		it.AddedAt = parseTime(addedAt)
		it.UpdatedAt = parseTime(updatedAt)
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListsByUser returns a user's lists, most recently updated first.
func (d *DB) ListsByUser(ctx context.Context, userCode string) ([]*quote.List, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT id FROM shopping_lists WHERE userCode = ? ORDER BY updatedAt DESC, id ASC
`, userCode)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*quote.List, 0, len(ids))
	for _, id := range ids {
		l, err := d.GetList(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (d *DB) DeleteList(ctx context.Context, id string) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_items WHERE listId = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
