package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"menora/internal"
)

const (
	metaSnapshotRunID    = "snapshot.run_id"
	metaSnapshotLoadedAt = "snapshot.loaded_at"
	metaSnapshotVersion  = "snapshot.source_version"
	metaSnapshotCount    = "snapshot.product_count"
)

// SaveSnapshot replaces the persisted catalog with products.
func (d *DB) SaveSnapshot(ctx context.Context, meta internal.SnapshotMeta, products []*internal.Product) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_products`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO catalog_products (
  menoraId, position, supplierCode, typeCode, descriptionHebrew, descriptionEnglish,
  category, subcategory, specsJson, pricingJson, inStock, leadTimeDays,
  tagsJson, supplierName, originJson, imageUrl, imagePath, thumbnailUrl, synthetic
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range products {
		specsJSON, err := nullableJSON(p.Specifications)
		if err != nil {
			return fmt.Errorf("%s: %w", p.MenoraID, err)
		}
		pricingJSON, err := nullableJSON(p.Pricing)
		if err != nil {
			return fmt.Errorf("%s: %w", p.MenoraID, err)
		}
		tagsJSON, _ := json.Marshal(p.Tags)
		originJSON, _ := json.Marshal(p.Origin)
		var imageURL, imagePath, thumbURL *string
		if img, ok := p.Image(); ok {
			imageURL, imagePath, thumbURL = &img.URL, &img.Path, &img.ThumbnailURL
		}
		if _, err := stmt.ExecContext(ctx,
			p.MenoraID, i, p.SupplierCode, p.TypeCode, p.Descriptions.Hebrew, p.Descriptions.English,
			string(p.Category), p.Subcategory, specsJSON, pricingJSON, p.InStock, p.LeadTimeDays,
			string(tagsJSON), p.SupplierName, string(originJSON), imageURL, imagePath, thumbURL, p.IsSynthetic(),
		); err != nil {
			return fmt.Errorf("%s: %w", p.MenoraID, err)
		}
	}

	for key, value := range map[string]string{
		metaSnapshotRunID:    meta.RunID,
		metaSnapshotLoadedAt: meta.LoadedAt.UTC().Format(time.RFC3339Nano),
		metaSnapshotVersion:  meta.SourceVersion,
		metaSnapshotCount:    strconv.Itoa(len(products)),
	} {
		if err := setMetadata(ctx, tx, key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSnapshot returns the persisted catalog in its original order. An empty
// store yields ErrNotFound.
func (d *DB) LoadSnapshot(ctx context.Context) (internal.SnapshotMeta, []*internal.Product, error) {
	var meta internal.SnapshotMeta
	rows, err := d.conn.QueryContext(ctx, `
SELECT menoraId, supplierCode, typeCode, descriptionHebrew, descriptionEnglish,
       category, subcategory, specsJson, pricingJson, inStock, leadTimeDays,
       tagsJson, supplierName, originJson, imageUrl, imagePath, thumbnailUrl, synthetic
FROM catalog_products ORDER BY position ASC`)
	if err != nil {
		return meta, nil, err
	}
	defer rows.Close()

	var out []*internal.Product
	for rows.Next() {
		var (
			params                 internal.ProductParams
			category               string
			specsJSON, pricingJSON sql.NullString
			tagsJSON, originJSON   string
			imageURL, imagePath    sql.NullString
			thumbURL               sql.NullString
			inStock                bool
		)
		if err := rows.Scan(
			&params.MenoraID, &params.SupplierCode, &params.TypeCode,
			&params.Descriptions.Hebrew, &params.Descriptions.English,
			&category, &params.Subcategory, &specsJSON, &pricingJSON, &inStock, &params.LeadTimeDays,
			&tagsJSON, &params.SupplierName, &originJSON, &imageURL, &imagePath, &thumbURL, &params.Synthetic,
		); err != nil {
			return meta, nil, err
		}
		params.Category = internal.Category(category)
		params.InStock = &inStock
		if specsJSON.Valid {
			params.Specifications = &internal.Specifications{}
			if err := json.Unmarshal([]byte(specsJSON.String), params.Specifications); err != nil {
				return meta, nil, fmt.Errorf("%s specs: %w", params.MenoraID, err)
			}
		}
		if pricingJSON.Valid {
			params.Pricing = &internal.Pricing{}
			if err := json.Unmarshal([]byte(pricingJSON.String), params.Pricing); err != nil {
				return meta, nil, fmt.Errorf("%s pricing: %w", params.MenoraID, err)
			}
		}
		_ = json.Unmarshal([]byte(tagsJSON), &params.Tags)
		_ = json.Unmarshal([]byte(originJSON), &params.Origin)
		if imageURL.Valid {
			params.Image = &internal.ProductImage{URL: imageURL.String, Path: imagePath.String, ThumbnailURL: thumbURL.String}
		}
		p, err := internal.NewProduct(params)
		if err != nil {
			return meta, nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return meta, nil, err
	}
	if len(out) == 0 {
		return meta, nil, ErrNotFound
	}

	if v, err := d.GetMetadata(metaSnapshotRunID); err == nil && v != nil {
		meta.RunID = *v
	}
	if v, err := d.GetMetadata(metaSnapshotVersion); err == nil && v != nil {
		meta.SourceVersion = *v
	}
	if v, err := d.GetMetadata(metaSnapshotLoadedAt); err == nil && v != nil {
		meta.LoadedAt, _ = time.Parse(time.RFC3339Nano, *v)
	}
	meta.ProductCount = len(out)
	return meta, out, nil
}

func nullableJSON(v any) (*string, error) {
	switch t := v.(type) {
	case *internal.Specifications:
		if t == nil {
			return nil, nil
		}
	case *internal.Pricing:
		if t == nil {
			return nil, nil
		}
	}
	blob, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(blob)
	return &s, nil
}
