package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"customerbooking/internal/models"
)

const brandColumns = `id, name, address, short_code, created_at, updated_at`

func scanBrand(row rowScanner) (*models.Brand, error) {
	var b models.Brand
	if err := row.Scan(&b.ID, &b.Name, &b.Address, &b.ShortCode, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) GetBrand(ctx context.Context, id int64) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = ?`
	b, err := scanBrand(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return b, nil
}

func (db *DB) ListBrands(ctx context.Context, page models.PageRequest) ([]*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := make([]*models.Brand, 0)
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (db *DB) CreateBrand(ctx context.Context, b *models.Brand) error {
	query := `INSERT INTO brands (name, address, short_code, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, b.Name, b.Address, b.ShortCode, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	b.ID = id
	return nil
}

func (db *DB) UpdateBrand(ctx context.Context, b *models.Brand) error {
	query := `UPDATE brands SET name = ?, address = ?, short_code = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, b.Name, b.Address, b.ShortCode, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update brand: %w", err)
	}
	return expectOneRow(result, models.EntityBrand, b.ID)
}

func (db *DB) DeleteBrand(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
	if err != nil {
		return translateDeleteError(err, models.EntityBrand, id)
	}
	return expectOneRow(result, models.EntityBrand, id)
}
