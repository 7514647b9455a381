package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"customerbooking/internal/domain"
	"customerbooking/internal/models"
)

const customerColumns = `id, full_name, email, status, age, created_at, updated_at`

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		c      models.Customer
		status string
	)
	if err := row.Scan(&c.ID, &c.FullName, &c.Email, &status, &c.Age, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = models.CustomerStatus(status)
	return &c, nil
}

func (db *DB) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	c, err := scanCustomer(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

func (db *DB) ListCustomers(ctx context.Context, page models.PageRequest) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (db *DB) CreateCustomer(ctx context.Context, c *models.Customer) error {
	query := `INSERT INTO customers (full_name, email, status, age, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		c.FullName, c.Email, string(c.Status), c.Age, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	return nil
}

func (db *DB) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	query := `UPDATE customers SET full_name = ?, email = ?, status = ?, age = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		c.FullName, c.Email, string(c.Status), c.Age, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return expectOneRow(result, models.EntityCustomer, c.ID)
}

func (db *DB) DeleteCustomer(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return translateDeleteError(err, models.EntityCustomer, id)
	}
	return expectOneRow(result, models.EntityCustomer, id)
}

func expectOneRow(result sql.Result, entity string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFound(entity, id)
	}
	return nil
}
