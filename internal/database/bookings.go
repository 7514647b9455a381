package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"customerbooking/internal/domain"
	"customerbooking/internal/models"
)

const bookingSelect = `
        SELECT b.id, b.title, b.description, b.status, b.start_date, b.end_date,
               b.customer_id, b.brand_id, br.name, b.created_at, b.updated_at
        FROM bookings b
        LEFT JOIN brands br ON br.id = b.brand_id`

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b          models.Booking
		status     string
		start, end time.Time
		brandID    sql.NullInt64
		brandName  sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.Title, &b.Description, &status, &start, &end,
		&b.CustomerID, &brandID, &brandName, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = models.BookingStatus(status)
	b.StartDate = models.Date{Time: start}
	b.EndDate = models.Date{Time: end}
	if brandID.Valid {
		id := brandID.Int64
		b.BrandID = &id
		b.BrandName = brandName.String
	}
	return &b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (db *DB) BookingExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check booking: %w", err)
	}
	return exists, nil
}

// SaveBooking inserts a new row when b.ID is zero, otherwise rewrites the mutable columns of the existing row.
func (db *DB) SaveBooking(ctx context.Context, b *models.Booking) error {
	if b.ID == 0 {
		return db.insertBooking(ctx, b)
	}

	query := `UPDATE bookings
              SET title = ?, description = ?, status = ?, start_date = ?, end_date = ?, brand_id = ?, updated_at = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		b.Title, b.Description, string(b.Status), b.StartDate.Time, b.EndDate.Time,
		nullableID(b.BrandID), b.UpdatedAt, b.ID,
	)
	if err != nil {
		// only brand_id can point somewhere new on update
		return translateSaveError(err, models.EntityBrand, derefID(b.BrandID), "update")
	}
	return expectOneRow(result, models.EntityBooking, b.ID)
}

func (db *DB) insertBooking(ctx context.Context, b *models.Booking) error {
	query := `INSERT INTO bookings (title, description, status, start_date, end_date, customer_id, brand_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		b.Title, b.Description, string(b.Status), b.StartDate.Time, b.EndDate.Time,
		b.CustomerID, nullableID(b.BrandID), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) && b.BrandID != nil {
			if c, lookupErr := db.GetCustomer(ctx, b.CustomerID); lookupErr == nil && c != nil {
				return domain.NotFound(models.EntityBrand, *b.BrandID)
			}
		}
		return translateSaveError(err, models.EntityCustomer, b.CustomerID, "create")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	b.ID = id
	return nil
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return expectOneRow(result, models.EntityBooking, id)
}

func (db *DB) ListBookingsByCustomer(ctx context.Context, customerID int64, page models.PageRequest) ([]*models.Booking, error) {
	return db.queryBookings(ctx, bookingSelect+` WHERE b.customer_id = ? ORDER BY b.id LIMIT ? OFFSET ?`,
		customerID, page.Limit(), page.Offset())
}

func (db *DB) ListBookingsByBrand(ctx context.Context, brandID int64, page models.PageRequest) ([]*models.Booking, error) {
	return db.queryBookings(ctx, bookingSelect+` WHERE b.brand_id = ? ORDER BY b.id LIMIT ? OFFSET ?`,
		brandID, page.Limit(), page.Offset())
}

// ListBookingsBetween returns bookings whose start date falls within [from, to], both inclusive.
func (db *DB) ListBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	return db.queryBookings(ctx, bookingSelect+`
        WHERE date(b.start_date) BETWEEN date(?) AND date(?)
        ORDER BY b.start_date, b.id`,
		from.Format(models.DateLayout), to.Format(models.DateLayout))
}

func (db *DB) CountBookingsByCustomer(ctx context.Context, customerID int64) (int, error) {
	return db.countBookings(ctx, `SELECT COUNT(*) FROM bookings WHERE customer_id = ?`, customerID)
}

func (db *DB) CountBookingsByBrand(ctx context.Context, brandID int64) (int, error) {
	return db.countBookings(ctx, `SELECT COUNT(*) FROM bookings WHERE brand_id = ?`, brandID)
}

func (db *DB) countBookings(ctx context.Context, query string, id int64) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}
