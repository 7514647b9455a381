package models

import "time"

type Booking struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      BookingStatus `json:"status"`
	StartDate   Date          `json:"start_date"`
	EndDate     Date          `json:"end_date"`
	CustomerID  int64         `json:"customer_id"`
	BrandID     *int64        `json:"brand_id,omitempty"`
	BrandName   string        `json:"brand_name,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (b *Booking) HasBrand() bool {
	return b.BrandID != nil
}

// Clone returns a deep copy, so callers can mutate it without touching b.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	if b.BrandID != nil {
		id := *b.BrandID
		c.BrandID = &id
	}
	return &c
}

// CreateBookingInput is the client payload for a new booking. Dates use the
// "required" tag through a custom type func registered by the HTTP validator.
type CreateBookingInput struct {
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description"`
	Status      BookingStatus `json:"status" validate:"required"`
	StartDate   Date          `json:"start_date" validate:"required"`
	EndDate     Date          `json:"end_date" validate:"required"`
	CustomerID  int64         `json:"customer_id" validate:"gte=1"`
}

// ToBooking maps the input to an unsaved record. The id is always left zero.
func (in CreateBookingInput) ToBooking() *Booking {
	return &Booking{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CustomerID:  in.CustomerID,
	}
}
