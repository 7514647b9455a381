package models

import "time"

type Customer struct {
	ID        int64          `json:"id"`
	FullName  string         `json:"full_name"`
	Email     string         `json:"email"`
	Status    CustomerStatus `json:"status"`
	Age       int            `json:"age"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type CustomerInput struct {
	FullName string         `json:"full_name" validate:"required"`
	Email    string         `json:"email" validate:"omitempty,email"`
	Status   CustomerStatus `json:"status" validate:"required"`
	Age      int            `json:"age" validate:"gte=1"`
}

// Apply copies the writable fields onto c, leaving id and timestamps alone.
func (in CustomerInput) Apply(c *Customer) {
	c.FullName = in.FullName
	c.Email = in.Email
	c.Status = in.Status
	c.Age = in.Age
}
