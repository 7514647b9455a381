package models

import "time"

type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	ShortCode string    `json:"short_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BrandInput struct {
	Name      string `json:"name" validate:"required,max=32"`
	Address   string `json:"address" validate:"required,max=100"`
	ShortCode string `json:"short_code" validate:"required,max=3"`
}

func (in BrandInput) Apply(b *Brand) {
	b.Name = in.Name
	b.Address = in.Address
	b.ShortCode = in.ShortCode
}
