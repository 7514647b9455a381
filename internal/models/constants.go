package models

const (
	// DefaultPageSize is used when a listing request does not carry a size.
	DefaultPageSize = 20

	// MaxPageSize caps the size accepted from clients.
	MaxPageSize = 100

	// DateLayout is the wire format of booking start/end dates.
	DateLayout = "2006-01-02"
)

// Entity names used in not-found errors and log fields.
const (
	EntityCustomer = "Customer"
	EntityBrand    = "Brand"
	EntityBooking  = "Booking"
)
