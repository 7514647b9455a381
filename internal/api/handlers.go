package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"customerbooking/internal/config"
	"customerbooking/internal/domain"
	"customerbooking/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

type CustomerService interface {
	ListCustomers(ctx context.Context, page models.PageRequest) ([]*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	CreateCustomer(ctx context.Context, in models.CustomerInput) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in models.CustomerInput) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	ListCustomerBookings(ctx context.Context, id int64, page models.PageRequest) ([]*models.Booking, error)
}

type BrandService interface {
	ListBrands(ctx context.Context, page models.PageRequest) ([]*models.Brand, error)
	GetBrand(ctx context.Context, id int64) (*models.Brand, error)
	CreateBrand(ctx context.Context, in models.BrandInput) (*models.Brand, error)
	UpdateBrand(ctx context.Context, id int64, in models.BrandInput) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id int64) error
	ListBrandBookings(ctx context.Context, id int64, page models.PageRequest) ([]*models.Booking, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, in models.CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	AttachBrand(ctx context.Context, bookingID, brandID int64) (*models.Booking, error)
	ListBookingsBetween(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
}

// Services bundles what the HTTP handlers call into.
type Services struct {
	Customers CustomerService
	Brands    BrandService
	Bookings  BookingService
	Store     domain.Pinger
}

type Handler struct {
	svc        Services
	validator  *Validator
	pagination config.APIPaginationConfig
	logger     *zerolog.Logger
}

func NewHandler(svc Services, pagination config.APIPaginationConfig, logger *zerolog.Logger) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handler{svc: svc, validator: NewValidator(), pagination: pagination, logger: logger}
}

// pathID parses a positive integer URL parameter, writing a 400 on failure.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusBadRequest, "invalid "+name, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) pageRequest(w http.ResponseWriter, r *http.Request) (models.PageRequest, bool) {
	q := r.URL.Query()
	page, size := 0, h.pagination.DefaultSize

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, r, http.StatusBadRequest, "invalid page", map[string]string{"page": "must be a non-negative integer"})
			return models.PageRequest{}, false
		}
		page = n
	}
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, r, http.StatusBadRequest, "invalid size", map[string]string{"size": "must be a positive integer"})
			return models.PageRequest{}, false
		}
		size = n
	}
	if h.pagination.MaxSize > 0 && size > h.pagination.MaxSize {
		size = h.pagination.MaxSize
	}
	return models.NewPageRequest(page, size), true
}

// decode reads a JSON body into dst and validates it, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var invalidStatus *models.InvalidStatusError
		if errors.As(err, &invalidStatus) {
			respondError(w, r, http.StatusBadRequest, "validation failed", map[string]string{"status": invalidStatus.Error()})
			return false
		}
		respondError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return false
	}
	if fields := h.validator.Struct(dst); fields != nil {
		respondError(w, r, http.StatusBadRequest, "validation failed", fields)
		return false
	}
	return true
}

func (h *Handler) created(w http.ResponseWriter, r *http.Request, location string, payload any) {
	w.Header().Set("Location", location)
	respondJSON(w, r, http.StatusCreated, payload)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.svc.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.svc.Store.PingContext(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("readiness check failed")
			respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
