package api

import (
	"bytes"
	"fmt"
	"net/http"

	"customerbooking/internal/export"
	"customerbooking/internal/models"
)

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in models.CreateBookingInput
	if !h.decode(w, r, &in) {
		return
	}
	if in.EndDate.Before(in.StartDate.Time) {
		respondError(w, r, http.StatusBadRequest, "validation failed", map[string]string{"end_date": "must not be before start_date"})
		return
	}

	b, err := h.svc.Bookings.CreateBooking(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	h.created(w, r, fmt.Sprintf("/api/bookings/%d", b.ID), b)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.svc.Bookings.GetBooking(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, b)
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Bookings.DeleteBooking(r.Context(), id); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AttachBrand(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	brandID, ok := h.pathID(w, r, "brandId")
	if !ok {
		return
	}
	b, err := h.svc.Bookings.AttachBrand(r.Context(), bookingID, brandID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, b)
}

// ExportBookings streams an xlsx of bookings starting within ?from=&to= (YYYY-MM-DD).
func (h *Handler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fields := map[string]string{}
	from, err := models.ParseDate(q.Get("from"))
	if err != nil {
		fields["from"] = err.Error()
	}
	to, err := models.ParseDate(q.Get("to"))
	if err != nil {
		fields["to"] = err.Error()
	}
	if len(fields) > 0 {
		respondError(w, r, http.StatusBadRequest, "invalid export range", fields)
		return
	}

	list, err := h.svc.Bookings.ListBookingsBetween(r.Context(), from.Time, to.Time)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, list, from.Time, to.Time); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(from.Time, to.Time)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
