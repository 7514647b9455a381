package api

import (
	"fmt"
	"net/http"

	"customerbooking/internal/models"
)

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	list, err := h.svc.Customers.ListCustomers(r.Context(), page)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []*models.Customer{}
	}
	respondJSON(w, r, http.StatusOK, list)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.svc.Customers.GetCustomer(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, c)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in models.CustomerInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.svc.Customers.CreateCustomer(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	h.created(w, r, fmt.Sprintf("/api/customers/%d", c.ID), c)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var in models.CustomerInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.svc.Customers.UpdateCustomer(r.Context(), id, in)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, c)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Customers.DeleteCustomer(r.Context(), id); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCustomerBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	page, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	list, err := h.svc.Customers.ListCustomerBookings(r.Context(), id, page)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []*models.Booking{}
	}
	respondJSON(w, r, http.StatusOK, list)
}
