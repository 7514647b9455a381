package api

import (
	"fmt"
	"net/http"

	"customerbooking/internal/models"
)

func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	list, err := h.svc.Brands.ListBrands(r.Context(), page)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []*models.Brand{}
	}
	respondJSON(w, r, http.StatusOK, list)
}

func (h *Handler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.svc.Brands.GetBrand(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, b)
}

func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var in models.BrandInput
	if !h.decode(w, r, &in) {
		return
	}
	b, err := h.svc.Brands.CreateBrand(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	h.created(w, r, fmt.Sprintf("/api/brands/%d", b.ID), b)
}

func (h *Handler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var in models.BrandInput
	if !h.decode(w, r, &in) {
		return
	}
	b, err := h.svc.Brands.UpdateBrand(r.Context(), id, in)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, b)
}

func (h *Handler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Brands.DeleteBrand(r.Context(), id); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListBrandBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	page, ok := h.pageRequest(w, r)
	if !ok {
		return
	}
	list, err := h.svc.Brands.ListBrandBookings(r.Context(), id, page)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []*models.Booking{}
	}
	respondJSON(w, r, http.StatusOK, list)
}
