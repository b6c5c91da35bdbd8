package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/transmodal/freightdesk/internal/invoice"
	"github.com/transmodal/freightdesk/internal/partner"
)

// PartnerHandler serves the client/carrier lookups behind the search dialogs
// and the advisory unpaid-invoice summary.
type PartnerHandler struct {
	svc      partner.Service
	invoices invoice.Service
}

func NewPartnerHandler(svc partner.Service, invoices invoice.Service) *PartnerHandler {
	return &PartnerHandler{svc: svc, invoices: invoices}
}

func (h *PartnerHandler) SearchPartners(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	kind := partner.Kind(r.URL.Query().Get("kind"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	partners, err := h.svc.SearchPartners(r.Context(), query, kind, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "partner search failed")
		return
	}
	respondWithJSON(w, http.StatusOK, partners)
}

func (h *PartnerHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid partner id")
		return
	}

	p, err := h.svc.GetPartner(r.Context(), id)
	if err != nil {
		if errors.Is(err, partner.ErrPartnerNotFound) {
			respondWithError(w, http.StatusNotFound, "partner not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to get partner")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

// UnpaidSummary always answers 200: the summary degrades to a zero value when
// the underlying lookup fails.
func (h *PartnerHandler) UnpaidSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid partner id")
		return
	}
	respondWithJSON(w, http.StatusOK, h.invoices.PartnerUnpaidSummary(r.Context(), id))
}

func (h *PartnerHandler) ListManagers(w http.ResponseWriter, r *http.Request) {
	managers, err := h.svc.ListManagers(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list managers")
		return
	}
	respondWithJSON(w, http.StatusOK, managers)
}
