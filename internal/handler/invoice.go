package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transmodal/freightdesk/internal/invoice"
)

// InvoiceHandler serves the finance tab: invoice listings and payments.
type InvoiceHandler struct {
	svc invoice.Service
}

func NewInvoiceHandler(svc invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// ListByOrder returns both invoice sides of one order, each row annotated
// with its derived display status and days until due.
func (h *InvoiceHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	sales, purchases, err := h.svc.ListByOrder(r.Context(), id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"sales":    annotateSales(sales),
		"purchase": annotatePurchase(purchases),
	})
}

func (h *InvoiceHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var p invoice.Payment
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.RecordPayment(r.Context(), &p); err != nil {
		if errors.Is(err, invoice.ErrInvoiceNotFound) {
			respondWithError(w, http.StatusNotFound, "invoice not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to record payment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type annotatedSales struct {
	invoice.SalesInvoice
	DisplayStatus invoice.DisplayStatus `json:"display_status"`
}

type annotatedPurchase struct {
	invoice.PurchaseInvoice
	DisplayStatus invoice.DisplayStatus `json:"display_status"`
}

func annotateSales(invoices []invoice.SalesInvoice) []annotatedSales {
	out := make([]annotatedSales, 0, len(invoices))
	for i := range invoices {
		out = append(out, annotatedSales{
			SalesInvoice:  invoices[i],
			DisplayStatus: invoices[i].DisplayStatus(),
		})
	}
	return out
}

func annotatePurchase(invoices []invoice.PurchaseInvoice) []annotatedPurchase {
	out := make([]annotatedPurchase, 0, len(invoices))
	for i := range invoices {
		out = append(out, annotatedPurchase{
			PurchaseInvoice: invoices[i],
			DisplayStatus:   invoices[i].DisplayStatus(),
		})
	}
	return out
}
