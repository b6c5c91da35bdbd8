package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transmodal/freightdesk/internal/order"
)

// OrderHandler handles HTTP requests for the order aggregate.
type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// GetOrder returns the full aggregate.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

// SearchOrders lists order headers for the search/assignment dialogs.
func (h *OrderHandler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	q := order.OrderSearch{
		Reference: r.URL.Query().Get("reference"),
		Status:    order.Status(r.URL.Query().Get("status")),
	}
	if clientID, ok := parseID(r.URL.Query().Get("client_id")); ok {
		q.ClientID = clientID
	}

	orders, err := h.svc.SearchOrders(r.Context(), q)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "order search failed")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

// CommitOrder takes the edited in-memory aggregate and reconciles it against
// the store. On success the response carries the canonical aggregate and any
// non-fatal warnings. Validation failures return 422; a failure after some
// steps were already applied returns 409 so the client knows part of the data
// was saved.
func (h *OrderHandler) CommitOrder(w http.ResponseWriter, r *http.Request) {
	var o order.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.CommitOrder(r.Context(), &o)
	if err != nil {
		var ve *order.ValidationError
		if errors.As(err, &ve) {
			respondWithJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    "validation failed",
				"problems": ve.Problems,
			})
			return
		}
		var pe *order.PartialCommitError
		if errors.As(err, &pe) {
			respondWithJSON(w, http.StatusConflict, map[string]any{
				"error":           "some data was saved, please retry",
				"failed_step":     string(pe.Step),
				"completed_steps": pe.Completed,
				"detail":          pe.Err.Error(),
			})
			return
		}
		var se *order.StepError
		if errors.As(err, &se) {
			respondWithJSON(w, http.StatusBadGateway, map[string]any{
				"error":       "commit failed",
				"failed_step": string(se.Step),
				"detail":      se.Err.Error(),
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "commit failed")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// DeleteOrder removes the aggregate.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
