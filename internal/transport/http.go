package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/transmodal/freightdesk/internal/handler"
	"github.com/transmodal/freightdesk/internal/invoice"
	"github.com/transmodal/freightdesk/internal/order"
	"github.com/transmodal/freightdesk/internal/partner"
)

func NewRouter(orders order.Service, partners partner.Service, invoices invoice.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	oh := handler.NewOrderHandler(orders)
	ph := handler.NewPartnerHandler(partners, invoices)
	ih := handler.NewInvoiceHandler(invoices)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", oh.SearchOrders)
		r.Post("/commit", oh.CommitOrder)
		r.Get("/{id}", oh.GetOrder)
		r.Delete("/{id}", oh.DeleteOrder)
		r.Get("/{id}/invoices", ih.ListByOrder)
	})

	r.Route("/partners", func(r chi.Router) {
		r.Get("/", ph.SearchPartners)
		r.Get("/{id}", ph.GetPartner)
		r.Get("/{id}/unpaid-summary", ph.UnpaidSummary)
	})

	r.Get("/managers", ph.ListManagers)
	r.Post("/payments", ih.RecordPayment)

	return r
}
