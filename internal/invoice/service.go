package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/transmodal/freightdesk/internal/cache"
)

const summaryTTL = 5 * time.Minute

// Service exposes invoice listings for the finance tab and the advisory
// partner summary.
type Service interface {
	ListByOrder(ctx context.Context, orderID int64) ([]SalesInvoice, []PurchaseInvoice, error)
	RecordPayment(ctx context.Context, p *Payment) error
	// PartnerUnpaidSummary never fails: on any lookup error it degrades to a
	// zero summary, because the figure is advisory and not part of the
	// aggregate's correctness.
	PartnerUnpaidSummary(ctx context.Context, partnerID int64) UnpaidSummary
}

type service struct {
	repo  Repository
	cache cache.Cache
}

func NewService(repo Repository, c cache.Cache) Service {
	if c == nil {
		c = cache.NewMemory()
	}
	return &service{repo: repo, cache: c}
}

func (s *service) ListByOrder(ctx context.Context, orderID int64) ([]SalesInvoice, []PurchaseInvoice, error) {
	sales, err := s.repo.ListSalesByOrder(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("service: failed to list sales invoices")
		return nil, nil, fmt.Errorf("service: failed to list sales invoices: %w", err)
	}
	purchases, err := s.repo.ListPurchaseByOrder(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("service: failed to list purchase invoices")
		return nil, nil, fmt.Errorf("service: failed to list purchase invoices: %w", err)
	}
	return sales, purchases, nil
}

func (s *service) RecordPayment(ctx context.Context, p *Payment) error {
	if !p.Amount.IsPositive() {
		return errors.New("service: payment amount must be positive")
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().UTC()
	}
	if err := s.repo.RecordPayment(ctx, p); err != nil {
		if errors.Is(err, ErrInvoiceNotFound) {
			return ErrInvoiceNotFound
		}
		log.Error().Err(err).Int64("invoice_id", p.InvoiceID).Msg("service: failed to record payment")
		return fmt.Errorf("service: failed to record payment: %w", err)
	}
	return nil
}

func (s *service) PartnerUnpaidSummary(ctx context.Context, partnerID int64) UnpaidSummary {
	key := fmt.Sprintf("partner:%d:unpaid", partnerID)
	if data, err := s.cache.Get(ctx, key); err == nil {
		var summary UnpaidSummary
		if err := json.Unmarshal(data, &summary); err == nil {
			return summary
		}
	}

	summary := UnpaidSummary{PartnerID: partnerID, Outstanding: decimal.Zero}
	invoices, err := s.repo.ListPurchaseByPartner(ctx, partnerID)
	if err != nil {
		// Advisory lookup: fall back to the neutral value, never fail.
		log.Debug().Err(err).Int64("partner_id", partnerID).
			Msg("service: unpaid summary lookup failed, returning zero summary")
		return summary
	}

	for i := range invoices {
		inv := &invoices[i]
		if inv.DisplayStatus() == DisplayPaid {
			continue
		}
		summary.Count++
		summary.Outstanding = summary.Outstanding.Add(inv.Remaining())
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, key, data, summaryTTL); err != nil {
			log.Debug().Err(err).Msg("service: failed to cache unpaid summary")
		}
	}
	return summary
}
