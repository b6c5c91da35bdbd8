package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

type Repository interface {
	ListSalesByOrder(ctx context.Context, orderID int64) ([]SalesInvoice, error)
	ListPurchaseByOrder(ctx context.Context, orderID int64) ([]PurchaseInvoice, error)
	ListPurchaseByPartner(ctx context.Context, partnerID int64) ([]PurchaseInvoice, error)
	CreateSales(ctx context.Context, inv *SalesInvoice) (int64, error)
	CreatePurchase(ctx context.Context, inv *PurchaseInvoice) (int64, error)
	UpdateSalesStatus(ctx context.Context, id int64, status Status) error
	UpdatePurchaseStatus(ctx context.Context, id int64, status Status) error
	DeleteSales(ctx context.Context, id int64) error
	DeletePurchase(ctx context.Context, id int64) error
	// RecordPayment inserts the payment and bumps the invoice's paid amount
	// and status in one transaction.
	RecordPayment(ctx context.Context, p *Payment) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const salesColumns = `
	id, order_id, client_id, number, total_net::text, total_gross::text,
	paid_amount::text, status, issue_date, due_date, created_at, updated_at`

func (r *postgresRepository) ListSalesByOrder(ctx context.Context, orderID int64) ([]SalesInvoice, error) {
	query := `SELECT ` + salesColumns + ` FROM sales_invoices WHERE order_id = $1 ORDER BY issue_date DESC`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query sales invoices for order %d: %w", orderID, err)
	}
	defer rows.Close()

	invoices := make([]SalesInvoice, 0)
	for rows.Next() {
		var (
			inv                    SalesInvoice
			totalNet, totalGross   string
			paidAmount             string
		)
		err := rows.Scan(
			&inv.ID, &inv.OrderID, &inv.ClientID, &inv.Number, &totalNet, &totalGross,
			&paidAmount, &inv.Status, &inv.IssueDate, &inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan sales invoice: %w", err)
		}
		if err := parseAmounts(&inv.TotalNet, totalNet, &inv.TotalGross, totalGross, &inv.PaidAmount, paidAmount); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating sales invoices: %w", err)
	}
	return invoices, nil
}

const purchaseColumns = `
	id, order_id, partner_id, carrier_cost_id, number, total_net::text,
	total_gross::text, paid_amount::text, status, issue_date, due_date,
	created_at, updated_at`

func (r *postgresRepository) listPurchase(ctx context.Context, where string, arg any) ([]PurchaseInvoice, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchase_invoices WHERE ` + where + ` ORDER BY issue_date DESC`
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query purchase invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]PurchaseInvoice, 0)
	for rows.Next() {
		var (
			inv                  PurchaseInvoice
			totalNet, totalGross string
			paidAmount           string
		)
		err := rows.Scan(
			&inv.ID, &inv.OrderID, &inv.PartnerID, &inv.CarrierCostID, &inv.Number,
			&totalNet, &totalGross, &paidAmount, &inv.Status, &inv.IssueDate,
			&inv.DueDate, &inv.CreatedAt, &inv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan purchase invoice: %w", err)
		}
		if err := parseAmounts(&inv.TotalNet, totalNet, &inv.TotalGross, totalGross, &inv.PaidAmount, paidAmount); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating purchase invoices: %w", err)
	}
	return invoices, nil
}

func (r *postgresRepository) ListPurchaseByOrder(ctx context.Context, orderID int64) ([]PurchaseInvoice, error) {
	return r.listPurchase(ctx, "order_id = $1", orderID)
}

func (r *postgresRepository) ListPurchaseByPartner(ctx context.Context, partnerID int64) ([]PurchaseInvoice, error) {
	return r.listPurchase(ctx, "partner_id = $1", partnerID)
}

func (r *postgresRepository) CreateSales(ctx context.Context, inv *SalesInvoice) (int64, error) {
	if inv.Status == "" {
		inv.Status = StatusUnpaid
	}
	now := time.Now().UTC()
	query := `
		INSERT INTO sales_invoices (
			order_id, client_id, number, total_net, total_gross, paid_amount,
			status, issue_date, due_date, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		inv.OrderID, inv.ClientID, inv.Number, inv.TotalNet.String(),
		inv.TotalGross.String(), inv.PaidAmount.String(), inv.Status,
		inv.IssueDate, inv.DueDate, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert sales invoice: %w", err)
	}
	return id, nil
}

func (r *postgresRepository) CreatePurchase(ctx context.Context, inv *PurchaseInvoice) (int64, error) {
	if inv.Status == "" {
		inv.Status = StatusUnpaid
	}
	now := time.Now().UTC()
	query := `
		INSERT INTO purchase_invoices (
			order_id, partner_id, carrier_cost_id, number, total_net, total_gross,
			paid_amount, status, issue_date, due_date, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		inv.OrderID, inv.PartnerID, inv.CarrierCostID, inv.Number,
		inv.TotalNet.String(), inv.TotalGross.String(), inv.PaidAmount.String(),
		inv.Status, inv.IssueDate, inv.DueDate, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert purchase invoice: %w", err)
	}
	return id, nil
}

func (r *postgresRepository) updateStatus(ctx context.Context, table string, id int64, status Status) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3`, table)
	cmdTag, err := r.db.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("repository: failed to update %s %d: %w", table, id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateSalesStatus(ctx context.Context, id int64, status Status) error {
	return r.updateStatus(ctx, "sales_invoices", id, status)
}

func (r *postgresRepository) UpdatePurchaseStatus(ctx context.Context, id int64, status Status) error {
	return r.updateStatus(ctx, "purchase_invoices", id, status)
}

func (r *postgresRepository) DeleteSales(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sales_invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete sales invoice %d: %w", id, err)
	}
	return nil
}

func (r *postgresRepository) DeletePurchase(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM purchase_invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete purchase invoice %d: %w", id, err)
	}
	return nil
}

func (r *postgresRepository) RecordPayment(ctx context.Context, p *Payment) (err error) {
	table := "sales_invoices"
	if p.InvoiceKind == KindPurchase {
		table = "purchase_invoices"
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var totalGross, paidAmount string
	query := fmt.Sprintf(`SELECT total_gross::text, paid_amount::text FROM %s WHERE id = $1 FOR UPDATE`, table)
	if err = tx.QueryRow(ctx, query, p.InvoiceID).Scan(&totalGross, &paidAmount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvoiceNotFound
		}
		return fmt.Errorf("repository: failed to lock invoice %d: %w", p.InvoiceID, err)
	}

	total, err := decimal.NewFromString(totalGross)
	if err != nil {
		return fmt.Errorf("parse total_gross: %w", err)
	}
	paid, err := decimal.NewFromString(paidAmount)
	if err != nil {
		return fmt.Errorf("parse paid_amount: %w", err)
	}

	newPaid := paid.Add(p.Amount)
	status := StatusPartiallyPaid
	if newPaid.GreaterThanOrEqual(total) {
		status = StatusPaid
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`INSERT INTO payments (invoice_kind, invoice_id, amount, paid_at, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		p.InvoiceKind, p.InvoiceID, p.Amount.String(), p.PaidAt, now,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert payment: %w", err)
	}

	update := fmt.Sprintf(`UPDATE %s SET paid_amount = $1, status = $2, updated_at = $3 WHERE id = $4`, table)
	if _, err = tx.Exec(ctx, update, newPaid.String(), status, now, p.InvoiceID); err != nil {
		return fmt.Errorf("repository: failed to update invoice %d after payment: %w", p.InvoiceID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit payment transaction: %w", err)
	}
	return nil
}

func parseAmounts(dst1 *decimal.Decimal, src1 string, dst2 *decimal.Decimal, src2 string, dst3 *decimal.Decimal, src3 string) error {
	var err error
	if *dst1, err = decimal.NewFromString(src1); err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	if *dst2, err = decimal.NewFromString(src2); err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	if *dst3, err = decimal.NewFromString(src3); err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	return nil
}
