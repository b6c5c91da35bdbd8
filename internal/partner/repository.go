package partner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPartnerNotFound = errors.New("partner not found")

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Partner, error)
	Search(ctx context.Context, query string, kind Kind, limit int) ([]Partner, error)
	Create(ctx context.Context, p *Partner) (int64, error)
	Update(ctx context.Context, p *Partner) error
	ListManagers(ctx context.Context) ([]Manager, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const partnerColumns = `id, kind, name, vat_number, country, city, email, phone, created_at, updated_at`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Partner, error) {
	var p Partner
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Kind, &p.Name, &p.VATNumber, &p.Country, &p.City,
		&p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("repository: failed to select partner %d: %w", id, err)
	}
	return &p, nil
}

func (r *postgresRepository) Search(ctx context.Context, query string, kind Kind, limit int) ([]Partner, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	sql := `SELECT ` + partnerColumns + ` FROM partners WHERE name ILIKE $1`
	args := []any{"%" + query + "%"}
	if kind != "" {
		args = append(args, string(kind))
		sql += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search partners: %w", err)
	}
	defer rows.Close()

	partners := make([]Partner, 0)
	for rows.Next() {
		var p Partner
		err := rows.Scan(
			&p.ID, &p.Kind, &p.Name, &p.VATNumber, &p.Country, &p.City,
			&p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan partner: %w", err)
		}
		partners = append(partners, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating partners: %w", err)
	}
	return partners, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Partner) (int64, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO partners (kind, name, vat_number, country, city, email, phone, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		p.Kind, p.Name, p.VATNumber, p.Country, p.City, p.Email, p.Phone, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert partner: %w", err)
	}
	return id, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Partner) error {
	query := `
		UPDATE partners SET
			kind = $1, name = $2, vat_number = $3, country = $4, city = $5,
			email = $6, phone = $7, updated_at = $8
		WHERE id = $9`

	cmdTag, err := r.db.Exec(ctx, query,
		p.Kind, p.Name, p.VATNumber, p.Country, p.City, p.Email, p.Phone,
		time.Now().UTC(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update partner %d: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

func (r *postgresRepository) ListManagers(ctx context.Context) ([]Manager, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, email, created_at FROM managers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query managers: %w", err)
	}
	defer rows.Close()

	managers := make([]Manager, 0)
	for rows.Next() {
		var m Manager
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan manager: %w", err)
		}
		managers = append(managers, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating managers: %w", err)
	}
	return managers, nil
}
