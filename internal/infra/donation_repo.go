package infra

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vovarama1992/edushare/internal/domain"
	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDonationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresDonationRepo(pool *pgxpool.Pool) ports.DonationRepository {
	return &PostgresDonationRepo{pool: pool}
}

func (r *PostgresDonationRepo) Insert(ctx context.Context, d *models.DonationRequest) error {
	query := `
		INSERT INTO donation_requests (id, name, address, district, grade, school, phone_number,
			category, description, status, submitted_from_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query,
		d.ID, d.Name, d.Address, d.District, d.Grade, d.School, d.PhoneNumber,
		d.Category, d.Description, d.Status, d.SubmittedFromIP,
	)
	if err := row.Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		return fmt.Errorf("insert donation request: %w", err)
	}
	return nil
}

func (r *PostgresDonationRepo) List(ctx context.Context, f models.DonationFilter) ([]models.DonationRequest, error) {
	var conds []string
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.District != "" {
		args = append(args, f.District)
		conds = append(conds, fmt.Sprintf("district = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, district, grade, school, phone_number, category,
			description, status, submitted_from_ip, created_at, updated_at
		FROM donation_requests `+where+`
		ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list donation requests: %w", err)
	}
	defer rows.Close()

	out := []models.DonationRequest{}
	for rows.Next() {
		var d models.DonationRequest
		err := rows.Scan(&d.ID, &d.Name, &d.Address, &d.District, &d.Grade, &d.School, &d.PhoneNumber,
			&d.Category, &d.Description, &d.Status, &d.SubmittedFromIP, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan donation request: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresDonationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DonationStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE donation_requests SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update donation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
