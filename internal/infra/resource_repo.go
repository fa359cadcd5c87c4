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

type PostgresResourceRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresResourceRepo(pool *pgxpool.Pool) ports.ResourceRepository {
	return &PostgresResourceRepo{pool: pool}
}

const baseColumns = `id, title, description, url, level, stream, subject, language,
	contributor_id, contributor_name, is_anonymous, status,
	approved_at, approved_by, created_at, updated_at`

const (
	materialColumns = baseColumns + `, category`
	sessionColumns  = baseColumns + `, session_type, to_char(session_date, 'YYYY-MM-DD'), start_time, end_time`
)

func columnsFor(t models.ResourceType) string {
	if t == models.ResourceSession {
		return sessionColumns
	}
	return materialColumns
}

type rowScanner interface {
	Scan(dest ...any) error
}

func baseDest(b *models.ResourceBase) []any {
	return []any{
		&b.ID, &b.Title, &b.Description, &b.URL, &b.Level, &b.Stream, &b.Subject, &b.Language,
		&b.ContributorID, &b.ContributorName, &b.IsAnonymous, &b.Status,
		&b.ApprovedAt, &b.ApprovedBy, &b.CreatedAt, &b.UpdatedAt,
	}
}

func scanResource(t models.ResourceType, row rowScanner) (*models.Resource, error) {
	if t == models.ResourceSession {
		var s models.Session
		dest := append(baseDest(&s.ResourceBase), &s.SessionType, &s.SessionDate, &s.StartTime, &s.EndTime)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		return &models.Resource{Type: t, Session: &s}, nil
	}

	var m models.Material
	dest := append(baseDest(&m.ResourceBase), &m.Category)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &models.Resource{Type: models.ResourceMaterial, Material: &m}, nil
}

func (r *PostgresResourceRepo) InsertMaterial(ctx context.Context, m *models.Material) error {
	query := `
		INSERT INTO materials (id, title, description, url, category, level, stream, subject, language,
			contributor_id, contributor_name, is_anonymous, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query,
		m.ID, m.Title, m.Description, m.URL, m.Category, m.Level, m.Stream, m.Subject, m.Language,
		m.ContributorID, m.ContributorName, m.IsAnonymous, m.Status,
	)
	if err := row.Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (r *PostgresResourceRepo) InsertSession(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (id, title, description, url, session_type, session_date, start_time, end_time,
			level, stream, subject, language, contributor_id, contributor_name, is_anonymous, status)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query,
		s.ID, s.Title, s.Description, s.URL, s.SessionType, s.SessionDate, s.StartTime, s.EndTime,
		s.Level, s.Stream, s.Subject, s.Language, s.ContributorID, s.ContributorName, s.IsAnonymous, s.Status,
	)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// listWhere builds the approved-only filter. Table and columns never come from input.
func listWhere(f models.ResourceFilter) (string, []any) {
	conds := []string{"status = 'approved'"}
	var args []any

	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Level != "" {
		add("level = $%d", f.Level)
	}
	if f.Stream != "" {
		add("$%d = ANY(stream)", f.Stream)
	}
	if f.Subject != "" {
		add("subject = $%d", f.Subject)
	}
	if f.Language != "" {
		add("language = $%d", f.Language)
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresResourceRepo) ListApproved(ctx context.Context, f models.ResourceFilter) ([]models.Resource, int, error) {
	where, args := listWhere(f)
	table := f.Type.Table()

	var total int
	countQuery := `SELECT count(*) FROM ` + table + ` ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}

	args = append(args, f.Limit, f.Offset())
	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		columnsFor(f.Type), table, where, len(args)-1, len(args))

	out, err := r.query(ctx, f.Type, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresResourceRepo) query(ctx context.Context, t models.ResourceType, query string, args ...any) ([]models.Resource, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.Table(), err)
	}
	defer rows.Close()

	out := []models.Resource{}
	for rows.Next() {
		res, err := scanResource(t, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Table(), err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *PostgresResourceRepo) GetByID(ctx context.Context, t models.ResourceType, id uuid.UUID) (*models.Resource, error) {
	query := `SELECT ` + columnsFor(t) + ` FROM ` + t.Table() + ` WHERE id = $1`

	res, err := scanResource(t, r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "get "+string(t))
	}
	return res, nil
}

func (r *PostgresResourceRepo) Delete(ctx context.Context, t models.ResourceType, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+t.Table()+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresResourceRepo) ListPending(ctx context.Context, t models.ResourceType) ([]models.Resource, error) {
	query := `SELECT ` + columnsFor(t) + ` FROM ` + t.Table() + `
		WHERE status = 'pending'
		ORDER BY created_at ASC`
	return r.query(ctx, t, query)
}

func (r *PostgresResourceRepo) Decide(
	ctx context.Context,
	t models.ResourceType,
	id uuid.UUID,
	status models.ApprovalStatus,
	by uuid.UUID,
) (bool, error) {
	query := `
		UPDATE ` + t.Table() + `
		SET status = $1, approved_at = now(), approved_by = $2, updated_at = now()
		WHERE id = $3 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query, status, by, id)
	if err != nil {
		return false, fmt.Errorf("decide %s: %w", t, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresResourceRepo) ListByContributor(ctx context.Context, t models.ResourceType, userID uuid.UUID) ([]models.Resource, error) {
	query := `SELECT ` + columnsFor(t) + ` FROM ` + t.Table() + `
		WHERE contributor_id = $1
		ORDER BY created_at DESC`
	return r.query(ctx, t, query, userID)
}

func (r *PostgresResourceRepo) CountByContributor(ctx context.Context, t models.ResourceType, userID uuid.UUID) (map[models.ApprovalStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, count(*) FROM `+t.Table()+` WHERE contributor_id = $1 GROUP BY status`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("count by contributor: %w", err)
	}
	defer rows.Close()

	out := map[models.ApprovalStatus]int{}
	for rows.Next() {
		var st models.ApprovalStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}
