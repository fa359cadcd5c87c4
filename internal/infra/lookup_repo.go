package infra

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/Vovarama1992/edushare/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresLookupRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresLookupRepo(pool *pgxpool.Pool) ports.LookupRepository {
	return &PostgresLookupRepo{pool: pool}
}

type codeName struct {
	Code  string
	Name  string
	Order int
}

// codeNames covers the three lookup tables that are just code/name/order.
func (r *PostgresLookupRepo) codeNames(ctx context.Context, table string) ([]codeName, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, display_order FROM `+table+`
		WHERE is_active = true
		ORDER BY display_order, code`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []codeName
	for rows.Next() {
		var c codeName
		if err := rows.Scan(&c.Code, &c.Name, &c.Order); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresLookupRepo) Levels(ctx context.Context) ([]models.Level, error) {
	rows, err := r.codeNames(ctx, "levels")
	if err != nil {
		return nil, err
	}
	out := make([]models.Level, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Level{Code: row.Code, Name: row.Name, DisplayOrder: row.Order})
	}
	return out, nil
}

func (r *PostgresLookupRepo) Languages(ctx context.Context) ([]models.Language, error) {
	rows, err := r.codeNames(ctx, "languages")
	if err != nil {
		return nil, err
	}
	out := make([]models.Language, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Language{Code: row.Code, Name: row.Name, DisplayOrder: row.Order})
	}
	return out, nil
}

func (r *PostgresLookupRepo) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.codeNames(ctx, "material_categories")
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Category{Code: row.Code, Name: row.Name, DisplayOrder: row.Order})
	}
	return out, nil
}

func (r *PostgresLookupRepo) Streams(ctx context.Context) ([]models.Stream, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, level_code, display_order FROM streams
		WHERE is_active = true
		ORDER BY display_order, code`)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	var out []models.Stream
	for rows.Next() {
		var s models.Stream
		if err := rows.Scan(&s.Code, &s.Name, &s.LevelCode, &s.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan streams: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresLookupRepo) Subjects(ctx context.Context) ([]models.Subject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, stream_code, level_code, display_order FROM subjects
		WHERE is_active = true
		ORDER BY display_order, id`)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	var out []models.Subject
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.Code, &s.Name, &s.StreamCode, &s.LevelCode, &s.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scan subjects: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresLookupRepo) SubjectExists(ctx context.Context, code, levelCode string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subjects WHERE code = $1 AND level_code = $2)`,
		code, levelCode,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("subject exists: %w", err)
	}
	return ok, nil
}

// Upsert writes every lookup row in one transaction, re-activating rows it touches.
func (r *PostgresLookupRepo) Upsert(ctx context.Context, l *models.Lookups) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		for _, v := range l.Levels {
			batch.Queue(`
				INSERT INTO levels (code, name, display_order, is_active) VALUES ($1, $2, $3, true)
				ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, display_order = EXCLUDED.display_order, is_active = true`,
				v.Code, v.Name, v.DisplayOrder)
		}
		for _, v := range l.Streams {
			batch.Queue(`
				INSERT INTO streams (code, name, level_code, display_order, is_active) VALUES ($1, $2, $3, $4, true)
				ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, level_code = EXCLUDED.level_code,
					display_order = EXCLUDED.display_order, is_active = true`,
				v.Code, v.Name, v.LevelCode, v.DisplayOrder)
		}
		for _, v := range l.Languages {
			batch.Queue(`
				INSERT INTO languages (code, name, display_order, is_active) VALUES ($1, $2, $3, true)
				ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, display_order = EXCLUDED.display_order, is_active = true`,
				v.Code, v.Name, v.DisplayOrder)
		}
		for _, v := range l.Categories {
			batch.Queue(`
				INSERT INTO material_categories (code, name, display_order, is_active) VALUES ($1, $2, $3, true)
				ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, display_order = EXCLUDED.display_order, is_active = true`,
				v.Code, v.Name, v.DisplayOrder)
		}
		for _, v := range l.Subjects {
			batch.Queue(`
				INSERT INTO subjects (code, name, stream_code, level_code, display_order, is_active) VALUES ($1, $2, $3, $4, $5, true)
				ON CONFLICT (code, stream_code, level_code) DO UPDATE SET name = EXCLUDED.name,
					display_order = EXCLUDED.display_order, is_active = true`,
				v.Code, v.Name, v.StreamCode, v.LevelCode, v.DisplayOrder)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert lookups: %w", err)
		}
		return nil
	})
}
