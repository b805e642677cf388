package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, w *Window) error
	GetByID(ctx context.Context, id string) (*Window, error)
	ListByResource(ctx context.Context, resourceID string) ([]*Window, error)
	Update(ctx context.Context, w *Window) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, w *Window) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.availability_windows").
		Columns("resource_id", "start_time", "end_time", "capacity").
		Values(w.ResourceID, w.StartTime, w.EndTime, w.Capacity).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create window query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&w.ID, &w.CreatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Window, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "resource_id", "start_time", "end_time", "capacity", "created_at").
		From("public.availability_windows").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get window query failed: %w", err)
	}

	var w Window
	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&w.ID, &w.ResourceID, &w.StartTime, &w.EndTime, &w.Capacity, &w.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get window failed: %w", err)
	}
	return &w, nil
}

func (r *pgxRepository) ListByResource(ctx context.Context, resourceID string) ([]*Window, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "resource_id", "start_time", "end_time", "capacity", "created_at").
		From("public.availability_windows").
		Where(squirrel.Eq{"resource_id": resourceID}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list windows query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list windows failed: %w", err)
	}
	defer rows.Close()

	var windows []*Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.ID, &w.ResourceID, &w.StartTime, &w.EndTime, &w.Capacity, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan window failed: %w", err)
		}
		windows = append(windows, &w)
	}

	return windows, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, w *Window) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.availability_windows").
		Set("start_time", w.StartTime).
		Set("end_time", w.EndTime).
		Set("capacity", w.Capacity).
		Where(squirrel.Eq{"id": w.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update window query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update window failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.availability_windows").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete window query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete window failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
