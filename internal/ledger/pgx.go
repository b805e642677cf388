package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookwell/booking-platform-backend/internal/timerange"
)

// pgxStore persists ledger state in Postgres: availability windows are read
// from the availability module's table, holds and audit entries live in
// dedicated tables.
type pgxStore struct {
	pool *pgxpool.Pool
}

func NewPgxStore(pool *pgxpool.Pool) Store {
	return &pgxStore{pool: pool}
}

func (s *pgxStore) ResourceExists(ctx context.Context, resourceID string) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select("1").
		From("public.resources").
		Where(squirrel.Eq{"id": resourceID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build resource exists query failed: %w", err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check resource exists failed: %w", err)
	}
	return exists, nil
}

func (s *pgxStore) WindowsOverlapping(ctx context.Context, resourceID string, r timerange.Range) ([]Window, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select("start_time", "end_time", "capacity").
		From("public.availability_windows").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Lt{"start_time": r.End}).
		Where(squirrel.Gt{"end_time": r.Start}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build windows query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list windows failed: %w", err)
	}
	defer rows.Close()

	var out []Window
	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.Range.Start, &w.Range.End, &w.Capacity); err != nil {
			return nil, fmt.Errorf("scan window failed: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *pgxStore) HoldsOverlapping(ctx context.Context, resourceID string, r timerange.Range) ([]Hold, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select("resource_id", "booking_id", "start_time", "end_time").
		From("public.slot_holds").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Lt{"start_time": r.End}).
		Where(squirrel.Gt{"end_time": r.Start}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build holds query failed: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list holds failed: %w", err)
	}
	defer rows.Close()

	var out []Hold
	for rows.Next() {
		var h Hold
		if err := rows.Scan(&h.ResourceID, &h.BookingID, &h.Range.Start, &h.Range.End); err != nil {
			return nil, fmt.Errorf("scan hold failed: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *pgxStore) InsertHold(ctx context.Context, h Hold) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Insert("public.slot_holds").
		Columns("resource_id", "booking_id", "start_time", "end_time").
		Values(h.ResourceID, h.BookingID, h.Range.Start, h.Range.End).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert hold query failed: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert hold failed: %w", err)
	}
	return nil
}

func (s *pgxStore) UpdateHoldRange(ctx context.Context, resourceID, bookingID string, r timerange.Range) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Update("public.slot_holds").
		Set("start_time", r.Start).
		Set("end_time", r.End).
		Where(squirrel.Eq{"resource_id": resourceID, "booking_id": bookingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update hold query failed: %w", err)
	}

	ct, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update hold failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("no hold for booking %s", bookingID)
	}
	return nil
}

func (s *pgxStore) DeleteHold(ctx context.Context, resourceID, bookingID string) (*Hold, error) {
	const query = `
		DELETE FROM public.slot_holds
		WHERE resource_id = $1 AND booking_id = $2
		RETURNING resource_id, booking_id, start_time, end_time
	`

	var h Hold
	err := s.pool.QueryRow(ctx, query, resourceID, bookingID).
		Scan(&h.ResourceID, &h.BookingID, &h.Range.Start, &h.Range.End)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("delete hold failed: %w", err)
	}
	return &h, nil
}

func (s *pgxStore) AppendEntry(ctx context.Context, resourceID string, op Op, bookingID string, r timerange.Range) (int64, error) {
	// Seq is assigned inside the insert so it stays gapless and monotonic per
	// resource; the ledger's per-resource lock prevents concurrent appends.
	const query = `
		INSERT INTO public.ledger_entries (resource_id, seq, op, booking_id, start_time, end_time)
		SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4, $5
		FROM public.ledger_entries
		WHERE resource_id = $1
		RETURNING seq
	`

	var seq int64
	if err := s.pool.QueryRow(ctx, query, resourceID, op, bookingID, r.Start, r.End).Scan(&seq); err != nil {
		return 0, fmt.Errorf("append ledger entry failed: %w", err)
	}
	return seq, nil
}
