package reservation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookwell/booking-platform-backend/internal/conflict"
	"github.com/bookwell/booking-platform-backend/internal/ledger"
	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
)

// ErrRequestInFlight reports that another request holding the same
// idempotency key has started but not yet finished.
var ErrRequestInFlight = apperror.New(http.StatusConflict, "a request with this idempotency key is already in progress")

// Result is the recorded outcome of a processed booking request. A repeated
// idempotency key returns this instead of re-executing side effects.
type Result struct {
	BookingID   string
	FailureCode string
}

// IdempotencyStore records request outcomes keyed by the caller-supplied
// idempotency key. The key is claimed before the request executes, so two
// concurrent first-time requests cannot both run side effects.
type IdempotencyStore interface {
	// Claim atomically marks the key as in progress. It returns (nil, nil)
	// when the caller now owns the key, the stored result when a prior
	// request completed, and ErrRequestInFlight when another request holds
	// the claim.
	Claim(ctx context.Context, key string) (*Result, error)

	// Put stores the outcome on a claimed key.
	Put(ctx context.Context, key string, res Result) error

	// Forget releases a claim that has no stored outcome, so a retry
	// re-executes.
	Forget(ctx context.Context, key string) error
}

// Failure codes stored for rejected requests, so a retried request surfaces
// the same reason without re-running the decision. Timeouts and transient
// internal errors are deliberately absent: those leave no record and a retry
// re-executes.
const (
	failureInvalidRange     = "invalid_range"
	failureUnknownResource  = "unknown_resource"
	failureNoAvailability   = "no_availability"
	failureLeadTimeTooShort = "lead_time_too_short"
	failureOutsideWindow    = "outside_window"
	failureTooFarInAdvance  = "too_far_in_advance"
)

var failureErrs = map[string]error{
	failureInvalidRange:     conflict.ErrInvalidRange,
	failureUnknownResource:  ledger.ErrUnknownResource,
	failureNoAvailability:   conflict.ErrNoAvailability,
	failureLeadTimeTooShort: conflict.ErrLeadTimeTooShort,
	failureOutsideWindow:    conflict.ErrOutsideWindow,
	failureTooFarInAdvance:  conflict.ErrTooFarInAdvance,
}

// failureCode maps a rejection to its stored code. Errors with no code
// return "", meaning the outcome is not recorded and a retry re-executes.
func failureCode(err error) string {
	for code, sentinel := range failureErrs {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}

func errFromFailureCode(code string) error {
	if err, ok := failureErrs[code]; ok {
		return err
	}
	return fmt.Errorf("unknown recorded failure %q", code)
}

// MemoryIdempotencyStore keeps results in a map, for tests and embedding.
// A nil entry marks an in-flight claim.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	results map[string]*Result
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{results: make(map[string]*Result)}
}

func (s *MemoryIdempotencyStore) Claim(_ context.Context, key string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[key]
	if !ok {
		s.results[key] = nil
		return nil, nil
	}
	if res == nil {
		return nil, ErrRequestInFlight
	}
	copied := *res
	return &copied, nil
}

func (s *MemoryIdempotencyStore) Put(_ context.Context, key string, res Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = &res
	return nil
}

func (s *MemoryIdempotencyStore) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.results[key]; ok && res == nil {
		delete(s.results, key)
	}
	return nil
}

type pgxIdempotencyStore struct {
	pool *pgxpool.Pool
}

func NewPgxIdempotencyStore(pool *pgxpool.Pool) IdempotencyStore {
	return &pgxIdempotencyStore{pool: pool}
}

func (s *pgxIdempotencyStore) Claim(ctx context.Context, key string) (*Result, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Insert("public.idempotency_keys").
		Columns("key").
		Values(key).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build idempotency claim query failed: %w", err)
	}

	ct, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key failed: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil, nil
	}

	// The key already exists: either a finished result or a claim another
	// request still holds.
	sql, args, err = psql.Select("booking_id", "failure_code").
		From("public.idempotency_keys").
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build idempotency get query failed: %w", err)
	}

	var bookingID, failure *string
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&bookingID, &failure); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The competing claim was forgotten between our insert and read.
			return nil, ErrRequestInFlight
		}
		return nil, fmt.Errorf("get idempotency key failed: %w", err)
	}
	if bookingID == nil && failure == nil {
		return nil, ErrRequestInFlight
	}

	var res Result
	if bookingID != nil {
		res.BookingID = *bookingID
	}
	if failure != nil {
		res.FailureCode = *failure
	}
	return &res, nil
}

func (s *pgxIdempotencyStore) Put(ctx context.Context, key string, res Result) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Update("public.idempotency_keys").
		Set("booking_id", nullable(res.BookingID)).
		Set("failure_code", nullable(res.FailureCode)).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build idempotency put query failed: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("put idempotency key failed: %w", err)
	}
	return nil
}

func (s *pgxIdempotencyStore) Forget(ctx context.Context, key string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Delete("public.idempotency_keys").
		Where(squirrel.Eq{"key": key, "booking_id": nil, "failure_code": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build idempotency forget query failed: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("forget idempotency key failed: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
