package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the booking store port. All queries are tenant-scoped.
type Repository interface {
	// Insert writes a new booking after re-checking the practitioner's
	// window under a per-practitioner advisory lock, so two concurrent
	// creates for overlapping times cannot both succeed.
	Insert(ctx context.Context, b *Booking) error
	FindByID(ctx context.Context, tenantID, id string) (*Booking, error)
	List(ctx context.Context, tenantID string, filter Filter) ([]*Booking, int, error)
	FindOverlapping(ctx context.Context, tenantID, practitionerID string, from, to time.Time, statuses []Status, excludeID string) ([]*Booking, error)
	// Update persists status, lifecycle timestamps and audit fields.
	// The write only lands if the row still holds the from status, so a
	// transition lost to a concurrent writer fails instead of clobbering.
	Update(ctx context.Context, b *Booking, from Status) error
	// Reschedule persists a new time under the same guarded check-then-write
	// discipline as Insert, excluding the booking itself.
	Reschedule(ctx context.Context, b *Booking, from Status) error
	FindDueReminders(ctx context.Context, tenantID string, from, to time.Time) ([]*Booking, error)
	// MarkReminderSent flips the reminder flag; flipping twice is a no-op success.
	MarkReminderSent(ctx context.Context, tenantID, id string) error
}

// DB is the subset of pgxpool.Pool the repository needs. Narrowed so
// tests can substitute a mock pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	db     DB
	buffer time.Duration
}

// NewPgxRepository creates a Postgres-backed repository. The buffer is
// applied around candidate intervals in guarded conflict checks and
// must match the engine settings.
func NewPgxRepository(db DB, buffer time.Duration) Repository {
	return &pgxRepository{db: db, buffer: buffer}
}

const bookingColumns = "id, tenant_id, patient_id, practitioner_id, unit_id, " +
	"scheduled_at, duration_minutes, kind, type, status, priority, " +
	"confirmed_at, cancelled_at, cancellation_reason, reminder_sent, " +
	"started_at, ended_at, diagnosis, created_at, updated_at, created_by, updated_by"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var practitioner *string
	if err := row.Scan(
		&b.ID, &b.TenantID, &b.PatientID, &practitioner, &b.UnitID,
		&b.ScheduledAt, &b.DurationMinutes, &b.Kind, &b.Type, &b.Status, &b.Priority,
		&b.ConfirmedAt, &b.CancelledAt, &b.CancellationReason, &b.ReminderSent,
		&b.StartedAt, &b.EndedAt, &b.Diagnosis, &b.CreatedAt, &b.UpdatedAt, &b.CreatedBy, &b.UpdatedBy,
	); err != nil {
		return nil, err
	}
	if practitioner != nil {
		b.PractitionerID = *practitioner
	}
	return &b, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// isExclusion reports whether the write bounced off the overlap
// exclusion or uniqueness constraints (the lost side of a race).
func isExclusion(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.ExclusionViolation || pgErr.Code == pgerrcode.UniqueViolation
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// resolveStaleWrite explains a status-guarded write that hit zero rows:
// either the booking vanished or its status moved under the caller.
func resolveStaleWrite(ctx context.Context, q rowQuerier, tenantID, id string) error {
	query, args, err := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build stale check query failed: %w", err)
	}

	var one int
	if err := q.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("stale check failed: %w", err)
	}
	return ErrConcurrentUpdate
}

// lockPractitioner serializes check-then-write regions per
// (tenant, practitioner) for the duration of the transaction.
func lockPractitioner(ctx context.Context, tx pgx.Tx, tenantID, practitionerID string) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", tenantID+":"+practitionerID)
	if err != nil {
		return fmt.Errorf("acquire practitioner lock failed: %w", err)
	}
	return nil
}

// hasConflict runs the buffered overlap EXISTS query inside tx.
func (r *pgxRepository) hasConflict(ctx context.Context, tx pgx.Tx, b *Booking, excludeID string) (bool, error) {
	bufStart, bufEnd := WithBuffer(b.ScheduledAt, b.End(), r.buffer)

	sub := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"tenant_id": b.TenantID}).
		Where(squirrel.Eq{"practitioner_id": b.PractitionerID}).
		Where(squirrel.Eq{"status": statusStrings(ActiveStatuses)}).
		Where(squirrel.Lt{"scheduled_at": bufEnd}).
		Where(squirrel.Expr("scheduled_at + make_interval(mins => duration_minutes) > ?", bufStart))

	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := sub.ToSql()
	if err != nil {
		return false, fmt.Errorf("build conflict query failed: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check conflict failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) Insert(ctx context.Context, b *Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert booking failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if b.PractitionerID != "" {
		if err := lockPractitioner(ctx, tx, b.TenantID, b.PractitionerID); err != nil {
			return err
		}
		conflict, err := r.hasConflict(ctx, tx, b, "")
		if err != nil {
			return err
		}
		if conflict {
			return ErrTimeConflict
		}
	}

	query, args, err := psql.Insert("public.bookings").
		Columns("tenant_id", "patient_id", "practitioner_id", "unit_id",
			"scheduled_at", "duration_minutes", "kind", "type", "status", "priority",
			"created_by", "updated_by").
		Values(b.TenantID, b.PatientID, nullIfEmpty(b.PractitionerID), b.UnitID,
			b.ScheduledAt, b.DurationMinutes, b.Kind, b.Type, b.Status, b.Priority,
			b.CreatedBy, b.UpdatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if isExclusion(err) {
			return ErrTimeConflict
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) FindByID(ctx context.Context, tenantID, id string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, tenantID string, filter Filter) ([]*Booking, int, error) {
	query := psql.Select(bookingColumns + ", count(*) OVER() AS total_count").
		From("public.bookings").
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.PatientID != "" {
		query = query.Where(squirrel.Eq{"patient_id": filter.PatientID})
	}
	if filter.PractitionerID != "" {
		query = query.Where(squirrel.Eq{"practitioner_id": filter.PractitionerID})
	}
	if filter.UnitID != "" {
		query = query.Where(squirrel.Eq{"unit_id": filter.UnitID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Kind != "" {
		query = query.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.ScheduledFrom != nil {
		query = query.Where(squirrel.GtOrEq{"scheduled_at": filter.ScheduledFrom})
	}
	if filter.ScheduledTo != nil {
		query = query.Where(squirrel.LtOrEq{"scheduled_at": filter.ScheduledTo})
	}

	orderBy := "scheduled_at"
	if filter.SortBy != "" {
		orderBy = filter.SortBy
	}
	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		var practitioner *string
		if err := rows.Scan(
			&b.ID, &b.TenantID, &b.PatientID, &practitioner, &b.UnitID,
			&b.ScheduledAt, &b.DurationMinutes, &b.Kind, &b.Type, &b.Status, &b.Priority,
			&b.ConfirmedAt, &b.CancelledAt, &b.CancellationReason, &b.ReminderSent,
			&b.StartedAt, &b.EndedAt, &b.Diagnosis, &b.CreatedAt, &b.UpdatedAt, &b.CreatedBy, &b.UpdatedBy,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		if practitioner != nil {
			b.PractitionerID = *practitioner
		}
		bookings = append(bookings, &b)
	}

	return bookings, total, nil
}

func (r *pgxRepository) FindOverlapping(ctx context.Context, tenantID, practitionerID string, from, to time.Time, statuses []Status, excludeID string) ([]*Booking, error) {
	query := psql.Select(bookingColumns).
		From("public.bookings").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"practitioner_id": practitionerID}).
		Where(squirrel.Eq{"status": statusStrings(statuses)}).
		Where(squirrel.Lt{"scheduled_at": to}).
		Where(squirrel.Expr("scheduled_at + make_interval(mins => duration_minutes) > ?", from)).
		OrderBy("scheduled_at ASC")

	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overlapping query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("find overlapping failed: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking, from Status) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", b.Status).
		Set("confirmed_at", b.ConfirmedAt).
		Set("cancelled_at", b.CancelledAt).
		Set("cancellation_reason", b.CancellationReason).
		Set("reminder_sent", b.ReminderSent).
		Set("started_at", b.StartedAt).
		Set("ended_at", b.EndedAt).
		Set("diagnosis", b.Diagnosis).
		Set("updated_by", b.UpdatedBy).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "tenant_id": b.TenantID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return resolveStaleWrite(ctx, r.db, b.TenantID, b.ID)
	}
	return nil
}

func (r *pgxRepository) Reschedule(ctx context.Context, b *Booking, from Status) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reschedule failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if b.PractitionerID != "" {
		if err := lockPractitioner(ctx, tx, b.TenantID, b.PractitionerID); err != nil {
			return err
		}
		conflict, err := r.hasConflict(ctx, tx, b, b.ID)
		if err != nil {
			return err
		}
		if conflict {
			return ErrTimeConflict
		}
	}

	query, args, err := psql.Update("public.bookings").
		Set("scheduled_at", b.ScheduledAt).
		Set("duration_minutes", b.DurationMinutes).
		Set("status", b.Status).
		Set("cancelled_at", b.CancelledAt).
		Set("cancellation_reason", b.CancellationReason).
		Set("reminder_sent", b.ReminderSent).
		Set("updated_by", b.UpdatedBy).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID, "tenant_id": b.TenantID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reschedule query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if isExclusion(err) {
			return ErrTimeConflict
		}
		return fmt.Errorf("reschedule booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return resolveStaleWrite(ctx, tx, b.TenantID, b.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reschedule failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) FindDueReminders(ctx context.Context, tenantID string, from, to time.Time) ([]*Booking, error) {
	query, args, err := psql.Select(bookingColumns).
		From("public.bookings").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.Eq{"status": statusStrings([]Status{StatusScheduled, StatusConfirmed})}).
		Where(squirrel.Eq{"reminder_sent": false}).
		Where(squirrel.GtOrEq{"scheduled_at": from}).
		Where(squirrel.LtOrEq{"scheduled_at": to}).
		OrderBy("scheduled_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due reminders query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find due reminders failed: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *pgxRepository) MarkReminderSent(ctx context.Context, tenantID, id string) error {
	query, args, err := psql.Update("public.bookings").
		Set("reminder_sent", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark reminder query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark reminder sent failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectBookings(rows pgx.Rows) ([]*Booking, error) {
	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return bookings, nil
}
