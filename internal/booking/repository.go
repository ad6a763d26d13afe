package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Booking Store. It owns booking records and assigns their ids.
type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)

	// Decide moves a WAITING booking to status atomically.
	// It returns ErrAlreadyDecided when the booking is no longer WAITING.
	Decide(ctx context.Context, id int64, status Status) (*Booking, error)

	// List returns the bookings matching q, ordered by q.Spec.
	List(ctx context.Context, q Query) ([]*Booking, error)

	// ListStarted returns APPROVED bookings of the items with start <= asOf,
	// ordered by end DESC then id ASC.
	ListStarted(ctx context.Context, itemIDs []int64, asOf time.Time) ([]*Booking, error)

	// ListUpcoming returns APPROVED bookings of the items with start > asOf,
	// ordered by end ASC then id ASC.
	ListUpcoming(ctx context.Context, itemIDs []int64, asOf time.Time) ([]*Booking, error)

	// ExistsFinished reports whether the booker has a booking of the item that ended before asOf.
	ExistsFinished(ctx context.Context, bookerID, itemID int64, asOf time.Time) (bool, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.start_date", "b.end_date", "b.item_id", "i.name", "i.owner_id",
	"b.booker_id", "u.name", "b.status",
}

func selectBookings() squirrel.SelectBuilder {
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.items i ON b.item_id = i.id").
		Join("public.users u ON b.booker_id = u.id")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.Start, &b.End, &b.ItemID, &b.ItemName, &b.OwnerID,
		&b.BookerID, &b.BookerName, &b.Status,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) queryBookings(ctx context.Context, q squirrel.SelectBuilder) ([]*Booking, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	bookings := make([]*Booking, 0)
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

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("start_date", "end_date", "item_id", "booker_id", "status").
		Values(b.Start, b.End, b.ItemID, b.BookerID, b.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) Decide(ctx context.Context, id int64, status Status) (*Booking, error) {
	query, args, err := psql.Update("public.bookings").
		Set("status", status).
		Where(squirrel.Eq{"id": id, "status": StatusWaiting}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build decide booking query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("decide booking failed: %w", err)
	}

	// Either the booking is gone or another decision won.
	if ct.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyDecided
	}

	return r.GetByID(ctx, id)
}

func (r *pgxRepository) List(ctx context.Context, q Query) ([]*Booking, error) {
	query := selectBookings()

	switch q.Role {
	case RoleOwner:
		query = query.Where(squirrel.Eq{"i.owner_id": q.SubjectID})
	default:
		query = query.Where(squirrel.Eq{"b.booker_id": q.SubjectID})
	}

	if q.Spec.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": q.Spec.Status})
	}

	switch q.Spec.Window {
	case WindowCurrent:
		query = query.
			Where(squirrel.LtOrEq{"b.start_date": q.Now}).
			Where(squirrel.GtOrEq{"b.end_date": q.Now})
	case WindowPast:
		query = query.Where(squirrel.Lt{"b.end_date": q.Now})
	case WindowFuture:
		query = query.Where(squirrel.Gt{"b.start_date": q.Now})
	}

	orderBy := "b.start_date DESC"
	if q.Spec.SortBy == SortByEnd {
		orderBy = "b.end_date DESC"
	}
	query = query.OrderBy(orderBy, "b.id DESC")

	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit)).Offset(uint64(q.Offset))
	}

	return r.queryBookings(ctx, query)
}

func (r *pgxRepository) ListStarted(ctx context.Context, itemIDs []int64, asOf time.Time) ([]*Booking, error) {
	if len(itemIDs) == 0 {
		return []*Booking{}, nil
	}
	query := selectBookings().
		Where(squirrel.Eq{"b.item_id": itemIDs}).
		Where(squirrel.Eq{"b.status": StatusApproved}).
		Where(squirrel.LtOrEq{"b.start_date": asOf}).
		OrderBy("b.end_date DESC", "b.id ASC")
	return r.queryBookings(ctx, query)
}

func (r *pgxRepository) ListUpcoming(ctx context.Context, itemIDs []int64, asOf time.Time) ([]*Booking, error) {
	if len(itemIDs) == 0 {
		return []*Booking{}, nil
	}
	query := selectBookings().
		Where(squirrel.Eq{"b.item_id": itemIDs}).
		Where(squirrel.Eq{"b.status": StatusApproved}).
		Where(squirrel.Gt{"b.start_date": asOf}).
		OrderBy("b.end_date ASC", "b.id ASC")
	return r.queryBookings(ctx, query)
}

func (r *pgxRepository) ExistsFinished(ctx context.Context, bookerID, itemID int64, asOf time.Time) (bool, error) {
	sub, args, err := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"booker_id": bookerID, "item_id": itemID}).
		Where(squirrel.Lt{"end_date": asOf}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build finished booking query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check finished booking failed: %w", err)
	}
	return exists, nil
}
