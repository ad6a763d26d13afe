package itemrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing item requests.
type Repository interface {
	Create(ctx context.Context, r *ItemRequest) error
	GetByID(ctx context.Context, id int64) (*ItemRequest, error)
	Exists(ctx context.Context, id int64) (bool, error)

	// ListByRequestor returns the user's own requests, newest first.
	ListByRequestor(ctx context.Context, requestorID int64) ([]*ItemRequest, error)

	// ListOthers returns requests made by anyone but userID, newest first.
	ListOthers(ctx context.Context, userID int64, limit, offset int) ([]*ItemRequest, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var requestColumns = []string{"id", "description", "requestor_id", "created"}

func (r *pgxRepository) Create(ctx context.Context, req *ItemRequest) error {
	query, args, err := psql.Insert("public.requests").
		Columns("description", "requestor_id", "created").
		Values(req.Description, req.RequestorID, req.Created).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create request query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&req.ID); err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*ItemRequest, error) {
	query, args, err := psql.Select(requestColumns...).
		From("public.requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get request query failed: %w", err)
	}

	var req ItemRequest
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&req.ID, &req.Description, &req.RequestorID, &req.Created,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get request failed: %w", err)
	}
	return &req, nil
}

func (r *pgxRepository) Exists(ctx context.Context, id int64) (bool, error) {
	sub, args, err := psql.Select("1").
		From("public.requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build request exists query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check request exists failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) ListByRequestor(ctx context.Context, requestorID int64) ([]*ItemRequest, error) {
	q := psql.Select(requestColumns...).
		From("public.requests").
		Where(squirrel.Eq{"requestor_id": requestorID}).
		OrderBy("created DESC", "id DESC")
	return r.queryRequests(ctx, q)
}

func (r *pgxRepository) ListOthers(ctx context.Context, userID int64, limit, offset int) ([]*ItemRequest, error) {
	q := psql.Select(requestColumns...).
		From("public.requests").
		Where(squirrel.NotEq{"requestor_id": userID}).
		OrderBy("created DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}
	return r.queryRequests(ctx, q)
}

func (r *pgxRepository) queryRequests(ctx context.Context, q squirrel.SelectBuilder) ([]*ItemRequest, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list requests query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests failed: %w", err)
	}
	defer rows.Close()

	requests := make([]*ItemRequest, 0)
	for rows.Next() {
		var req ItemRequest
		if err := rows.Scan(&req.ID, &req.Description, &req.RequestorID, &req.Created); err != nil {
			return nil, fmt.Errorf("scan request failed: %w", err)
		}
		requests = append(requests, &req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests failed: %w", err)
	}
	return requests, nil
}
