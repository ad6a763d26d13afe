package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) error
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// mapWriteError turns a unique violation on the email constraint into ErrEmailAlreadyUsed.
func mapWriteError(err error, op string) error {
	var e *pgconn.PgError
	if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
		return ErrEmailAlreadyUsed
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query, args, err := psql.Select("id", "name", "email").
		From("public.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user query failed: %w", err)
	}

	var u User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetByID query failed: %w", err)
	}

	return &u, nil
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	query, args, err := psql.Insert("public.users").
		Columns("name", "email").
		Values(u.Name, u.Email).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create user query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&u.ID); err != nil {
		return mapWriteError(err, "Create user")
	}

	return nil
}

func (r *pgxUserRepository) List(ctx context.Context) ([]*User, error) {
	query, args, err := psql.Select("id", "name", "email").
		From("public.users").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List users failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user failed: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users failed: %w", err)
	}

	return users, nil
}

func (r *pgxUserRepository) Update(ctx context.Context, u *User) error {
	query, args, err := psql.Update("public.users").
		Set("name", u.Name).
		Set("email", u.Email).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, "Update user")
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *pgxUserRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("public.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("Delete user failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
