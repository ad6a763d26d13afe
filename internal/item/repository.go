package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing items and their comments.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	Update(ctx context.Context, it *Item) error

	// ListByOwner returns the owner's items ordered by id.
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*Item, error)

	// ListByRequests returns the items answering any of the requests, ordered by id.
	ListByRequests(ctx context.Context, requestIDs []int64) ([]*Item, error)

	// Search returns available items whose name or description contains text, ignoring case.
	Search(ctx context.Context, text string, limit, offset int) ([]*Item, error)

	AddComment(ctx context.Context, c *Comment) error

	// ListComments returns the comments of the items, newest first.
	ListComments(ctx context.Context, itemIDs []int64) ([]*Comment, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var itemColumns = []string{"id", "name", "description", "available", "owner_id", "request_id"}

func (r *pgxRepository) Create(ctx context.Context, it *Item) error {
	query, args, err := psql.Insert("public.items").
		Columns("name", "description", "available", "owner_id", "request_id").
		Values(it.Name, it.Description, it.Available, it.OwnerID, it.RequestID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create item query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&it.ID); err != nil {
		return fmt.Errorf("create item failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From("public.items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get item query failed: %w", err)
	}

	var it Item
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID, &it.RequestID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item failed: %w", err)
	}
	return &it, nil
}

func (r *pgxRepository) Update(ctx context.Context, it *Item) error {
	query, args, err := psql.Update("public.items").
		Set("name", it.Name).
		Set("description", it.Description).
		Set("available", it.Available).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*Item, error) {
	q := psql.Select(itemColumns...).
		From("public.items").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("id ASC")
	return r.queryItems(ctx, paginate(q, limit, offset))
}

func (r *pgxRepository) ListByRequests(ctx context.Context, requestIDs []int64) ([]*Item, error) {
	if len(requestIDs) == 0 {
		return []*Item{}, nil
	}
	q := psql.Select(itemColumns...).
		From("public.items").
		Where(squirrel.Eq{"request_id": requestIDs}).
		OrderBy("id ASC")
	return r.queryItems(ctx, q)
}

func (r *pgxRepository) Search(ctx context.Context, text string, limit, offset int) ([]*Item, error) {
	pattern := "%" + text + "%"
	q := psql.Select(itemColumns...).
		From("public.items").
		Where(squirrel.Eq{"available": true}).
		Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
		}).
		OrderBy("id ASC")
	return r.queryItems(ctx, paginate(q, limit, offset))
}

func paginate(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}
	return q
}

func (r *pgxRepository) queryItems(ctx context.Context, q squirrel.SelectBuilder) ([]*Item, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items failed: %w", err)
	}
	defer rows.Close()

	items := make([]*Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID, &it.RequestID); err != nil {
			return nil, fmt.Errorf("scan item failed: %w", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items failed: %w", err)
	}
	return items, nil
}

func (r *pgxRepository) AddComment(ctx context.Context, c *Comment) error {
	query, args, err := psql.Insert("public.comments").
		Columns("text", "item_id", "author_id", "created").
		Values(c.Text, c.ItemID, c.AuthorID, c.Created).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build add comment query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID); err != nil {
		return fmt.Errorf("add comment failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListComments(ctx context.Context, itemIDs []int64) ([]*Comment, error) {
	if len(itemIDs) == 0 {
		return []*Comment{}, nil
	}

	query, args, err := psql.Select("c.id", "c.text", "c.item_id", "c.author_id", "u.name", "c.created").
		From("public.comments c").
		Join("public.users u ON c.author_id = u.id").
		Where(squirrel.Eq{"c.item_id": itemIDs}).
		OrderBy("c.created DESC", "c.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments failed: %w", err)
	}
	defer rows.Close()

	comments := make([]*Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Created); err != nil {
			return nil, fmt.Errorf("scan comment failed: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments failed: %w", err)
	}
	return comments, nil
}
