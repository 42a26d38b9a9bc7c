package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/pressroom-io/pressroom/internal/errs"
	"github.com/pressroom-io/pressroom/internal/model"
)

// PostRepo implements PostRepository using PostgreSQL.
type PostRepo struct{ db *DB }

// NewPostRepo constructs a post repository.
func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

const postColumns = `id, owner_id, title, content, is_public, created_at, updated_at`

// Create inserts a new post row and returns the generated id.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) (int64, error) {
	const q = `
INSERT INTO posts (owner_id, title, content, is_public)
VALUES ($1, $2, $3, $4)
RETURNING id`
	var id int64
	if err := r.db.Pool.QueryRow(ctx, q, p.OwnerID, p.Title, p.Content, p.IsPublic).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID selects a post by ID.
func (r *PostRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	const q = `
SELECT ` + postColumns + `
FROM posts WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return p, nil
}

// Update rewrites the caller-editable fields. owner_id is deliberately
// absent from the SET list, so ownership survives every update.
func (r *PostRepo) Update(ctx context.Context, id int64, in model.PostInput) (*model.Post, error) {
	const q = `
UPDATE posts
SET title=$2, content=$3, is_public=$4, updated_at=now()
WHERE id=$1
RETURNING ` + postColumns
	row := r.db.Pool.QueryRow(ctx, q, id, in.Title, in.Content, in.IsPublic)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return p, nil
}

// Delete removes a post row.
func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM posts WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// List returns all posts ordered by id.
func (r *PostRepo) List(ctx context.Context) ([]model.Post, error) {
	const q = `
SELECT ` + postColumns + `
FROM posts ORDER BY id`
	return r.queryPosts(ctx, q)
}

// ListPublic returns posts with the public flag set.
func (r *PostRepo) ListPublic(ctx context.Context) ([]model.Post, error) {
	const q = `
SELECT ` + postColumns + `
FROM posts WHERE is_public ORDER BY id`
	return r.queryPosts(ctx, q)
}

// ListByOwner returns posts owned by the given user.
func (r *PostRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Post, error) {
	const q = `
SELECT ` + postColumns + `
FROM posts WHERE owner_id=$1 ORDER BY id`
	return r.queryPosts(ctx, q, ownerID)
}

func (r *PostRepo) queryPosts(ctx context.Context, q string, args ...any) ([]model.Post, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Content, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
