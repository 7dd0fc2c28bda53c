package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quillhq/quill/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, author_id, caption, content_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		post.ID, post.AuthorID, post.Caption, post.ContentText,
		post.CreatedAt, post.UpdatedAt,
	)
	return err
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var p domain.Post
	err := r.pool.QueryRow(ctx, selectPost+" WHERE p.id = $1", id).Scan(
		&p.ID, &p.AuthorID, &p.Caption, &p.ContentText,
		&p.CreatedAt, &p.UpdatedAt, &p.AuthorUsername, &p.AuthorDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *PostRepo) Update(ctx context.Context, post *domain.Post) error {
	query := `UPDATE posts SET caption = $1, content_text = $2, updated_at = $3 WHERE id = $4`
	_, err := r.pool.Exec(ctx, query, post.Caption, post.ContentText, post.UpdatedAt, post.ID)
	return err
}

// Delete removes the post together with every read mark referencing it.
func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM posts_read WHERE post_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Post, error) {
	query := selectPost + `
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2`
	return queryPosts(ctx, r.pool, query, limit, offset)
}

func (r *PostRepo) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	query := selectPost + `
		WHERE p.author_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3`
	return queryPosts(ctx, r.pool, query, authorIDs, limit, offset)
}

func (r *PostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]domain.Post, error) {
	query := selectPost + `
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3`
	return queryPosts(ctx, r.pool, query, authorID, limit, offset)
}

const selectPost = `
	SELECT p.id, p.author_id, p.caption, p.content_text, p.created_at, p.updated_at,
		u.username, u.display_name
	FROM posts p
	JOIN profiles pr ON p.author_id = pr.id
	JOIN users u ON pr.user_id = u.id`

func queryPosts(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) ([]domain.Post, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID, &p.AuthorID, &p.Caption, &p.ContentText,
			&p.CreatedAt, &p.UpdatedAt, &p.AuthorUsername, &p.AuthorDisplayName,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
