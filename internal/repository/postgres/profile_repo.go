package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quillhq/quill/internal/domain"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT p.id, p.user_id, u.username, u.display_name, u.email
		FROM profiles p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1`
	var p domain.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Username, &p.DisplayName, &p.Email,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *ProfileRepo) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	query := `
		INSERT INTO follows (follower_id, followed_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followed_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, followerID, followedID, time.Now())
	return err
}

// Unfollow removes the edge and the follower's read marks on the unfollowed
// profile's posts in one transaction, so no request can observe the edge gone
// while stale read-state remains.
func (r *ProfileRepo) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`,
		followerID, followedID,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM posts_read
		WHERE profile_id = $1
		AND post_id IN (SELECT id FROM posts WHERE author_id = $2)`,
		followerID, followedID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ProfileRepo) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)`,
		followerID, followedID,
	).Scan(&exists)
	return exists, err
}

func (r *ProfileRepo) ListFollowing(ctx context.Context, followerID uuid.UUID) ([]domain.Profile, error) {
	query := `
		SELECT p.id, p.user_id, u.username, u.display_name, u.email
		FROM follows f
		JOIN profiles p ON f.followed_id = p.id
		JOIN users u ON p.user_id = u.id
		WHERE f.follower_id = $1
		ORDER BY u.username ASC`

	rows, err := r.pool.Query(ctx, query, followerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.DisplayName, &p.Email); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepo) ToggleRead(ctx context.Context, profileID, postID uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM posts_read WHERE profile_id = $1 AND post_id = $2`,
		profileID, postID,
	)
	if err != nil {
		return false, err
	}

	read := false
	if tag.RowsAffected() == 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO posts_read (profile_id, post_id, marked_at) VALUES ($1, $2, $3)`,
			profileID, postID, time.Now(),
		)
		if err != nil {
			return false, err
		}
		read = true
	}

	return read, tx.Commit(ctx)
}

func (r *ProfileRepo) ListRead(ctx context.Context, profileID uuid.UUID) ([]domain.Post, error) {
	query := selectPost + `
		JOIN posts_read pr ON pr.post_id = p.id
		WHERE pr.profile_id = $1
		ORDER BY p.created_at DESC, p.id DESC`
	return queryPosts(ctx, r.pool, query, profileID)
}

func (r *ProfileRepo) Stats(ctx context.Context, profileID uuid.UUID) (*domain.ProfileStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM posts WHERE author_id = $1),
			(SELECT COUNT(*) FROM follows WHERE followed_id = $1)`
	stats := domain.ProfileStats{ProfileID: profileID}
	err := r.pool.QueryRow(ctx, query, profileID).Scan(&stats.PostCount, &stats.FollowerCount)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ProfileRepo) ListFollowerEmails(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	query := `
		SELECT u.email
		FROM follows f
		JOIN profiles p ON f.follower_id = p.id
		JOIN users u ON p.user_id = u.id
		WHERE f.followed_id = $1`

	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (r *ProfileRepo) ListFollowerIDs(ctx context.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT follower_id FROM follows WHERE followed_id = $1`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
