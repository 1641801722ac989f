package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkpress/blogapi/types"
)

// BlogRepository handles persistence for blog posts in PostgreSQL.
type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) List(ctx context.Context) ([]types.BlogPost, error) {
	const query = `
		SELECT id, title, subtitle, category, content, reading_time, image_path
		FROM blogs
		ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.BlogPost, 0)
	for rows.Next() {
		var post types.BlogPost
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Subtitle,
			&post.Category,
			&post.Content,
			&post.ReadingTime,
			&post.ImagePath,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *BlogRepository) Get(ctx context.Context, id int) (types.BlogPost, error) {
	const query = `
		SELECT id, title, subtitle, category, content, reading_time, image_path
		FROM blogs
		WHERE id = $1`
	var post types.BlogPost
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Subtitle,
		&post.Category,
		&post.Content,
		&post.ReadingTime,
		&post.ImagePath,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BlogPost{}, ErrNotFound
		}
		return types.BlogPost{}, err
	}
	return post, nil
}

// Create assigns MAX(id)+1 while holding an exclusive table lock, so two
// concurrent inserts cannot compute the same ID.
func (r *BlogRepository) Create(ctx context.Context, post types.BlogPost) (types.BlogPost, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.BlogPost{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE blogs IN EXCLUSIVE MODE`); err != nil {
		return types.BlogPost{}, err
	}

	const query = `
		INSERT INTO blogs (id, title, subtitle, category, content, reading_time, image_path)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6 FROM blogs
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		query,
		post.Title,
		post.Subtitle,
		post.Category,
		post.Content,
		string(post.ReadingTime),
		post.ImagePath,
	).Scan(&post.ID); err != nil {
		return types.BlogPost{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.BlogPost{}, err
	}
	return post, nil
}

func (r *BlogRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM blogs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
