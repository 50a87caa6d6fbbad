package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/models"
)

type PostReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewPostReadRepository(db *sqlx.DB, txGetter TxGetter) *PostReadRepository {
	return &PostReadRepository{db: db, txGetter: txGetter}
}

// List returns posts visible to viewerID under the given filter, in
// ascending id order so pagination stays stable.
//
// Without an owner filter the viewer sees their own posts plus everything
// public. With an owner filter equal to the viewer they see all of their own
// posts; any other owner yields only that owner's public posts.
func (r *PostReadRepository) List(ctx context.Context, viewerID int64, filter models.PostFilter) ([]models.PostDB, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		conds = append(conds, fmt.Sprintf("title LIKE '%%' || %s || '%%'", arg(filter.Search)))
	}

	switch {
	case filter.OwnerID == nil:
		conds = append(conds, fmt.Sprintf("(owner_id = %s OR private = FALSE)", arg(viewerID)))
	case *filter.OwnerID == viewerID:
		conds = append(conds, fmt.Sprintf("owner_id = %s", arg(*filter.OwnerID)))
	default:
		conds = append(conds, fmt.Sprintf("owner_id = %s AND private = FALSE", arg(*filter.OwnerID)))
	}

	query := `
		SELECT id, title, content, private, created_at, owner_id
		FROM posts
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY id ASC
		LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset)

	var posts []models.PostDB
	err := sqlx.SelectContext(ctx, pick(ctx, r.db, r.txGetter), &posts, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", len(posts),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return posts, nil
}

// GetByID returns the post with the given id, or (nil, nil) when absent.
func (r *PostReadRepository) GetByID(ctx context.Context, id int64) (*models.PostDB, error) {
	const query = `
		SELECT id, title, content, private, created_at, owner_id
		FROM posts
		WHERE id = $1
	`

	var post models.PostDB
	err := sqlx.GetContext(ctx, pick(ctx, r.db, r.txGetter), &post, query, id)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &post, nil
}

type PostWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewPostWriteRepository(db *sqlx.DB, txGetter TxGetter) *PostWriteRepository {
	return &PostWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a post owned by ownerID and returns the stored row.
func (r *PostWriteRepository) Save(ctx context.Context, ownerID int64, title, content string, private bool) (*models.PostDB, error) {
	const query = `
		INSERT INTO posts (title, content, private, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, content, private, created_at, owner_id
	`
	args := []any{title, content, private, ownerID}

	var post models.PostDB
	err := sqlx.GetContext(ctx, pick(ctx, r.db, r.txGetter), &post, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return &post, nil
}

// Update replaces title, content and private of the post with the given id
// and returns the updated row, or (nil, nil) when the row is gone.
func (r *PostWriteRepository) Update(ctx context.Context, id int64, title, content string, private bool) (*models.PostDB, error) {
	const query = `
		UPDATE posts
		SET title = $2, content = $3, private = $4
		WHERE id = $1
		RETURNING id, title, content, private, created_at, owner_id
	`
	args := []any{id, title, content, private}

	var post models.PostDB
	err := sqlx.GetContext(ctx, pick(ctx, r.db, r.txGetter), &post, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// Delete removes the post with the given id and reports how many rows went away.
func (r *PostWriteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM posts WHERE id = $1`

	res, err := pick(ctx, r.db, r.txGetter).ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", query,
		"args", []any{id},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return 0, err
	}

	return rowsAffected, nil
}
