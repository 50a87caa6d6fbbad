package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/models"
)

// DatapointReadRepository reads per-date samples for one metric family.
// A single instance per family, built from the family's models.Metric
// descriptor, replaces four copied repositories.
type DatapointReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
	metric   models.Metric
}

func NewDatapointReadRepository(db *sqlx.DB, txGetter TxGetter, metric models.Metric) *DatapointReadRepository {
	return &DatapointReadRepository{db: db, txGetter: txGetter, metric: metric}
}

func (r *DatapointReadRepository) columns() string {
	if r.metric.HasDetails {
		return "id, datapoint, date, created_at, owner_id, name, reps"
	}
	return "id, datapoint, date, created_at, owner_id"
}

// List returns the owner's samples ordered by date.
func (r *DatapointReadRepository) List(ctx context.Context, ownerID int64, limit, offset int) ([]models.DatapointDB, error) {
	query := `
		SELECT ` + r.columns() + `
		FROM ` + r.metric.Table + `
		WHERE owner_id = $1
		ORDER BY date ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	args := []any{ownerID, limit, offset}

	var entries []models.DatapointDB
	err := sqlx.SelectContext(ctx, pick(ctx, r.db, r.txGetter), &entries, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", len(entries),
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return entries, nil
}

// GetByDate returns the owner's sample for the given day, or (nil, nil)
// when none was recorded.
func (r *DatapointReadRepository) GetByDate(ctx context.Context, ownerID int64, date time.Time) (*models.DatapointDB, error) {
	query := `
		SELECT ` + r.columns() + `
		FROM ` + r.metric.Table + `
		WHERE owner_id = $1 AND date = $2
	`
	args := []any{ownerID, date}

	var entry models.DatapointDB
	err := sqlx.GetContext(ctx, pick(ctx, r.db, r.txGetter), &entry, query, args...)

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

	return &entry, nil
}

// DatapointWriteRepository writes per-date samples for one metric family.
type DatapointWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
	metric   models.Metric
}

func NewDatapointWriteRepository(db *sqlx.DB, txGetter TxGetter, metric models.Metric) *DatapointWriteRepository {
	return &DatapointWriteRepository{db: db, txGetter: txGetter, metric: metric}
}

func (r *DatapointWriteRepository) columns() string {
	if r.metric.HasDetails {
		return "id, datapoint, date, created_at, owner_id, name, reps"
	}
	return "id, datapoint, date, created_at, owner_id"
}

// Save inserts a sample and returns the stored row. Callers enforce the
// one-row-per-(owner, date) rule before calling; the duplicate check and
// this insert run in the same request transaction.
func (r *DatapointWriteRepository) Save(ctx context.Context, ownerID int64, date time.Time, value float64, name *string, reps *int64) (*models.DatapointDB, error) {
	var (
		query string
		args  []any
	)
	if r.metric.HasDetails {
		query = `
			INSERT INTO ` + r.metric.Table + ` (owner_id, date, datapoint, name, reps)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + r.columns()
		args = []any{ownerID, date, value, name, reps}
	} else {
		query = `
			INSERT INTO ` + r.metric.Table + ` (owner_id, date, datapoint)
			VALUES ($1, $2, $3)
			RETURNING ` + r.columns()
		args = []any{ownerID, date, value}
	}

	var entry models.DatapointDB
	err := sqlx.GetContext(ctx, pick(ctx, r.db, r.txGetter), &entry, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// UpdateByDate replaces the owner's sample for the given day and returns the
// updated row, or (nil, nil) when no sample exists for that day.
func (r *DatapointWriteRepository) UpdateByDate(ctx context.Context, ownerID int64, date time.Time, value float64, name *string, reps *int64) (*models.DatapointDB, error) {
	var (
		query string
		args  []any
	)
	if r.metric.HasDetails {
		query = `
			UPDATE ` + r.metric.Table + `
			SET datapoint = $3, name = $4, reps = $5
			WHERE owner_id = $1 AND date = $2
			RETURNING ` + r.columns()
		args = []any{ownerID, date, value, name, reps}
	} else {
		query = `
			UPDATE ` + r.metric.Table + `
			SET datapoint = $3
			WHERE owner_id = $1 AND date = $2
			RETURNING ` + r.columns()
		args = []any{ownerID, date, value}
	}

	var entry models.DatapointDB
	err := sqlx.GetContext(ctx, pick(ctx, r.db, r.txGetter), &entry, query, args...)

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

	return &entry, nil
}

// DeleteByDate removes the owner's sample for the given day and reports how
// many rows went away.
func (r *DatapointWriteRepository) DeleteByDate(ctx context.Context, ownerID int64, date time.Time) (int64, error) {
	query := `DELETE FROM ` + r.metric.Table + ` WHERE owner_id = $1 AND date = $2`
	args := []any{ownerID, date}

	res, err := pick(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", query,
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return 0, err
	}

	return rowsAffected, nil
}
