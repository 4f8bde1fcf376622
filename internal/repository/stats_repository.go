package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Total    int64  `db:"total" json:"total"`
}

// StatsRepository runs read-only aggregate queries on the raw connection.
type StatsRepository struct {
	db          *sqlx.DB
	placeholder sq.PlaceholderFormat
}

func NewStatsRepository(sqlDB *sql.DB, driverName string) *StatsRepository {
	xdb := sqlx.NewDb(sqlDB, driverName)
	var ph sq.PlaceholderFormat = sq.Question
	if sqlx.BindType(driverName) == sqlx.DOLLAR {
		ph = sq.Dollar
	}
	return &StatsRepository{db: xdb, placeholder: ph}
}

// CategoryCounts groups posts by lower-cased category, skipping posts without one.
func (r *StatsRepository) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	query, args, err := sq.Select("LOWER(category) AS category", "COUNT(*) AS total").
		From("posts").
		Where(sq.NotEq{"category": nil}).
		GroupBy("LOWER(category)").
		OrderBy("category ASC").
		PlaceholderFormat(r.placeholder).
		ToSql()
	if err != nil {
		return nil, err
	}
	counts := []CategoryCount{}
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, err
	}
	return counts, nil
}
