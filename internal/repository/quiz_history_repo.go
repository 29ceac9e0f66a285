package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// QuizHistoryRepository handles retention cleanup of the quiz_history table
type QuizHistoryRepository struct {
	db *pgxpool.Pool
}

func NewQuizHistoryRepository(db *pgxpool.Pool) *QuizHistoryRepository {
	return &QuizHistoryRepository{db: db}
}

// DeleteOlderThan removes quiz history rows older than the given number of
// days, returning the number of deleted rows.
func (r *QuizHistoryRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM quiz_history
		WHERE quiz_date < CURRENT_DATE - make_interval(days => $1)
	`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CutoffDate returns the formatted cutoff date for reporting
func (r *QuizHistoryRepository) CutoffDate(ctx context.Context, days int) (string, error) {
	var cutoff string
	err := r.db.QueryRow(ctx, `
		SELECT TO_CHAR(CURRENT_DATE - make_interval(days => $1), 'DD-Mon-YYYY')
	`, days).Scan(&cutoff)
	return cutoff, err
}
