package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ConfidenceRepository reads per-topic review confidence from the question
// store owned by the surrounding application. It is the backing for
// focus_on_uncertain coverage generation and is read-only here.
type ConfidenceRepository struct {
	db *sql.DB
}

func NewConfidenceRepository(db *sql.DB) *ConfidenceRepository {
	return &ConfidenceRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// GetTopicConfidence returns, per topic, the fraction of a class's reviewed
// questions marked confident. Topics with no reviewed questions are absent
// from the result.
func (r *ConfidenceRepository) GetTopicConfidence(ctx context.Context, classID string) (map[string]float64, error) {
	const query = `
SELECT topic,
       COUNT(*) FILTER (WHERE user_confidence = 'confident')::float8 / COUNT(*)
FROM questions
WHERE class_id = $1
  AND topic IS NOT NULL
  AND topic <> ''
  AND user_confidence IS NOT NULL
GROUP BY topic`

	rows, err := r.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("query topic confidence: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var topic string
		var fraction float64
		if err := rows.Scan(&topic, &fraction); err != nil {
			return nil, fmt.Errorf("scan topic confidence row: %w", err)
		}
		out[topic] = fraction
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic confidence rows: %w", err)
	}
	return out, nil
}
