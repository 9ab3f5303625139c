package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const requestIDFormat = "REQ%04d"

type CounterRepository struct {
	db *sqlx.DB
}

func NewCounterRepository(db *sqlx.DB) *CounterRepository {
	return &CounterRepository{
		db: db,
	}
}

// NextRequestID increments the single-row counter in one statement and
// formats the new value. The increment relies on statement-level atomicity,
// so two calls never observe the same value.
func (r *CounterRepository) NextRequestID(ctx context.Context) (string, error) {
	var value int64

	err := r.db.GetContext(ctx, &value, `
	    UPDATE request_counter
		SET value = value + 1
		WHERE id = 1
		RETURNING value
	`)
	if err != nil {
		return "", fmt.Errorf("CounterRepository.NextRequestID: %w", err)
	}

	return FormatRequestID(value), nil
}

func FormatRequestID(value int64) string {
	return fmt.Sprintf(requestIDFormat, value)
}
