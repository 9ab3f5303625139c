package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Team struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{
		db: db,
	}
}

// Seed inserts every name that is not stored yet. Running it again is a no-op.
func (r *TeamRepository) Seed(ctx context.Context, names []string) error {
	query := r.db.Rebind(`
	    INSERT INTO teams (name) VALUES (?)
		ON CONFLICT (name) DO NOTHING
	`)

	for _, name := range names {
		if _, err := r.db.ExecContext(ctx, query, name); err != nil {
			return fmt.Errorf("TeamRepository.Seed: %w", err)
		}
	}

	return nil
}

func (r *TeamRepository) GetAll(ctx context.Context) ([]Team, error) {
	var teams []Team

	err := r.db.SelectContext(ctx, &teams, `
	    SELECT id, name FROM teams
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("TeamRepository.GetAll: %w", err)
	}

	return teams, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*Team, error) {
	var team Team

	err := r.db.GetContext(ctx, &team, r.db.Rebind(`
	    SELECT id, name FROM teams
		WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}

		return nil, fmt.Errorf("TeamRepository.GetByID: %w", err)
	}

	return &team, nil
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (*Team, error) {
	var team Team

	err := r.db.GetContext(ctx, &team, r.db.Rebind(`
	    SELECT id, name FROM teams
		WHERE name = ?
	`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}

		return nil, fmt.Errorf("TeamRepository.GetByName: %w", err)
	}

	return &team, nil
}
