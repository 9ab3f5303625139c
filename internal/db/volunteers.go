package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Volunteer struct {
	ID             int64     `db:"id"`
	TelegramUserID int64     `db:"telegram_user_id"`
	FullName       string    `db:"full_name"`
	TeamID         *int64    `db:"team_id"`
	TeamName       *string   `db:"team_name"`
	CreatedAt      time.Time `db:"created_at"`
}

type VolunteerRepository struct {
	db *sqlx.DB
}

func NewVolunteerRepository(db *sqlx.DB) *VolunteerRepository {
	return &VolunteerRepository{
		db: db,
	}
}

// Create inserts a volunteer. A second registration for the same Telegram
// user fails with ErrVolunteerExists and leaves the existing row untouched.
func (r *VolunteerRepository) Create(ctx context.Context, v *Volunteer) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	    INSERT INTO volunteers (telegram_user_id, full_name, team_id)
		VALUES (?, ?, ?)
	`),
		v.TelegramUserID,
		v.FullName,
		v.TeamID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrVolunteerExists
		}

		return fmt.Errorf("VolunteerRepository.Create: %w", err)
	}

	return nil
}

func (r *VolunteerRepository) GetByTelegramUserID(ctx context.Context, telegramUserID int64) (*Volunteer, error) {
	var v Volunteer

	err := r.db.GetContext(ctx, &v, r.db.Rebind(`
	    SELECT v.id, v.telegram_user_id, v.full_name, v.team_id, t.name AS team_name, v.created_at
		FROM volunteers v
		LEFT JOIN teams t ON t.id = v.team_id
		WHERE v.telegram_user_id = ?
	`), telegramUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("VolunteerRepository.GetByTelegramUserID: %w", err)
	}

	return &v, nil
}

func (r *VolunteerRepository) GetAll(ctx context.Context) ([]Volunteer, error) {
	var volunteers []Volunteer

	err := r.db.SelectContext(ctx, &volunteers, `
	    SELECT v.id, v.telegram_user_id, v.full_name, v.team_id, t.name AS team_name, v.created_at
		FROM volunteers v
		LEFT JOIN teams t ON t.id = v.team_id
		ORDER BY v.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("VolunteerRepository.GetAll: %w", err)
	}

	return volunteers, nil
}

func (r *VolunteerRepository) CountByTelegramUserID(ctx context.Context, telegramUserID int64) (int, error) {
	var count int

	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
	    SELECT COUNT(*) FROM volunteers
		WHERE telegram_user_id = ?
	`), telegramUserID)
	if err != nil {
		return 0, fmt.Errorf("VolunteerRepository.CountByTelegramUserID: %w", err)
	}

	return count, nil
}
