package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gratefultolord/hr_requests_bot/internal/model"
)

type Request struct {
	ID             string            `db:"id"`
	TelegramUserID int64             `db:"telegram_user_id"`
	Type           model.RequestType `db:"request_type"`
	Status         model.Status      `db:"status"`
	FieldsJSON     string            `db:"fields"`
	AdminMessageID *int              `db:"admin_message_id"`
	DecidedBy      *int64            `db:"decided_by"`
	CreatedAt      time.Time         `db:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at"`
}

func (r *Request) Fields() ([]model.Field, error) {
	var fields []model.Field
	if err := json.Unmarshal([]byte(r.FieldsJSON), &fields); err != nil {
		return nil, fmt.Errorf("Request.Fields: %w", err)
	}

	return fields, nil
}

type RequestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{
		db: db,
	}
}

func (r *RequestRepository) Create(ctx context.Context, id string, telegramUserID int64, requestType model.RequestType, fields []model.Field) error {
	blob, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("RequestRepository.Create: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
	    INSERT INTO requests (id, telegram_user_id, request_type, status, fields)
		VALUES (?, ?, ?, 'pending', ?)
	`),
		id,
		telegramUserID,
		requestType,
		string(blob),
	)
	if err != nil {
		return fmt.Errorf("RequestRepository.Create: %w", err)
	}

	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	var req Request

	err := r.db.GetContext(ctx, &req, r.db.Rebind(`
	    SELECT * FROM requests
		WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}

		return nil, fmt.Errorf("RequestRepository.GetByID: %w", err)
	}

	return &req, nil
}

func (r *RequestRepository) SetAdminMessage(ctx context.Context, id string, messageID int) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	    UPDATE requests
		SET admin_message_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), messageID, id)
	if err != nil {
		return fmt.Errorf("RequestRepository.SetAdminMessage: %w", err)
	}

	return nil
}

// Decide moves a pending request to its terminal status. Only the first
// decision wins; later ones get ErrAlreadyDecided.
func (r *RequestRepository) Decide(ctx context.Context, id string, status model.Status, decidedBy int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
	    UPDATE requests
		SET status = ?, decided_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'
	`), status, decidedBy, id)
	if err != nil {
		return fmt.Errorf("RequestRepository.Decide: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("RequestRepository.Decide: %w", err)
	}

	if affected == 1 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	return ErrAlreadyDecided
}

func (r *RequestRepository) ListByStatus(ctx context.Context, status model.Status, limit int) ([]Request, error) {
	var requests []Request

	err := r.db.SelectContext(ctx, &requests, r.db.Rebind(`
	    SELECT * FROM requests
		WHERE status = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`), status, limit)
	if err != nil {
		return nil, fmt.Errorf("RequestRepository.ListByStatus: %w", err)
	}

	return requests, nil
}
