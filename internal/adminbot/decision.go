package adminbot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/notify"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
)

// HandleDecision applies an approve/reject button press on an admin
// notification. The request status moves out of pending at most once; the
// requester is told the outcome and the notification loses its buttons.
func (b *BotService) HandleDecision(ctx context.Context, query *tgbotapi.CallbackQuery, cb telegram.Callback) {
	logger := b.log(ctx).With(
		zap.String("request_id", cb.RequestID),
		zap.String("decision", string(cb.Decision)),
		zap.Int64("actor_id", query.From.ID),
	)

	if !b.cfg.IsAdmin(query.From.ID) {
		logger.Warn("unauthorized decision attempt")
		b.answer(ctx, query.ID, "⛔ Only the HR officer can decide on requests.", true)
		return
	}

	status := cb.Decision.Status()

	err := b.requestRepo.Decide(ctx, cb.RequestID, status, query.From.ID)
	switch {
	case errors.Is(err, db.ErrAlreadyDecided):
		logger.Info("request already decided")
		b.answer(ctx, query.ID, "This request has already been decided.", true)
		return
	case errors.Is(err, db.ErrRequestNotFound):
		logger.Warn("request not in store, deciding from callback data")
	case err != nil:
		logger.Error("cannot record decision", zap.Error(err))
		b.answer(ctx, query.ID, "❌ Could not record the decision, please try again.", true)
		return
	}

	outcome := notify.Outcome(cb.Decision, cb.RequestType, cb.RequestID, b.cfg.HRContactInfo)
	b.notifier.
		Deliver(notify.TargetRequester, cb.RequesterID, tgbotapi.NewMessage(cb.RequesterID, outcome)).
		Log(logger, "decision outcome")

	if query.Message != nil {
		edit := tgbotapi.NewEditMessageText(
			query.Message.Chat.ID,
			query.Message.MessageID,
			notify.WithStatus(query.Message.Text, status, telegram.DisplayName(query.From)),
		)
		edit.Entities = query.Message.Entities

		if _, err := b.botAPI.Send(edit); err != nil {
			logger.Error("cannot update admin notification", zap.Error(err))
		}
	}

	b.metrics.RecordDecision(string(cb.Decision))
	b.answer(ctx, query.ID, status.Label(), false)
}
