package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/logging"
	"github.com/gratefultolord/hr_requests_bot/internal/metrics"
	"github.com/gratefultolord/hr_requests_bot/internal/model"
	"github.com/gratefultolord/hr_requests_bot/internal/notify"
	"github.com/gratefultolord/hr_requests_bot/internal/session"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
)

// Submission is a confirmed wizard ready to be dispatched.
type Submission struct {
	RequesterID   int64
	RequesterName string
	Type          model.RequestType
	Fields        []model.Field
}

type DispatchResult struct {
	RequestID string
	Admin     notify.DeliveryResult
}

// Dispatcher stores confirmed requests and notifies the administrator.
type Dispatcher struct {
	counterRepo *db.CounterRepository
	requestRepo *db.RequestRepository
	notifier    *notify.Notifier
	metrics     metrics.Recorder
	adminChatID int64
	logger      *zap.Logger
}

func NewDispatcher(
	counterRepo *db.CounterRepository,
	requestRepo *db.RequestRepository,
	notifier *notify.Notifier,
	recorder metrics.Recorder,
	adminChatID int64,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		counterRepo: counterRepo,
		requestRepo: requestRepo,
		notifier:    notifier,
		metrics:     recorder,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// Dispatch allocates the request id, stores the request as pending and sends
// one notification with decision buttons to the administrator. A failed
// notification is reported in the result, not as an error: the request is
// already stored at that point.
func (d *Dispatcher) Dispatch(ctx context.Context, sub Submission) (DispatchResult, error) {
	id, err := d.counterRepo.NextRequestID(ctx)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("Dispatcher.Dispatch: %w", err)
	}

	if err := d.requestRepo.Create(ctx, id, sub.RequesterID, sub.Type, sub.Fields); err != nil {
		return DispatchResult{}, fmt.Errorf("Dispatcher.Dispatch: %w", err)
	}

	logger := logging.FromContext(ctx, d.logger).With(
		zap.String("request_id", id),
		zap.String("request_type", string(sub.Type)),
	)

	msg := tgbotapi.NewMessage(d.adminChatID, notify.AdminNotification(notify.Notification{
		RequestID:     id,
		Type:          sub.Type,
		RequesterID:   sub.RequesterID,
		RequesterName: sub.RequesterName,
		Fields:        sub.Fields,
	}))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = telegram.DecisionMenu(sub.Type, id, sub.RequesterID)

	result := d.notifier.Deliver(notify.TargetAdmin, d.adminChatID, msg)
	result.Log(logger, "admin notification")

	if result.Delivered() {
		if err := d.requestRepo.SetAdminMessage(ctx, id, result.MessageID); err != nil {
			logger.Error("cannot store admin message id", zap.Error(err))
		}
	}

	d.metrics.RecordRequestSubmitted(string(sub.Type))

	return DispatchResult{RequestID: id, Admin: result}, nil
}

// handleConfirm dispatches the finished wizard. The session is cleared
// whatever happens to the notification. A request that could not be stored
// also loses its archived evidence.
func (b *BotService) handleConfirm(ctx context.Context, sess *session.Session, chatID int64, from *tgbotapi.User) {
	form, ok := sess.RequestForm()
	if !ok || sess.Stage != session.StageForm || !form.Confirming() {
		b.showMainMenu(ctx, sess, chatID, "There is no request waiting for confirmation. Choose what you need:")
		return
	}

	sub := Submission{
		RequesterID:   sess.UserID,
		RequesterName: telegram.DisplayName(from),
		Type:          form.RequestType(),
		Fields:        sess.RequestFields(),
	}

	result, err := b.dispatcher.Dispatch(ctx, sub)
	if err != nil {
		b.log(ctx).Error("cannot dispatch request", zap.Error(err))
		b.discard(ctx, sess)
		b.showMainMenu(ctx, sess, chatID, "❌ Sorry, your request could not be submitted right now. Please try again later.")
		return
	}

	sess.Reset()
	b.send(ctx, chatID, notify.Confirmation(sub.Type, result.RequestID), telegram.NewRequestMenu())
}
