package adminbot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/config"
	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/logging"
	"github.com/gratefultolord/hr_requests_bot/internal/metrics"
	"github.com/gratefultolord/hr_requests_bot/internal/model"
	"github.com/gratefultolord/hr_requests_bot/internal/notify"
	"github.com/gratefultolord/hr_requests_bot/internal/session"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
)

const pendingListLimit = 20

// BotService handles everything only the administrator may do: request
// decisions, volunteer registration and the admin menu.
type BotService struct {
	botAPI        telegram.API
	teamRepo      *db.TeamRepository
	volunteerRepo *db.VolunteerRepository
	requestRepo   *db.RequestRepository
	notifier      *notify.Notifier
	metrics       metrics.Recorder
	cfg           *config.Config
	logger        *zap.Logger
}

func New(
	botAPI telegram.API,
	teamRepo *db.TeamRepository,
	volunteerRepo *db.VolunteerRepository,
	requestRepo *db.RequestRepository,
	notifier *notify.Notifier,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
) *BotService {
	return &BotService{
		botAPI:        botAPI,
		teamRepo:      teamRepo,
		volunteerRepo: volunteerRepo,
		requestRepo:   requestRepo,
		notifier:      notifier,
		metrics:       recorder,
		cfg:           cfg,
		logger:        logger,
	}
}

// HandleMenu serves the admin menu tokens. Anyone but the administrator is
// denied and their session is left alone.
func (b *BotService) HandleMenu(ctx context.Context, sess *session.Session, chatID int64, token string) {
	if !b.cfg.IsAdmin(sess.UserID) {
		b.log(ctx).Warn("admin menu access denied", zap.Int64("user_id", sess.UserID), zap.String("token", token))
		b.send(ctx, chatID, "⛔ Access denied.", nil)
		return
	}

	switch token {
	case telegram.TokenAdminMenu:
		sess.Reset()
		b.showMenu(ctx, chatID, "🛠 Admin menu:")
	case telegram.TokenAddVolunteer:
		b.startVolunteer(ctx, sess, chatID)
	case telegram.TokenListVolunteers:
		b.handleListVolunteers(ctx, chatID)
	case telegram.TokenPendingRequests:
		b.handlePendingRequests(ctx, chatID)
	default:
		b.log(ctx).Warn("unknown admin menu token", zap.String("token", token))
	}
}

func (b *BotService) showMenu(ctx context.Context, chatID int64, text string) {
	b.send(ctx, chatID, text, telegram.AdminMenu())
}

func (b *BotService) handlePendingRequests(ctx context.Context, chatID int64) {
	requests, err := b.requestRepo.ListByStatus(ctx, model.StatusPending, pendingListLimit)
	if err != nil {
		b.log(ctx).Error("cannot load pending requests", zap.Error(err))
		b.showMenu(ctx, chatID, "❌ Could not load pending requests.")
		return
	}

	if len(requests) == 0 {
		b.showMenu(ctx, chatID, "📭 There are no pending requests.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📥 Pending requests (%d):\n", len(requests))
	for _, r := range requests {
		fmt.Fprintf(&sb, "• %s · %s · from %d · %s\n",
			r.ID, r.Type.Title(), r.TelegramUserID, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	b.showMenu(ctx, chatID, sb.String())
}

func (b *BotService) send(ctx context.Context, chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := b.botAPI.Send(msg); err != nil {
		b.log(ctx).Error("cannot send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *BotService) answer(ctx context.Context, callbackID, text string, alert bool) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}

	if _, err := b.botAPI.Request(cb); err != nil {
		b.log(ctx).Warn("cannot answer callback", zap.Error(err))
	}
}

func (b *BotService) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, b.logger)
}
