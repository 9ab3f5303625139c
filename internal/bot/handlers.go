package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/adminbot"
	"github.com/gratefultolord/hr_requests_bot/internal/config"
	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/files"
	"github.com/gratefultolord/hr_requests_bot/internal/logging"
	"github.com/gratefultolord/hr_requests_bot/internal/metrics"
	"github.com/gratefultolord/hr_requests_bot/internal/model"
	"github.com/gratefultolord/hr_requests_bot/internal/session"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
)

const helpText = `ℹ️ How it works:
1. Choose a request type from the menu.
2. Answer the questions step by step.
3. Check the summary and confirm.
The HR officer will review your request and you will get the decision here.

Commands:
/start - main menu
/cancel - cancel the current request
/help - this message`

// Commands is the command list shown by Telegram clients.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Main menu"},
	{Command: "cancel", Description: "Cancel the current request"},
	{Command: "help", Description: "How to use the bot"},
}

// BotService drives the request wizard for every user and hands admin-only
// actions to the admin service.
type BotService struct {
	botAPI      telegram.API
	sessions    *session.Manager
	teamRepo    *db.TeamRepository
	dispatcher  *Dispatcher
	fileService *files.FileService
	admin       *adminbot.BotService
	metrics     metrics.Recorder
	cfg         *config.Config
	logger      *zap.Logger
}

func New(
	botAPI telegram.API,
	sessions *session.Manager,
	teamRepo *db.TeamRepository,
	dispatcher *Dispatcher,
	fileService *files.FileService,
	admin *adminbot.BotService,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
) *BotService {
	return &BotService{
		botAPI:      botAPI,
		sessions:    sessions,
		teamRepo:    teamRepo,
		dispatcher:  dispatcher,
		fileService: fileService,
		admin:       admin,
		metrics:     recorder,
		cfg:         cfg,
		logger:      logger,
	}
}

// RegisterCommands publishes the command list to Telegram.
func (b *BotService) RegisterCommands() error {
	if _, err := b.botAPI.Request(tgbotapi.NewSetMyCommands(Commands...)); err != nil {
		return fmt.Errorf("BotService.RegisterCommands: %w", err)
	}

	return nil
}

// Start handles updates one at a time until ctx is done or the channel closes.
func (b *BotService) Start(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes one update. It never fails: every error is handled and
// logged inside the step that produced it.
func (b *BotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	logger := b.logger.With(
		zap.Int("update_id", update.UpdateID),
		zap.String("trace_id", uuid.NewString()),
	)
	ctx = logging.WithContext(ctx, logger)

	switch {
	case update.CallbackQuery != nil:
		b.metrics.RecordUpdate("callback")
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.metrics.RecordUpdate("message")
		b.handleMessage(ctx, update.Message)
	default:
		b.metrics.RecordUpdate("other")
		logger.Debug("update ignored")
	}
}

func (b *BotService) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}

	chatID := message.Chat.ID
	sess, release := b.sessions.Acquire(message.From.ID)
	defer release()

	ctx = logging.WithContext(ctx, b.log(ctx).With(
		zap.Int64("chat_id", chatID),
		zap.String("step", sess.Stage.String()),
	))

	if message.IsCommand() {
		b.handleCommand(ctx, sess, chatID, message)
		return
	}

	text := cleanInput(message.Text)

	switch sess.Stage {
	case session.StageFullName:
		b.handleFullName(ctx, sess, chatID, text)
	case session.StageTeam:
		b.handleTeamName(ctx, sess, chatID, text)
	case session.StageForm:
		b.handleFormInput(ctx, sess, chatID, message, text)
	default:
		b.showMainMenu(ctx, sess, chatID, "Please choose an option from the menu:")
	}
}

func (b *BotService) handleCommand(ctx context.Context, sess *session.Session, chatID int64, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.discard(ctx, sess)
		b.showMainMenu(ctx, sess, chatID, fmt.Sprintf(
			"👋 Hello, %s!\nThis bot sends your requests to the HR officer. Choose what you need:",
			telegram.DisplayName(message.From),
		))
	case "help":
		b.send(ctx, chatID, helpText, nil)
	case "cancel":
		b.handleCancel(ctx, sess, chatID)
	case "admin":
		b.admin.HandleMenu(ctx, sess, chatID, telegram.TokenAdminMenu)
	default:
		b.send(ctx, chatID, "Unknown command. Use /help to see what I can do.", nil)
	}
}

func (b *BotService) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}

	cb, err := telegram.ParseCallback(query.Data)
	if err != nil {
		b.log(ctx).Warn("bad callback data", zap.String("data", query.Data), zap.Error(err))
		b.answer(ctx, query.ID)
		return
	}

	if cb.Kind == telegram.CallbackDecision {
		b.admin.HandleDecision(ctx, query, cb)
		return
	}

	defer b.answer(ctx, query.ID)

	if query.Message == nil || query.Message.Chat == nil {
		return
	}

	chatID := query.Message.Chat.ID
	sess, release := b.sessions.Acquire(query.From.ID)
	defer release()

	ctx = logging.WithContext(ctx, b.log(ctx).With(
		zap.Int64("chat_id", chatID),
		zap.String("step", sess.Stage.String()),
	))

	switch cb.Kind {
	case telegram.CallbackTeam:
		b.handleTeamID(ctx, sess, chatID, cb.TeamID)
	case telegram.CallbackTeamSelect:
		b.admin.HandleTeamSelect(ctx, sess, chatID, cb)
	case telegram.CallbackApologyKind:
		b.handleApologyKind(ctx, sess, chatID, cb.ApologyKind)
	case telegram.CallbackToken:
		b.handleToken(ctx, sess, chatID, query.From, cb.Token)
	}
}

func (b *BotService) handleToken(ctx context.Context, sess *session.Session, chatID int64, from *tgbotapi.User, token string) {
	if requestType, ok := model.ParseRequestType(token); ok {
		b.startRequest(ctx, sess, chatID, requestType)
		return
	}

	switch token {
	case telegram.TokenContact:
		b.showMainMenu(ctx, sess, chatID, "📞 HR contact:\n"+b.cfg.HRContactInfo)
	case telegram.TokenBackToMenu, telegram.TokenNewRequest:
		b.discard(ctx, sess)
		b.showMainMenu(ctx, sess, chatID, "Choose what you need:")
	case telegram.TokenCancel:
		b.handleCancel(ctx, sess, chatID)
	case telegram.TokenConfirm:
		b.handleConfirm(ctx, sess, chatID, from)
	case telegram.TokenAdminMenu, telegram.TokenAddVolunteer, telegram.TokenListVolunteers, telegram.TokenPendingRequests:
		b.admin.HandleMenu(ctx, sess, chatID, token)
	default:
		b.log(ctx).Warn("unknown callback token", zap.String("token", token))
	}
}

// handleCancel is safe to repeat: an empty session just gets the menu again.
func (b *BotService) handleCancel(ctx context.Context, sess *session.Session, chatID int64) {
	b.discard(ctx, sess)
	b.showMainMenu(ctx, sess, chatID, "❌ Cancelled. Nothing was sent.")
}

// discard resets the session and removes any evidence archived for a
// request that will not be sent.
func (b *BotService) discard(ctx context.Context, sess *session.Session) {
	if form, ok := sess.Form.(*session.ProblemForm); ok && form.EvidenceFile != "" {
		if err := b.fileService.DeleteFile(form.EvidenceFile); err != nil {
			b.log(ctx).Warn("cannot remove evidence file", zap.String("file", form.EvidenceFile), zap.Error(err))
		}
	}

	sess.Reset()
}

func (b *BotService) showMainMenu(ctx context.Context, sess *session.Session, chatID int64, text string) {
	b.send(ctx, chatID, text, telegram.MainMenu(b.cfg.IsAdmin(sess.UserID)))
}

func (b *BotService) send(ctx context.Context, chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := b.botAPI.Send(msg); err != nil {
		b.log(ctx).Error("cannot send message", zap.Error(err))
	}
}

func (b *BotService) answer(ctx context.Context, callbackID string) {
	if _, err := b.botAPI.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		b.log(ctx).Warn("cannot answer callback", zap.Error(err))
	}
}

func (b *BotService) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, b.logger)
}
