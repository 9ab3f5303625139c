package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gratefultolord/hr_requests_bot/internal/adminbot"
	"github.com/gratefultolord/hr_requests_bot/internal/config"
	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/db/dbtest"
	"github.com/gratefultolord/hr_requests_bot/internal/files"
	"github.com/gratefultolord/hr_requests_bot/internal/metrics"
	"github.com/gratefultolord/hr_requests_bot/internal/notify"
	"github.com/gratefultolord/hr_requests_bot/internal/session"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram/telegramtest"
)

const (
	adminID = int64(9000)
	userID  = int64(12345)
)

type resolverFunc func(fileID string) (string, error)

func (f resolverFunc) GetFileDirectURL(fileID string) (string, error) {
	return f(fileID)
}

type harness struct {
	bot         *BotService
	database    *db.DB
	rec         *telegramtest.Recorder
	sessions    *session.Manager
	teams       *db.TeamRepository
	requests    *db.RequestRepository
	evidenceDir string
	updateID    int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	database := dbtest.New(t, "Team A", "Team B")
	rec := telegramtest.NewRecorder()
	logger := zaptest.NewLogger(t)
	recorder := metrics.NewCollector(prometheus.NewRegistry())
	notifier := notify.NewNotifier(rec, recorder)

	cfg := &config.Config{
		BotToken:      "test-token",
		AdminChatID:   adminID,
		HRContactInfo: "hr@example.com",
	}

	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("photo-bytes"))
	}))
	t.Cleanup(fileServer.Close)

	evidenceDir := t.TempDir()
	fileService, err := files.NewFileService(resolverFunc(func(fileID string) (string, error) {
		return fileServer.URL + "/photos/" + fileID + ".png", nil
	}), fileServer.Client(), evidenceDir)
	require.NoError(t, err)

	teams := db.NewTeamRepository(database.Conn)
	requests := db.NewRequestRepository(database.Conn)
	sessions := session.NewManager()

	admin := adminbot.New(rec, teams, db.NewVolunteerRepository(database.Conn), requests, notifier, recorder, cfg, logger)
	dispatcher := NewDispatcher(db.NewCounterRepository(database.Conn), requests, notifier, recorder, adminID, logger)

	return &harness{
		bot:         New(rec, sessions, teams, dispatcher, fileService, admin, recorder, cfg, logger),
		database:    database,
		rec:         rec,
		sessions:    sessions,
		teams:       teams,
		requests:    requests,
		evidenceDir: evidenceDir,
	}
}

func (h *harness) user(id int64) *tgbotapi.User {
	if id == userID {
		return &tgbotapi.User{ID: id, FirstName: "Ahmad", LastName: "Khalil"}
	}

	return &tgbotapi.User{ID: id, FirstName: "User"}
}

func (h *harness) nextID() int {
	return int(atomic.AddInt64(&h.updateID, 1))
}

func (h *harness) handle(update tgbotapi.Update) {
	h.bot.HandleUpdate(context.Background(), update)
}

func (h *harness) text(from int64, text string) {
	h.handle(tgbotapi.Update{
		UpdateID: h.nextID(),
		Message: &tgbotapi.Message{
			MessageID: h.nextID(),
			From:      h.user(from),
			Chat:      &tgbotapi.Chat{ID: from},
			Text:      text,
		},
	})
}

func (h *harness) command(from int64, command string) {
	h.handle(tgbotapi.Update{
		UpdateID: h.nextID(),
		Message: &tgbotapi.Message{
			MessageID: h.nextID(),
			From:      h.user(from),
			Chat:      &tgbotapi.Chat{ID: from},
			Text:      command,
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}},
		},
	})
}

func (h *harness) photo(from int64, caption string, fileIDs ...string) {
	sizes := make([]tgbotapi.PhotoSize, 0, len(fileIDs))
	for _, id := range fileIDs {
		sizes = append(sizes, tgbotapi.PhotoSize{FileID: id})
	}

	h.handle(tgbotapi.Update{
		UpdateID: h.nextID(),
		Message: &tgbotapi.Message{
			MessageID: h.nextID(),
			From:      h.user(from),
			Chat:      &tgbotapi.Chat{ID: from},
			Photo:     sizes,
			Caption:   caption,
		},
	})
}

func (h *harness) press(from int64, data string) {
	h.handle(tgbotapi.Update{
		UpdateID: h.nextID(),
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb",
			From: h.user(from),
			Message: &tgbotapi.Message{
				MessageID: 1,
				Chat:      &tgbotapi.Chat{ID: from},
			},
			Data: data,
		},
	})
}

func (h *harness) team(t *testing.T, name string) *db.Team {
	t.Helper()

	team, err := h.teams.GetByName(context.Background(), name)
	require.NoError(t, err)

	return team
}

type sessionState struct {
	Stage    session.Stage
	FullName string
	TeamName string
	Form     session.Form
}

// snapshot reads the session of a user under its lock.
func (h *harness) snapshot(id int64) sessionState {
	sess, release := h.sessions.Acquire(id)
	defer release()

	return sessionState{
		Stage:    sess.Stage,
		FullName: sess.FullName,
		TeamName: sess.TeamName,
		Form:     sess.Form,
	}
}

func (h *harness) lastText(t *testing.T, chatID int64) string {
	t.Helper()

	call, ok := h.rec.Last(chatID)
	require.True(t, ok, "no message to chat %d", chatID)

	return call.Text
}
