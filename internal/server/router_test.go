package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingHandler struct {
	mu      sync.Mutex
	updates []tgbotapi.Update
}

func (h *recordingHandler) HandleUpdate(_ context.Context, update tgbotapi.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.updates = append(h.updates, update)
}

func newTestRouter(t *testing.T, updates UpdateHandler) http.Handler {
	t.Helper()

	return NewRouter(RouterDeps{
		Updates:     updates,
		WebhookPath: "/webhook/secret",
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("hrbot_updates_total 1"))
		}),
		Logger: zaptest.NewLogger(t),
	})
}

func TestWebhook_DeliversUpdate(t *testing.T) {
	h := &recordingHandler{}
	router := newTestRouter(t, h)

	body := `{"update_id": 7, "message": {"message_id": 1, "from": {"id": 12345, "first_name": "Ahmad"}, "chat": {"id": 12345, "type": "private"}, "date": 0, "text": "hi"}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/secret", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.updates, 1)
	assert.Equal(t, 7, h.updates[0].UpdateID)
	require.NotNil(t, h.updates[0].Message)
	assert.Equal(t, "hi", h.updates[0].Message.Text)
}

func TestWebhook_RejectsGarbage(t *testing.T) {
	h := &recordingHandler{}
	router := newTestRouter(t, h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/secret", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.updates)
}

func TestWebhook_WrongPathOrMethod(t *testing.T) {
	h := &recordingHandler{}
	router := newTestRouter(t, h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/guess", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook/secret", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Empty(t, h.updates)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, &recordingHandler{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hrbot_updates_total")
}
