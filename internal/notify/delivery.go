package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/metrics"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
)

const (
	TargetAdmin     = "admin"
	TargetRequester = "requester"
)

// DeliveryResult reports one best-effort send. A failed delivery is never
// retried; callers log it and carry on.
type DeliveryResult struct {
	Target    string
	ChatID    int64
	MessageID int
	Err       error
}

func (r DeliveryResult) Delivered() bool {
	return r.Err == nil
}

// Log writes the outcome with the given extra fields.
func (r DeliveryResult) Log(logger *zap.Logger, msg string, fields ...zap.Field) {
	fields = append(fields,
		zap.String("target", r.Target),
		zap.Int64("chat_id", r.ChatID),
	)

	if r.Delivered() {
		logger.Info(msg, append(fields, zap.Int("message_id", r.MessageID))...)
		return
	}

	logger.Error(msg+" failed", append(fields, zap.Error(r.Err))...)
}

type Notifier struct {
	api     telegram.API
	metrics metrics.Recorder
}

func NewNotifier(api telegram.API, recorder metrics.Recorder) *Notifier {
	return &Notifier{
		api:     api,
		metrics: recorder,
	}
}

// Deliver attempts c exactly once.
func (n *Notifier) Deliver(target string, chatID int64, c tgbotapi.Chattable) DeliveryResult {
	msg, err := n.api.Send(c)
	if err != nil {
		n.metrics.RecordDeliveryFailure(target)
		return DeliveryResult{Target: target, ChatID: chatID, Err: err}
	}

	return DeliveryResult{Target: target, ChatID: chatID, MessageID: msg.MessageID}
}
