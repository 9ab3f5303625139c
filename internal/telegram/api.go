package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// API is the part of *tgbotapi.BotAPI the handlers use.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ThrottledAPI keeps outbound calls under Telegram's global send limit.
// Calls still waiting for a slot fail once ctx is done.
type ThrottledAPI struct {
	ctx     context.Context
	api     API
	limiter *rate.Limiter
}

// NewThrottledAPI allows perSecond calls per second with a burst of the same
// size. ctx is the lifetime of the process.
func NewThrottledAPI(ctx context.Context, api API, perSecond float64) *ThrottledAPI {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}

	return &ThrottledAPI{
		ctx:     ctx,
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (t *ThrottledAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := t.limiter.Wait(t.ctx); err != nil {
		return tgbotapi.Message{}, err
	}

	return t.api.Send(c)
}

func (t *ThrottledAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := t.limiter.Wait(t.ctx); err != nil {
		return nil, err
	}

	return t.api.Request(c)
}
