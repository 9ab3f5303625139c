// Package telegramtest provides a recording fake of telegram.API.
package telegramtest

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Kind string

const (
	KindMessage  Kind = "message"
	KindEdit     Kind = "edit"
	KindCallback Kind = "callback"
	KindOther    Kind = "other"
)

// Call is one attempted API call.
type Call struct {
	Kind      Kind
	ChatID    int64
	MessageID int
	Text      string
	ParseMode string
	Keyboard  *tgbotapi.InlineKeyboardMarkup
	ShowAlert bool
	Err       error
	Raw       tgbotapi.Chattable
}

// Buttons returns the callback data of every inline button, row by row.
func (c Call) Buttons() []string {
	if c.Keyboard == nil {
		return nil
	}

	var data []string
	for _, row := range c.Keyboard.InlineKeyboard {
		for _, button := range row {
			if button.CallbackData != nil {
				data = append(data, *button.CallbackData)
			}
		}
	}

	return data
}

type Recorder struct {
	mu        sync.Mutex
	calls     []Call
	failChats map[int64]error
	nextID    int
}

func NewRecorder() *Recorder {
	return &Recorder{
		failChats: make(map[int64]error),
		nextID:    100,
	}
}

// FailChat makes every call targeting chatID fail.
func (r *Recorder) FailChat(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failChats[chatID] = fmt.Errorf("telegramtest: chat %d unreachable", chatID)
}

func (r *Recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := describe(c)
	if err, ok := r.failChats[call.ChatID]; ok {
		call.Err = err
		r.calls = append(r.calls, call)
		return tgbotapi.Message{}, err
	}

	messageID := call.MessageID
	if call.Kind != KindEdit {
		r.nextID++
		messageID = r.nextID
		call.MessageID = messageID
	}
	r.calls = append(r.calls, call)

	return tgbotapi.Message{
		MessageID: messageID,
		Chat:      &tgbotapi.Chat{ID: call.ChatID},
		Text:      call.Text,
	}, nil
}

func (r *Recorder) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := describe(c)
	if err, ok := r.failChats[call.ChatID]; ok && call.Kind != KindCallback {
		call.Err = err
		r.calls = append(r.calls, call)
		return nil, err
	}
	r.calls = append(r.calls, call)

	return &tgbotapi.APIResponse{Ok: true}, nil
}

// Calls returns every attempted call, failed ones included.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Call(nil), r.calls...)
}

// To returns the attempted calls of the given kind targeting chatID.
func (r *Recorder) To(chatID int64, kind Kind) []Call {
	var out []Call
	for _, call := range r.Calls() {
		if call.ChatID == chatID && call.Kind == kind {
			out = append(out, call)
		}
	}

	return out
}

// Last returns the last attempted message to chatID.
func (r *Recorder) Last(chatID int64) (Call, bool) {
	messages := r.To(chatID, KindMessage)
	if len(messages) == 0 {
		return Call{}, false
	}

	return messages[len(messages)-1], true
}

func (r *Recorder) Callbacks() []Call {
	var out []Call
	for _, call := range r.Calls() {
		if call.Kind == KindCallback {
			out = append(out, call)
		}
	}

	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = nil
}

func describe(c tgbotapi.Chattable) Call {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		call := Call{Kind: KindMessage, ChatID: v.ChatID, Text: v.Text, ParseMode: v.ParseMode, Raw: c}
		if markup, ok := v.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			call.Keyboard = &markup
		}
		return call

	case tgbotapi.EditMessageTextConfig:
		return Call{
			Kind:      KindEdit,
			ChatID:    v.ChatID,
			MessageID: v.MessageID,
			Text:      v.Text,
			ParseMode: v.ParseMode,
			Keyboard:  v.ReplyMarkup,
			Raw:       c,
		}

	case tgbotapi.CallbackConfig:
		return Call{Kind: KindCallback, Text: v.Text, ShowAlert: v.ShowAlert, Raw: c}

	default:
		return Call{Kind: KindOther, Raw: c}
	}
}
