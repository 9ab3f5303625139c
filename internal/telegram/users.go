package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DisplayName is how a Telegram user is shown in notifications.
func DisplayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}

	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}

	if u.UserName != "" {
		return "@" + u.UserName
	}

	return strconv.FormatInt(u.ID, 10)
}
