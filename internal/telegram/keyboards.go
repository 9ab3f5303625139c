package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/model"
)

func MainMenu(isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🙏 Apology", TokenApology),
			tgbotapi.NewInlineKeyboardButtonData("🌴 Leave / Absence", TokenLeave),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💡 Proposal / Initiative", TokenInitiative),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Report a problem", TokenProblem),
			tgbotapi.NewInlineKeyboardButtonData("💬 Feedback", TokenFeedback),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📞 HR contact", TokenContact),
		),
	}

	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛠 Admin menu", TokenAdminMenu),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func AdminMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add volunteer", TokenAddVolunteer),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Volunteers", TokenListVolunteers),
			tgbotapi.NewInlineKeyboardButtonData("📥 Pending requests", TokenPendingRequests),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Main menu", TokenBackToMenu),
		),
	)
}

func CancelMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", TokenCancel),
		),
	)
}

func ConfirmMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm and send", TokenConfirm),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", TokenCancel),
		),
	)
}

func NewRequestMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 New request", TokenNewRequest),
		),
	)
}

// TeamMenu renders one button per stored team plus cancel. data builds the
// callback data for a team.
func TeamMenu(teams []db.Team, data func(db.Team) string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(teams)+1)
	for _, team := range teams {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(team.Name, data(team)),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", TokenCancel),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func DecisionMenu(requestType model.RequestType, requestID string, requesterID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve",
				DecisionData(model.DecisionApprove, requestType, requestID, requesterID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject",
				DecisionData(model.DecisionReject, requestType, requestID, requesterID)),
		),
	)
}
