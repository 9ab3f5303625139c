package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/model"
	"github.com/gratefultolord/hr_requests_bot/internal/notify"
	"github.com/gratefultolord/hr_requests_bot/internal/session"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
)

const (
	msgTextRequired = "⚠️ Please answer with a text message."
	msgUseButtons   = "⚠️ Please use the buttons below."
	msgBadDate      = "⚠️ Invalid date. Use the format YYYY-MM-DD, for example 2025-01-31."
	msgStoreFailure = "❌ Something went wrong on our side. Please try again later."
)

func (b *BotService) startRequest(ctx context.Context, sess *session.Session, chatID int64, requestType model.RequestType) {
	b.discard(ctx, sess)
	sess.StartRequest(requestType)

	b.log(ctx).Info("request started", zap.String("request_type", string(requestType)))
	b.send(ctx, chatID, "📝 "+requestType.Title()+"\nPlease enter your full name:", telegram.CancelMenu())
}

func (b *BotService) handleFullName(ctx context.Context, sess *session.Session, chatID int64, text string) {
	name, ok := IsValidFullName(text)
	if !ok {
		b.send(ctx, chatID, "⚠️ The name must be at least 3 characters. Please enter your full name:", telegram.CancelMenu())
		return
	}

	sess.FullName = name
	sess.Stage = session.StageTeam
	b.promptTeam(ctx, sess, chatID, "👥 Choose your team:")
}

func (b *BotService) promptTeam(ctx context.Context, sess *session.Session, chatID int64, text string) {
	teams, err := b.teamRepo.GetAll(ctx)
	if err != nil {
		b.fail(ctx, sess, chatID, "cannot load teams", err)
		return
	}

	b.send(ctx, chatID, text, telegram.TeamMenu(teams, func(t db.Team) string {
		return telegram.TeamData(t.ID)
	}))
}

// handleTeamName accepts a typed team name if it matches a stored team exactly.
func (b *BotService) handleTeamName(ctx context.Context, sess *session.Session, chatID int64, text string) {
	team, err := b.teamRepo.GetByName(ctx, text)
	if errors.Is(err, db.ErrTeamNotFound) {
		b.promptTeam(ctx, sess, chatID, "⚠️ Unknown team. Please choose your team using the buttons below:")
		return
	}
	if err != nil {
		b.fail(ctx, sess, chatID, "cannot look up team", err)
		return
	}

	b.setTeam(ctx, sess, chatID, team)
}

func (b *BotService) handleTeamID(ctx context.Context, sess *session.Session, chatID int64, teamID int64) {
	if sess.Stage != session.StageTeam {
		b.log(ctx).Info("stale team button ignored", zap.Int64("team_id", teamID))
		return
	}

	team, err := b.teamRepo.GetByID(ctx, teamID)
	if errors.Is(err, db.ErrTeamNotFound) {
		b.promptTeam(ctx, sess, chatID, "⚠️ That team is no longer available. Choose another one:")
		return
	}
	if err != nil {
		b.fail(ctx, sess, chatID, "cannot look up team", err)
		return
	}

	b.setTeam(ctx, sess, chatID, team)
}

func (b *BotService) setTeam(ctx context.Context, sess *session.Session, chatID int64, team *db.Team) {
	sess.TeamID = team.ID
	sess.TeamName = team.Name
	sess.Stage = session.StageForm

	switch sess.Form.(type) {
	case *session.ApologyForm:
		b.send(ctx, chatID, "🙏 What is the apology for?", apologyKindMenu())
	case *session.LeaveForm:
		b.send(ctx, chatID, "📅 Enter the start date (YYYY-MM-DD):", telegram.CancelMenu())
	case *session.InitiativeForm:
		b.send(ctx, chatID, "💡 Enter the name of your proposal or initiative:", telegram.CancelMenu())
	case *session.ProblemForm:
		b.send(ctx, chatID, "⚠️ Describe the problem:", telegram.CancelMenu())
	case *session.FeedbackForm:
		b.send(ctx, chatID, "💬 Write your feedback:", telegram.CancelMenu())
	}
}

func (b *BotService) handleFormInput(ctx context.Context, sess *session.Session, chatID int64, message *tgbotapi.Message, text string) {
	switch form := sess.Form.(type) {
	case *session.VolunteerForm:
		b.admin.HandleVolunteerText(ctx, sess, form, chatID, text)
	case *session.ProblemForm:
		b.handleProblem(ctx, sess, form, chatID, message, text)
	case session.RequestForm:
		if form.Confirming() {
			b.sendSummary(ctx, sess, chatID, msgUseButtons+"\n\n")
			return
		}

		if text == "" {
			b.send(ctx, chatID, msgTextRequired, telegram.CancelMenu())
			return
		}

		switch form := form.(type) {
		case *session.ApologyForm:
			b.handleApology(ctx, sess, form, chatID, text)
		case *session.LeaveForm:
			b.handleLeave(ctx, sess, form, chatID, text)
		case *session.InitiativeForm:
			b.handleInitiative(ctx, sess, form, chatID, text)
		case *session.FeedbackForm:
			form.Text = text
			form.Step = session.FeedbackConfirmStep
			b.sendSummary(ctx, sess, chatID, "")
		}
	default:
		sess.Reset()
		b.showMainMenu(ctx, sess, chatID, "Please choose an option from the menu:")
	}
}

func (b *BotService) handleApologyKind(ctx context.Context, sess *session.Session, chatID int64, kind string) {
	form, ok := sess.Form.(*session.ApologyForm)
	if !ok || sess.Stage != session.StageForm || form.Step != session.ApologyKindStep {
		b.log(ctx).Info("stale apology kind ignored", zap.String("kind", kind))
		return
	}

	if session.ApologyKindLabel(kind) == "" {
		b.send(ctx, chatID, msgUseButtons, apologyKindMenu())
		return
	}

	form.Kind = kind
	if kind == session.ApologyKindInitiative {
		form.Step = session.ApologyInitiativeNameStep
		b.send(ctx, chatID, "💡 Which initiative are you withdrawing from?", telegram.CancelMenu())
		return
	}

	form.Step = session.ApologyReasonStep
	b.send(ctx, chatID, "✍️ Enter the reason:", telegram.CancelMenu())
}

func (b *BotService) handleApology(ctx context.Context, sess *session.Session, form *session.ApologyForm, chatID int64, text string) {
	switch form.Step {
	case session.ApologyKindStep:
		b.send(ctx, chatID, msgUseButtons, apologyKindMenu())
	case session.ApologyInitiativeNameStep:
		form.InitiativeName = text
		form.Step = session.ApologyReasonStep
		b.send(ctx, chatID, "✍️ Enter the reason:", telegram.CancelMenu())
	case session.ApologyReasonStep:
		form.Reason = text
		form.Step = session.ApologyNotesStep
		b.send(ctx, chatID, "🗒 Any additional notes? Send \"none\" if there are none.", telegram.CancelMenu())
	case session.ApologyNotesStep:
		form.Notes = text
		form.Step = session.ApologyConfirmStep
		b.sendSummary(ctx, sess, chatID, "")
	}
}

func (b *BotService) handleLeave(ctx context.Context, sess *session.Session, form *session.LeaveForm, chatID int64, text string) {
	switch form.Step {
	case session.LeaveStartDateStep:
		if _, ok := IsValidDate(text); !ok {
			b.send(ctx, chatID, msgBadDate, telegram.CancelMenu())
			return
		}

		form.StartDate = text
		form.Step = session.LeaveEndDateStep
		b.send(ctx, chatID, "📅 Enter the end date (YYYY-MM-DD):", telegram.CancelMenu())

	case session.LeaveEndDateStep:
		end, ok := IsValidDate(text)
		if !ok {
			b.send(ctx, chatID, msgBadDate, telegram.CancelMenu())
			return
		}

		start, _ := IsValidDate(form.StartDate)
		if end.Before(start) {
			b.send(ctx, chatID, "⚠️ The end date cannot be before the start date. Enter the end date (YYYY-MM-DD):", telegram.CancelMenu())
			return
		}

		form.EndDate = text
		form.Step = session.LeaveReasonStep
		b.send(ctx, chatID, "✍️ Enter the reason for your leave:", telegram.CancelMenu())

	case session.LeaveReasonStep:
		form.Reason = text
		form.Step = session.LeaveNotesStep
		b.send(ctx, chatID, "🗒 Any additional notes? Send \"none\" if there are none.", telegram.CancelMenu())

	case session.LeaveNotesStep:
		form.Notes = text
		form.Step = session.LeaveConfirmStep
		b.sendSummary(ctx, sess, chatID, "")
	}
}

func (b *BotService) handleInitiative(ctx context.Context, sess *session.Session, form *session.InitiativeForm, chatID int64, text string) {
	switch form.Step {
	case session.InitiativeNameStep:
		form.Name = text
		form.Step = session.InitiativeDetailsStep
		b.send(ctx, chatID, "📄 Describe the proposal in detail:", telegram.CancelMenu())
	case session.InitiativeDetailsStep:
		form.Details = text
		form.Step = session.InitiativeConfirmStep
		b.sendSummary(ctx, sess, chatID, "")
	}
}

func (b *BotService) handleProblem(ctx context.Context, sess *session.Session, form *session.ProblemForm, chatID int64, message *tgbotapi.Message, text string) {
	switch form.Step {
	case session.ProblemDescriptionStep:
		if text == "" {
			b.send(ctx, chatID, msgTextRequired, telegram.CancelMenu())
			return
		}

		form.Description = text
		form.Step = session.ProblemEvidenceStep
		b.send(ctx, chatID, "📎 Send evidence: a photo, a document or a short note.", telegram.CancelMenu())

	case session.ProblemEvidenceStep:
		fileID := attachmentID(message)
		if fileID == "" {
			if text == "" {
				b.send(ctx, chatID, msgTextRequired, telegram.CancelMenu())
				return
			}

			form.Evidence = text
			form.Step = session.ProblemConfirmStep
			b.sendSummary(ctx, sess, chatID, "")
			return
		}

		name, err := b.fileService.SaveFile(ctx, fileID)
		if err != nil {
			b.log(ctx).Error("cannot archive evidence", zap.Error(err))
			b.send(ctx, chatID, "⚠️ Could not save the attachment. Send it again or describe the evidence in text.", telegram.CancelMenu())
			return
		}

		form.EvidenceFile = name
		form.Evidence = cleanInput(message.Caption)
		if form.Evidence == "" {
			form.Evidence = "see attachment"
		}
		form.Step = session.ProblemConfirmStep
		b.sendSummary(ctx, sess, chatID, "")

	case session.ProblemConfirmStep:
		b.sendSummary(ctx, sess, chatID, msgUseButtons+"\n\n")
	}
}

func (b *BotService) sendSummary(ctx context.Context, sess *session.Session, chatID int64, prefix string) {
	form, ok := sess.RequestForm()
	if !ok {
		return
	}

	b.send(ctx, chatID, prefix+notify.Summary(form.RequestType(), sess.RequestFields()), telegram.ConfirmMenu())
}

// fail reports a store error to the user and abandons the wizard.
func (b *BotService) fail(ctx context.Context, sess *session.Session, chatID int64, msg string, err error) {
	b.log(ctx).Error(msg, zap.Error(err))
	b.discard(ctx, sess)
	b.showMainMenu(ctx, sess, chatID, msgStoreFailure)
}

func apologyKindMenu() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(session.ApologyKinds)+1)
	for _, kind := range session.ApologyKinds {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(session.ApologyKindLabel(kind), telegram.ApologyKindData(kind)),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", telegram.TokenCancel),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// attachmentID returns the file id of the largest photo or the document
// carried by message, if any.
func attachmentID(message *tgbotapi.Message) string {
	if len(message.Photo) > 0 {
		return message.Photo[len(message.Photo)-1].FileID
	}

	if message.Document != nil {
		return message.Document.FileID
	}

	return ""
}
