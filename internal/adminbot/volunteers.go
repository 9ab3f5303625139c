package adminbot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlekSi/pointer"
	"go.uber.org/zap"

	"github.com/gratefultolord/hr_requests_bot/internal/db"
	"github.com/gratefultolord/hr_requests_bot/internal/session"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
)

const (
	registrationCreated   = "created"
	registrationDuplicate = "duplicate"
	registrationFailed    = "error"
)

func (b *BotService) startVolunteer(ctx context.Context, sess *session.Session, chatID int64) {
	sess.StartVolunteer()
	b.send(ctx, chatID, "👤 Enter the volunteer's full name:", telegram.CancelMenu())
}

// HandleVolunteerText advances the registration sub-wizard with a typed answer.
func (b *BotService) HandleVolunteerText(ctx context.Context, sess *session.Session, form *session.VolunteerForm, chatID int64, text string) {
	if !b.cfg.IsAdmin(sess.UserID) {
		sess.Reset()
		b.send(ctx, chatID, "⛔ Access denied.", nil)
		return
	}

	switch form.Step {
	case session.VolunteerNameStep:
		name, ok := IsValidFullName(text)
		if !ok {
			b.send(ctx, chatID, "⚠️ The name must be at least 3 characters. Enter the volunteer's full name:", telegram.CancelMenu())
			return
		}

		form.FullName = name
		form.Step = session.VolunteerTelegramIDStep
		b.send(ctx, chatID, "🆔 Enter the volunteer's Telegram user id (digits only):", telegram.CancelMenu())

	case session.VolunteerTelegramIDStep:
		text = strings.TrimSpace(text)
		if !IsDigits(text) {
			b.send(ctx, chatID, "⚠️ The Telegram id must contain digits only. Try again:", telegram.CancelMenu())
			return
		}

		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil || id == 0 {
			b.send(ctx, chatID, "⚠️ That Telegram id is not valid. Try again:", telegram.CancelMenu())
			return
		}

		form.TelegramUserID = id
		form.Step = session.VolunteerTeamStep
		b.promptTeam(ctx, sess, chatID, "👥 Choose the volunteer's team:")

	case session.VolunteerTeamStep:
		b.promptTeam(ctx, sess, chatID, "👥 Please choose the team using the buttons below:")
	}
}

// HandleTeamSelect completes registration with the picked team.
func (b *BotService) HandleTeamSelect(ctx context.Context, sess *session.Session, chatID int64, cb telegram.Callback) {
	if !b.cfg.IsAdmin(sess.UserID) {
		b.send(ctx, chatID, "⛔ Access denied.", nil)
		return
	}

	form, ok := sess.Form.(*session.VolunteerForm)
	if !ok || form.Step != session.VolunteerTeamStep {
		b.log(ctx).Info("stale team selection ignored", zap.Int64("team_id", cb.TeamID))
		return
	}

	team, err := b.teamRepo.GetByID(ctx, cb.TeamID)
	if err != nil {
		b.log(ctx).Warn("selected team unavailable", zap.Int64("team_id", cb.TeamID), zap.Error(err))
		b.promptTeam(ctx, sess, chatID, "⚠️ That team is no longer available. Choose another one:")
		return
	}

	volunteer := &db.Volunteer{
		TelegramUserID: form.TelegramUserID,
		FullName:       form.FullName,
		TeamID:         pointer.ToInt64(team.ID),
	}

	logger := b.log(ctx).With(zap.Int64("volunteer_id", volunteer.TelegramUserID), zap.String("team", team.Name))

	var reply string
	err = b.volunteerRepo.Create(ctx, volunteer)
	switch {
	case errors.Is(err, db.ErrVolunteerExists):
		logger.Info("volunteer already registered")
		b.metrics.RecordVolunteerRegistration(registrationDuplicate)
		reply = fmt.Sprintf("⚠️ A volunteer with Telegram id %d is already registered. Nothing was changed.", volunteer.TelegramUserID)
	case err != nil:
		logger.Error("cannot register volunteer", zap.Error(err))
		b.metrics.RecordVolunteerRegistration(registrationFailed)
		reply = "❌ Could not register the volunteer, please try again later."
	default:
		logger.Info("volunteer registered")
		b.metrics.RecordVolunteerRegistration(registrationCreated)
		reply = fmt.Sprintf("✅ %s has been registered in %s.", volunteer.FullName, team.Name)
	}

	sess.Reset()
	b.showMenu(ctx, chatID, reply)
}

func (b *BotService) promptTeam(ctx context.Context, sess *session.Session, chatID int64, text string) {
	teams, err := b.teamRepo.GetAll(ctx)
	if err != nil {
		b.log(ctx).Error("cannot load teams", zap.Error(err))
		sess.Reset()
		b.showMenu(ctx, chatID, "❌ Could not load the team list, please try again later.")
		return
	}

	b.send(ctx, chatID, text, telegram.TeamMenu(teams, func(t db.Team) string {
		return telegram.TeamSelectData(t.ID, t.Name)
	}))
}

func (b *BotService) handleListVolunteers(ctx context.Context, chatID int64) {
	volunteers, err := b.volunteerRepo.GetAll(ctx)
	if err != nil {
		b.log(ctx).Error("cannot load volunteers", zap.Error(err))
		b.showMenu(ctx, chatID, "❌ Could not load the volunteer list.")
		return
	}

	if len(volunteers) == 0 {
		b.showMenu(ctx, chatID, "📭 No volunteers are registered yet.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Registered volunteers (%d):\n", len(volunteers))
	for i, v := range volunteers {
		fmt.Fprintf(&sb, "%d. %s · %d · %s\n", i+1, v.FullName, v.TelegramUserID, pointer.GetString(v.TeamName))
	}

	b.showMenu(ctx, chatID, sb.String())
}
