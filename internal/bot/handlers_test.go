package bot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratefultolord/hr_requests_bot/internal/model"
	"github.com/gratefultolord/hr_requests_bot/internal/session"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram"
	"github.com/gratefultolord/hr_requests_bot/internal/telegram/telegramtest"
)

func TestLeaveRequest_EndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.command(userID, "/start")
	assert.Contains(t, h.lastText(t, userID), "Hello, Ahmad Khalil")

	h.press(userID, telegram.TokenLeave)
	h.text(userID, "Ahmad Khalil")

	teamPrompt, ok := h.rec.Last(userID)
	require.True(t, ok)
	teamA := h.team(t, "Team A")
	teamB := h.team(t, "Team B")
	assert.Equal(t, []string{
		telegram.TeamData(teamA.ID),
		telegram.TeamData(teamB.ID),
		telegram.TokenCancel,
	}, teamPrompt.Buttons())

	h.press(userID, telegram.TeamData(teamA.ID))
	h.text(userID, "2025-01-01")
	h.text(userID, "2025-01-05")
	h.text(userID, "personal")
	h.text(userID, "none")

	summary, ok := h.rec.Last(userID)
	require.True(t, ok)
	for _, line := range []string{
		"Full name: Ahmad Khalil",
		"Team: Team A",
		"Start date: 2025-01-01",
		"End date: 2025-01-05",
		"Reason: personal",
		"Notes: none",
	} {
		assert.Contains(t, summary.Text, line)
	}
	assert.Empty(t, summary.ParseMode)
	assert.Equal(t, []string{telegram.TokenConfirm, telegram.TokenCancel}, summary.Buttons())
	assert.Empty(t, h.rec.To(adminID, telegramtest.KindMessage), "nothing is sent before confirmation")

	h.press(userID, telegram.TokenConfirm)

	adminMsgs := h.rec.To(adminID, telegramtest.KindMessage)
	require.Len(t, adminMsgs, 1)
	notification := adminMsgs[0]
	assert.Equal(t, tgbotapi.ModeHTML, notification.ParseMode)
	assert.Contains(t, notification.Text, "Leave / Absence")
	assert.Contains(t, notification.Text, "<code>REQ0001</code>")
	assert.Contains(t, notification.Text, "Ahmad Khalil (<code>12345</code>)")
	assert.Contains(t, notification.Text, "• <b>Start date:</b> <i>2025-01-01</i>")
	assert.Equal(t, []string{
		"action|approve|leave|REQ0001|12345",
		"action|reject|leave|REQ0001|12345",
	}, notification.Buttons())

	confirmation, ok := h.rec.Last(userID)
	require.True(t, ok)
	assert.Contains(t, confirmation.Text, "REQ0001")
	assert.Contains(t, confirmation.Text, "Leave / Absence")
	assert.Equal(t, []string{telegram.TokenNewRequest}, confirmation.Buttons())

	stored, err := h.requests.GetByID(ctx, "REQ0001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Equal(t, userID, stored.TelegramUserID)
	require.NotNil(t, stored.AdminMessageID)
	assert.Equal(t, notification.MessageID, *stored.AdminMessageID)

	fields, err := stored.Fields()
	require.NoError(t, err)
	assert.Equal(t, model.Field{Label: "Full name", Value: "Ahmad Khalil"}, fields[0])
	assert.Len(t, fields, 6)

	state := h.snapshot(userID)
	assert.Equal(t, session.StageMainMenu, state.Stage)
	assert.Nil(t, state.Form)

	h.press(userID, telegram.TokenNewRequest)
	menu, ok := h.rec.Last(userID)
	require.True(t, ok)
	assert.Contains(t, menu.Buttons(), telegram.TokenLeave)
}

func TestWizard_ValidationRepromptsSameStep(t *testing.T) {
	h := newHarness(t)

	h.press(userID, telegram.TokenLeave)

	h.text(userID, "Al")
	assert.Contains(t, h.lastText(t, userID), "at least 3 characters")
	assert.Equal(t, session.StageFullName, h.snapshot(userID).Stage)

	h.text(userID, "  Ahmad Khalil  ")
	assert.Equal(t, session.StageTeam, h.snapshot(userID).Stage)
	assert.Equal(t, "Ahmad Khalil", h.snapshot(userID).FullName)

	h.text(userID, "Team Z")
	assert.Contains(t, h.lastText(t, userID), "Unknown team")
	assert.Equal(t, session.StageTeam, h.snapshot(userID).Stage)

	h.text(userID, "Team B")
	state := h.snapshot(userID)
	assert.Equal(t, session.StageForm, state.Stage)
	assert.Equal(t, "Team B", state.TeamName)

	h.text(userID, "01.01.2025")
	assert.Contains(t, h.lastText(t, userID), "YYYY-MM-DD")

	h.text(userID, "2025-13-01")
	assert.Contains(t, h.lastText(t, userID), "YYYY-MM-DD")

	h.text(userID, "2025-01-10")
	h.text(userID, "2025-01-09")
	assert.Contains(t, h.lastText(t, userID), "cannot be before the start date")

	form, ok := h.snapshot(userID).Form.(*session.LeaveForm)
	require.True(t, ok)
	assert.Equal(t, session.LeaveEndDateStep, form.Step)
	assert.Equal(t, "2025-01-10", form.StartDate)
	assert.Empty(t, form.EndDate)

	h.text(userID, "2025-01-10")
	assert.Equal(t, session.LeaveReasonStep, form.Step)
}

func TestApology_InitiativeKindAddsNameStep(t *testing.T) {
	h := newHarness(t)

	h.press(userID, telegram.TokenApology)
	h.text(userID, "Ahmad Khalil")
	h.text(userID, "Team A")

	kinds, ok := h.rec.Last(userID)
	require.True(t, ok)
	assert.Contains(t, kinds.Buttons(), telegram.ApologyKindData(session.ApologyKindInitiative))

	h.text(userID, "typed instead of pressing")
	assert.Contains(t, h.lastText(t, userID), "use the buttons")

	h.press(userID, telegram.ApologyKindData(session.ApologyKindInitiative))
	assert.Contains(t, h.lastText(t, userID), "Which initiative")

	h.text(userID, "Clean Beach")
	h.text(userID, "sick")
	h.text(userID, "none")

	summary := h.lastText(t, userID)
	assert.Contains(t, summary, "Apology type: Withdrawing from an initiative")
	assert.Contains(t, summary, "Initiative: Clean Beach")
	assert.Contains(t, summary, "Reason: sick")
}

func TestApology_OtherKindsSkipNameStep(t *testing.T) {
	h := newHarness(t)

	h.press(userID, telegram.TokenApology)
	h.text(userID, "Ahmad Khalil")
	h.text(userID, "Team A")
	h.press(userID, telegram.ApologyKindData("meeting_delay"))
	h.text(userID, "traffic")
	h.text(userID, "none")

	summary := h.lastText(t, userID)
	assert.Contains(t, summary, "Apology type: Late for a meeting")
	assert.NotContains(t, summary, "Initiative:")

	h.press(userID, telegram.ApologyKindData("meeting_delay"))
	assert.Equal(t, summary, h.lastText(t, userID), "stale kind button is ignored")
}

func TestDispatch_AdminUnreachableStillConfirms(t *testing.T) {
	h := newHarness(t)
	h.rec.FailChat(adminID)

	h.press(userID, telegram.TokenFeedback)
	h.text(userID, "Ahmad Khalil")
	h.text(userID, "Team A")
	h.text(userID, "Great onboarding!")
	h.press(userID, telegram.TokenConfirm)

	adminMsgs := h.rec.To(adminID, telegramtest.KindMessage)
	require.Len(t, adminMsgs, 1)
	assert.Error(t, adminMsgs[0].Err)

	assert.Contains(t, h.lastText(t, userID), "REQ0001")

	stored, err := h.requests.GetByID(context.Background(), "REQ0001")
	require.NoError(t, err)
	assert.Nil(t, stored.AdminMessageID)
	assert.Equal(t, session.StageMainMenu, h.snapshot(userID).Stage)
}

func TestCancel_IdempotentAndDispatchesNothing(t *testing.T) {
	h := newHarness(t)

	h.press(userID, telegram.TokenCancel)
	h.press(userID, telegram.TokenCancel)
	h.command(userID, "/cancel")

	msgs := h.rec.To(userID, telegramtest.KindMessage)
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Contains(t, m.Text, "Cancelled")
		assert.Contains(t, m.Buttons(), telegram.TokenLeave)
	}

	h.press(userID, telegram.TokenInitiative)
	h.text(userID, "Ahmad Khalil")
	h.text(userID, "Team A")
	h.text(userID, "Clean Beach")
	h.command(userID, "/cancel")
	h.press(userID, telegram.TokenConfirm)

	assert.Empty(t, h.rec.To(adminID, telegramtest.KindMessage))
	assert.Contains(t, h.lastText(t, userID), "no request waiting")
	assert.Equal(t, session.StageMainMenu, h.snapshot(userID).Stage)
}

func TestStartRequest_ResetsPreviousWizard(t *testing.T) {
	h := newHarness(t)

	h.press(userID, telegram.TokenLeave)
	h.text(userID, "Ahmad Khalil")
	h.press(userID, telegram.TokenFeedback)

	state := h.snapshot(userID)
	assert.Equal(t, session.StageFullName, state.Stage)
	assert.Empty(t, state.FullName)
	assert.IsType(t, &session.FeedbackForm{}, state.Form)
}

func TestProblem_EvidenceAttachmentArchived(t *testing.T) {
	h := newHarness(t)

	h.press(userID, telegram.TokenProblem)
	h.text(userID, "Ahmad Khalil")
	h.text(userID, "Team A")
	h.text(userID, "Projector is broken")
	h.photo(userID, "room 4", "small", "large")

	form, ok := h.snapshot(userID).Form.(*session.ProblemForm)
	require.True(t, ok)
	require.NotEmpty(t, form.EvidenceFile)
	assert.Equal(t, "room 4", form.Evidence)

	path := filepath.Join(h.evidenceDir, form.EvidenceFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "photo-bytes", string(data))

	summary := h.lastText(t, userID)
	assert.Contains(t, summary, "Description: Projector is broken")
	assert.Contains(t, summary, "Attachment: "+form.EvidenceFile)

	h.press(userID, telegram.TokenCancel)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "cancelled evidence is removed")
}

func TestProblem_StoreFailureRemovesEvidence(t *testing.T) {
	h := newHarness(t)

	h.press(userID, telegram.TokenProblem)
	h.text(userID, "Ahmad Khalil")
	h.text(userID, "Team A")
	h.text(userID, "Projector is broken")
	h.photo(userID, "", "large")

	form, ok := h.snapshot(userID).Form.(*session.ProblemForm)
	require.True(t, ok)
	require.NotEmpty(t, form.EvidenceFile)
	path := filepath.Join(h.evidenceDir, form.EvidenceFile)

	require.NoError(t, h.database.Close())
	h.press(userID, telegram.TokenConfirm)

	assert.Contains(t, h.lastText(t, userID), "could not be submitted")
	assert.Empty(t, h.rec.To(adminID, telegramtest.KindMessage))
	assert.Equal(t, session.StageMainMenu, h.snapshot(userID).Stage)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "evidence of an unsent request is removed")
}

func TestMenu_ContactHelpAndAdminEntry(t *testing.T) {
	h := newHarness(t)

	h.press(userID, telegram.TokenContact)
	contact, ok := h.rec.Last(userID)
	require.True(t, ok)
	assert.Contains(t, contact.Text, "hr@example.com")
	assert.NotContains(t, contact.Buttons(), telegram.TokenAdminMenu)

	h.command(userID, "/help")
	assert.Contains(t, h.lastText(t, userID), "/cancel")

	h.command(userID, "/admin")
	assert.Contains(t, h.lastText(t, userID), "Access denied")

	h.command(adminID, "/start")
	adminMenu, ok := h.rec.Last(adminID)
	require.True(t, ok)
	assert.Contains(t, adminMenu.Buttons(), telegram.TokenAdminMenu)

	h.text(userID, "hello?")
	assert.Contains(t, h.lastText(t, userID), "choose an option")
}

func TestDispatch_ConcurrentUsersGetDistinctIDs(t *testing.T) {
	h := newHarness(t)
	users := []int64{101, 102, 103, 104}

	for _, id := range users {
		h.press(id, telegram.TokenFeedback)
		h.text(id, "Volunteer Name")
		h.text(id, "Team A")
		h.text(id, "feedback text")
	}

	var wg sync.WaitGroup
	for _, id := range users {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			h.press(id, telegram.TokenConfirm)
		}(id)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, call := range h.rec.To(adminID, telegramtest.KindMessage) {
		for _, data := range call.Buttons() {
			cb, err := telegram.ParseCallback(data)
			require.NoError(t, err)
			if cb.Decision == model.DecisionApprove {
				assert.False(t, seen[cb.RequestID], "duplicate id %s", cb.RequestID)
				seen[cb.RequestID] = true
			}
		}
	}
	assert.Len(t, seen, len(users))
}

func TestRegisterCommands(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.bot.RegisterCommands())

	calls := h.rec.Calls()
	require.Len(t, calls, 1)
	cfg, ok := calls[0].Raw.(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	assert.Equal(t, Commands, cfg.Commands)
}

func TestIsValidDate(t *testing.T) {
	_, ok := IsValidDate("2025-02-28")
	assert.True(t, ok)

	for _, bad := range []string{"2025-02-30", "25-01-01", "2025/01/01", "", "2025-01-01x"} {
		_, ok := IsValidDate(bad)
		assert.False(t, ok, bad)
	}
}
