package notify

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/gratefultolord/hr_requests_bot/internal/model"
)

const (
	// Values longer than this are rendered as a preformatted block.
	longValueThreshold = 100

	// maxValueLength keeps the largest form under Telegram's 4096
	// character message limit.
	maxValueLength = 500
)

// Escape makes user supplied text safe for Telegram's HTML parse mode. The
// text itself is kept, markup included.
func Escape(s string) string {
	return html.EscapeString(s)
}

// clip shortens values over maxValueLength. The stored request keeps the
// full text.
func clip(s string) string {
	n := utf8.RuneCountInString(s)
	if n <= maxValueLength {
		return s
	}

	return fmt.Sprintf("%s… (%d more characters in the stored request)", string([]rune(s)[:maxValueLength]), n-maxValueLength)
}

// Summary is the plain-text recap shown to the requester before confirming.
// Values are reproduced verbatim.
func Summary(requestType model.RequestType, fields []model.Field) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📋 %s request summary:\n", requestType.Title())
	for _, f := range fields {
		fmt.Fprintf(&b, "• %s: %s\n", f.Label, f.Value)
	}
	b.WriteString("\nDo you want to confirm and send it?")

	return b.String()
}

type Notification struct {
	RequestID     string
	Type          model.RequestType
	RequesterID   int64
	RequesterName string
	Fields        []model.Field
}

// AdminNotification renders n in HTML parse mode.
func AdminNotification(n Notification) string {
	lines := []string{
		fmt.Sprintf("<b>📢 New request: %s</b>", Escape(n.Type.Title())),
		fmt.Sprintf("🆔 Request: <code>%s</code>", Escape(n.RequestID)),
		fmt.Sprintf("👤 From: %s (<code>%d</code>)", Escape(n.RequesterName), n.RequesterID),
		"",
	}

	for _, f := range n.Fields {
		if f.Value == "" {
			continue
		}

		value := Escape(clip(f.Value))
		if utf8.RuneCountInString(f.Value) > longValueThreshold {
			lines = append(lines, fmt.Sprintf("• <b>%s:</b>\n<pre>%s</pre>", Escape(f.Label), value))
		} else {
			lines = append(lines, fmt.Sprintf("• <b>%s:</b> <i>%s</i>", Escape(f.Label), value))
		}
	}

	return strings.Join(lines, "\n")
}

// WithStatus appends the decision line to the plain text of a delivered
// notification. The text's entities stay valid since nothing before the
// appended line moves.
func WithStatus(text string, status model.Status, actor string) string {
	icon := "✅"
	if status == model.StatusRejected {
		icon = "❌"
	}

	return fmt.Sprintf("%s\n\nStatus: %s %s by %s", text, icon, status.Label(), actor)
}

func Confirmation(requestType model.RequestType, requestID string) string {
	return fmt.Sprintf(
		"✅ Your request (%s) was sent successfully.\nRequest number: %s\nThe HR officer will review it shortly.",
		requestType.Title(), requestID,
	)
}

// Outcome is the message sent to the requester once the administrator decides.
func Outcome(decision model.Decision, requestType model.RequestType, requestID, hrContact string) string {
	if decision == model.DecisionApprove {
		return fmt.Sprintf("✅ Good news! Your %s request %s has been approved.", requestType.Title(), requestID)
	}

	return fmt.Sprintf(
		"❌ Your %s request %s was not approved.\nPlease contact the HR officer for details:\n%s",
		requestType.Title(), requestID, hrContact,
	)
}
