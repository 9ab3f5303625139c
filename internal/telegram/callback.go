package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gratefultolord/hr_requests_bot/internal/model"
)

// Menu tokens carried as plain callback data.
const (
	TokenApology         = "apology"
	TokenLeave           = "leave"
	TokenInitiative      = "initiative"
	TokenProblem         = "problem"
	TokenFeedback        = "feedback"
	TokenContact         = "contact"
	TokenBackToMenu      = "back_to_menu"
	TokenNewRequest      = "new_request"
	TokenConfirm         = "confirm"
	TokenCancel          = "cancel"
	TokenAdminMenu       = "admin_menu"
	TokenAddVolunteer    = "add_volunteer"
	TokenListVolunteers  = "list_volunteers"
	TokenPendingRequests = "pending_requests"
)

const (
	prefixAction      = "action"
	prefixTeam        = "team_id"
	prefixTeamSelect  = "team_select"
	prefixApologyKind = "apology_kind"

	separator = "|"

	// Telegram rejects callback data longer than this many bytes.
	maxCallbackData = 64
)

var ErrBadCallback = errors.New("malformed callback data")

type CallbackKind int

const (
	CallbackToken CallbackKind = iota
	CallbackDecision
	CallbackTeam
	CallbackTeamSelect
	CallbackApologyKind
)

// Callback is decoded button correlation data.
type Callback struct {
	Kind CallbackKind

	// CallbackToken
	Token string

	// CallbackDecision
	Decision    model.Decision
	RequestType model.RequestType
	RequestID   string
	RequesterID int64

	// CallbackTeam, CallbackTeamSelect
	TeamID   int64
	TeamName string

	// CallbackApologyKind
	ApologyKind string
}

// ParseCallback decodes one of:
//
//	action|<approve|reject>|<request_type>|<request_id>|<requester_id>
//	team_id|<id>
//	team_select|<id>|<name>
//	apology_kind|<kind>
//	<token>
func ParseCallback(data string) (Callback, error) {
	if data == "" {
		return Callback{}, ErrBadCallback
	}

	parts := strings.Split(data, separator)

	switch parts[0] {
	case prefixAction:
		if len(parts) != 5 {
			return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}

		decision := model.Decision(parts[1])
		if decision != model.DecisionApprove && decision != model.DecisionReject {
			return Callback{}, fmt.Errorf("%w: unknown action %q", ErrBadCallback, parts[1])
		}

		requestType, ok := model.ParseRequestType(parts[2])
		if !ok {
			return Callback{}, fmt.Errorf("%w: unknown request type %q", ErrBadCallback, parts[2])
		}

		if parts[3] == "" {
			return Callback{}, fmt.Errorf("%w: empty request id", ErrBadCallback)
		}

		requesterID, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			return Callback{}, fmt.Errorf("%w: requester id: %v", ErrBadCallback, err)
		}

		return Callback{
			Kind:        CallbackDecision,
			Decision:    decision,
			RequestType: requestType,
			RequestID:   parts[3],
			RequesterID: requesterID,
		}, nil

	case prefixTeam:
		if len(parts) != 2 {
			return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}

		teamID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Callback{}, fmt.Errorf("%w: team id: %v", ErrBadCallback, err)
		}

		return Callback{Kind: CallbackTeam, TeamID: teamID}, nil

	case prefixTeamSelect:
		if len(parts) < 2 {
			return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}

		teamID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Callback{}, fmt.Errorf("%w: team id: %v", ErrBadCallback, err)
		}

		return Callback{
			Kind:     CallbackTeamSelect,
			TeamID:   teamID,
			TeamName: strings.Join(parts[2:], separator),
		}, nil

	case prefixApologyKind:
		if len(parts) != 2 || parts[1] == "" {
			return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
		}

		return Callback{Kind: CallbackApologyKind, ApologyKind: parts[1]}, nil
	}

	if len(parts) != 1 {
		return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}

	return Callback{Kind: CallbackToken, Token: data}, nil
}

func DecisionData(decision model.Decision, requestType model.RequestType, requestID string, requesterID int64) string {
	return strings.Join([]string{
		prefixAction,
		string(decision),
		string(requestType),
		requestID,
		strconv.FormatInt(requesterID, 10),
	}, separator)
}

func TeamData(teamID int64) string {
	return prefixTeam + separator + strconv.FormatInt(teamID, 10)
}

// TeamSelectData carries the team name for readability only; it is cut to
// keep the data within Telegram's limit, and handlers resolve the team by id.
func TeamSelectData(teamID int64, name string) string {
	head := prefixTeamSelect + separator + strconv.FormatInt(teamID, 10) + separator

	return head + truncateBytes(name, maxCallbackData-len(head))
}

func ApologyKindData(kind string) string {
	return prefixApologyKind + separator + kind
}

func truncateBytes(s string, max int) string {
	if max <= 0 {
		return ""
	}

	if len(s) <= max {
		return s
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut]
}
