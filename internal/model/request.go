package model

type RequestType string

const (
	RequestApology    RequestType = "apology"
	RequestLeave      RequestType = "leave"
	RequestInitiative RequestType = "initiative"
	RequestProblem    RequestType = "problem"
	RequestFeedback   RequestType = "feedback"
)

var RequestTypes = []RequestType{
	RequestApology,
	RequestLeave,
	RequestInitiative,
	RequestProblem,
	RequestFeedback,
}

func ParseRequestType(s string) (RequestType, bool) {
	for _, t := range RequestTypes {
		if string(t) == s {
			return t, true
		}
	}

	return "", false
}

// Title is the human readable name used in summaries and notifications.
func (t RequestType) Title() string {
	switch t {
	case RequestApology:
		return "Apology"
	case RequestLeave:
		return "Leave / Absence"
	case RequestInitiative:
		return "Proposal / Initiative"
	case RequestProblem:
		return "Problem Report"
	case RequestFeedback:
		return "Feedback"
	default:
		return "Unknown request"
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Label() string {
	switch s {
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Status() Status {
	if d == DecisionApprove {
		return StatusApproved
	}

	return StatusRejected
}

// Field is one collected label/value pair, kept in wizard order.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MinFullNameLength is the shortest accepted full name, in characters.
const MinFullNameLength = 3
