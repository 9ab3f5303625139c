package session

import (
	"github.com/gratefultolord/hr_requests_bot/internal/model"
)

// Form is the type-specific part of a wizard. Each implementation carries
// its own step and only the fields of its own request type.
type Form interface {
	form()
}

// RequestForm is a Form that ends in a request dispatched to the administrator.
type RequestForm interface {
	Form
	RequestType() model.RequestType
	Fields() []model.Field
	Confirming() bool
}

type ApologyStep int

const (
	ApologyKindStep ApologyStep = iota
	ApologyInitiativeNameStep
	ApologyReasonStep
	ApologyNotesStep
	ApologyConfirmStep
)

const ApologyKindInitiative = "initiative"

var ApologyKinds = []string{"task_delay", "meeting_delay", "task_absence", "meeting_absence", ApologyKindInitiative}

func ApologyKindLabel(kind string) string {
	switch kind {
	case "task_delay":
		return "Late for a task"
	case "meeting_delay":
		return "Late for a meeting"
	case "task_absence":
		return "Missing a task"
	case "meeting_absence":
		return "Missing a meeting"
	case ApologyKindInitiative:
		return "Withdrawing from an initiative"
	default:
		return ""
	}
}

type ApologyForm struct {
	Step           ApologyStep
	Kind           string
	InitiativeName string
	Reason         string
	Notes          string
}

func (*ApologyForm) form() {}

func (*ApologyForm) RequestType() model.RequestType { return model.RequestApology }

func (f *ApologyForm) Confirming() bool { return f.Step == ApologyConfirmStep }

func (f *ApologyForm) Fields() []model.Field {
	fields := []model.Field{{Label: "Apology type", Value: ApologyKindLabel(f.Kind)}}
	if f.Kind == ApologyKindInitiative {
		fields = append(fields, model.Field{Label: "Initiative", Value: f.InitiativeName})
	}

	return append(fields,
		model.Field{Label: "Reason", Value: f.Reason},
		model.Field{Label: "Notes", Value: f.Notes},
	)
}

type LeaveStep int

const (
	LeaveStartDateStep LeaveStep = iota
	LeaveEndDateStep
	LeaveReasonStep
	LeaveNotesStep
	LeaveConfirmStep
)

type LeaveForm struct {
	Step      LeaveStep
	StartDate string
	EndDate   string
	Reason    string
	Notes     string
}

func (*LeaveForm) form() {}

func (*LeaveForm) RequestType() model.RequestType { return model.RequestLeave }

func (f *LeaveForm) Confirming() bool { return f.Step == LeaveConfirmStep }

func (f *LeaveForm) Fields() []model.Field {
	return []model.Field{
		{Label: "Start date", Value: f.StartDate},
		{Label: "End date", Value: f.EndDate},
		{Label: "Reason", Value: f.Reason},
		{Label: "Notes", Value: f.Notes},
	}
}

type InitiativeStep int

const (
	InitiativeNameStep InitiativeStep = iota
	InitiativeDetailsStep
	InitiativeConfirmStep
)

type InitiativeForm struct {
	Step    InitiativeStep
	Name    string
	Details string
}

func (*InitiativeForm) form() {}

func (*InitiativeForm) RequestType() model.RequestType { return model.RequestInitiative }

func (f *InitiativeForm) Confirming() bool { return f.Step == InitiativeConfirmStep }

func (f *InitiativeForm) Fields() []model.Field {
	return []model.Field{
		{Label: "Proposal", Value: f.Name},
		{Label: "Details", Value: f.Details},
	}
}

type ProblemStep int

const (
	ProblemDescriptionStep ProblemStep = iota
	ProblemEvidenceStep
	ProblemConfirmStep
)

type ProblemForm struct {
	Step        ProblemStep
	Description string
	Evidence    string
	// EvidenceFile is the archived attachment, if the user sent one.
	EvidenceFile string
}

func (*ProblemForm) form() {}

func (*ProblemForm) RequestType() model.RequestType { return model.RequestProblem }

func (f *ProblemForm) Confirming() bool { return f.Step == ProblemConfirmStep }

func (f *ProblemForm) Fields() []model.Field {
	fields := []model.Field{
		{Label: "Description", Value: f.Description},
		{Label: "Evidence / notes", Value: f.Evidence},
	}
	if f.EvidenceFile != "" {
		fields = append(fields, model.Field{Label: "Attachment", Value: f.EvidenceFile})
	}

	return fields
}

type FeedbackStep int

const (
	FeedbackTextStep FeedbackStep = iota
	FeedbackConfirmStep
)

type FeedbackForm struct {
	Step FeedbackStep
	Text string
}

func (*FeedbackForm) form() {}

func (*FeedbackForm) RequestType() model.RequestType { return model.RequestFeedback }

func (f *FeedbackForm) Confirming() bool { return f.Step == FeedbackConfirmStep }

func (f *FeedbackForm) Fields() []model.Field {
	return []model.Field{{Label: "Feedback", Value: f.Text}}
}

type VolunteerStep int

const (
	VolunteerNameStep VolunteerStep = iota
	VolunteerTelegramIDStep
	VolunteerTeamStep
)

// VolunteerForm is the admin-only registration sub-wizard.
type VolunteerForm struct {
	Step           VolunteerStep
	FullName       string
	TelegramUserID int64
}

func (*VolunteerForm) form() {}

// NewRequestForm returns the empty form for t, positioned at its first step.
func NewRequestForm(t model.RequestType) RequestForm {
	switch t {
	case model.RequestApology:
		return &ApologyForm{}
	case model.RequestLeave:
		return &LeaveForm{}
	case model.RequestInitiative:
		return &InitiativeForm{}
	case model.RequestProblem:
		return &ProblemForm{}
	case model.RequestFeedback:
		return &FeedbackForm{}
	default:
		return nil
	}
}
