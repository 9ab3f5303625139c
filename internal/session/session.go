package session

import (
	"sync"

	"github.com/gratefultolord/hr_requests_bot/internal/model"
)

// Stage is the wizard position shared by every request type: the common
// name and team steps come first, then the form's own steps.
type Stage int

const (
	StageMainMenu Stage = iota
	StageFullName
	StageTeam
	StageForm
)

func (s Stage) String() string {
	switch s {
	case StageFullName:
		return "full_name"
	case StageTeam:
		return "team"
	case StageForm:
		return "form"
	default:
		return "main_menu"
	}
}

type Session struct {
	mu sync.Mutex

	UserID   int64
	Stage    Stage
	FullName string
	TeamID   int64
	TeamName string
	Form     Form
}

// Reset discards any in-progress wizard and returns the user to the main menu.
func (s *Session) Reset() {
	s.Stage = StageMainMenu
	s.FullName = ""
	s.TeamID = 0
	s.TeamName = ""
	s.Form = nil
}

// StartRequest discards whatever was in progress and starts the wizard for t.
func (s *Session) StartRequest(t model.RequestType) RequestForm {
	s.Reset()

	form := NewRequestForm(t)
	s.Form = form
	s.Stage = StageFullName

	return form
}

// StartVolunteer discards whatever was in progress and starts volunteer registration.
func (s *Session) StartVolunteer() *VolunteerForm {
	s.Reset()

	form := &VolunteerForm{}
	s.Form = form
	s.Stage = StageForm

	return form
}

func (s *Session) RequestForm() (RequestForm, bool) {
	form, ok := s.Form.(RequestForm)
	return form, ok
}

// RequestFields lists everything collected so far, common fields first.
func (s *Session) RequestFields() []model.Field {
	fields := []model.Field{
		{Label: "Full name", Value: s.FullName},
		{Label: "Team", Value: s.TeamName},
	}

	if form, ok := s.RequestForm(); ok {
		fields = append(fields, form.Fields()...)
	}

	return fields
}

// Manager owns the sessions of every active user. Sessions live in memory
// only and are never expired.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
	}
}

// Acquire returns the user's session, creating it on first use, locked for
// the handling of one update. The caller must call release when done.
func (m *Manager) Acquire(userID int64) (sess *Session, release func()) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{UserID: userID}
		m.sessions[userID] = sess
	}
	m.mu.Unlock()

	sess.mu.Lock()

	return sess, sess.mu.Unlock
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}
