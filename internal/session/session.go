// Package session implements the three-step bill-splitting flow as a state
// container that is mutated only through intents.
//
// Steps run strictly in order:
//
//	CollectingCount -> CollectingOrders -> ShowingSummary
//
// ShowingSummary can go back to CollectingOrders, and Reset returns to
// CollectingCount from anywhere. Apply evaluates an intent against a deep copy
// and commits it only when it succeeds, so a rejected intent leaves the
// session exactly as it was.
package session

import (
	"fmt"
	"time"

	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/models"
)

// Step is a position in the flow.
type Step int

const (
	StepCollectingCount Step = iota + 1
	StepCollectingOrders
	StepShowingSummary
)

func (s Step) String() string {
	switch s {
	case StepCollectingCount:
		return "collecting_count"
	case StepCollectingOrders:
		return "collecting_orders"
	case StepShowingSummary:
		return "showing_summary"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

const (
	MinParticipants = 1
	MaxParticipants = 20

	// DefaultCount is the candidate participant count of a fresh session.
	DefaultCount = 2
)

// Session is the state of one user's bill-splitting flow.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string `json:"id"`

	Step Step `json:"step"`

	// Count is the candidate participant count. It only has to be within
	// [MinParticipants, MaxParticipants] when it is confirmed.
	Count int `json:"count"`

	Participants []models.Participant `json:"participants"`
	Settings     models.Settings      `json:"settings"`

	// Results are replaced as a whole by every successful calculation.
	Results []models.Result `json:"results"`

	// Locale survives Reset; it is a display preference, not bill data.
	Locale i18n.Locale `json:"locale"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a session in its initial state.
func New(id string, locale i18n.Locale) *Session {
	s := &Session{ID: id, Locale: locale}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.Step = StepCollectingCount
	s.Count = DefaultCount
	s.Participants = []models.Participant{}
	s.Settings = models.DefaultSettings()
	s.Results = []models.Result{}
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	c.Participants = make([]models.Participant, len(s.Participants))
	for i, p := range s.Participants {
		c.Participants[i] = p.Clone()
	}
	c.Results = make([]models.Result, len(s.Results))
	for i, r := range s.Results {
		r.Orders = append([]models.OrderLine(nil), r.Orders...)
		c.Results[i] = r
	}
	return &c
}

// Apply performs the intent. On error the session is left unchanged.
func (s *Session) Apply(in Intent, now time.Time) error {
	next := s.Clone()
	if err := in.apply(next); err != nil {
		return err
	}
	next.UpdatedAt = now
	*s = *next
	return nil
}

// Participant returns a copy of the participant at index.
func (s *Session) Participant(index int) (models.Participant, error) {
	if index < 0 || index >= len(s.Participants) {
		return models.Participant{}, fmt.Errorf("%w: %d", ErrParticipantIndex, index)
	}
	return s.Participants[index].Clone(), nil
}

func (s *Session) requireStep(want Step, intent string) error {
	if s.Step != want {
		return &TransitionError{Intent: intent, Step: s.Step}
	}
	return nil
}
