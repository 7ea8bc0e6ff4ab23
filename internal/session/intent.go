package session

import (
	"fmt"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/editor"
	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/models"
)

// Intent is a request to change a session. Intents are the only way a
// session's fields change.
type Intent interface {
	// Name identifies the intent in logs and metrics.
	Name() string

	apply(s *Session) error
}

// SetCount stores a candidate participant count from raw form text.
type SetCount struct {
	Value string
}

func (SetCount) Name() string { return "set_count" }

func (i SetCount) apply(s *Session) error {
	if err := s.requireStep(StepCollectingCount, i.Name()); err != nil {
		return err
	}
	s.Count = editor.ParseCount(i.Value)
	return nil
}

// ConfirmCount moves to order entry with exactly Count fresh participants.
type ConfirmCount struct{}

func (ConfirmCount) Name() string { return "confirm_count" }

func (i ConfirmCount) apply(s *Session) error {
	if err := s.requireStep(StepCollectingCount, i.Name()); err != nil {
		return err
	}
	if s.Count < MinParticipants || s.Count > MaxParticipants {
		return ErrCountOutOfRange
	}

	participants := make([]models.Participant, s.Count)
	for i := range participants {
		participants[i] = models.NewParticipant()
	}
	s.Participants = participants
	s.Step = StepCollectingOrders
	return nil
}

// EditParticipant applies one editor operation to one participant and
// replaces that participant with the result.
type EditParticipant struct {
	Index int
	Edit  editor.Edit
}

func (EditParticipant) Name() string { return "edit_participant" }

func (i EditParticipant) apply(s *Session) error {
	if err := s.requireStep(StepCollectingOrders, i.Name()); err != nil {
		return err
	}
	current, err := s.Participant(i.Index)
	if err != nil {
		return err
	}
	updated, err := editor.Apply(current, i.Edit)
	if err != nil {
		return fmt.Errorf("participant %d: %w", i.Index, err)
	}
	s.Participants[i.Index] = updated
	return nil
}

// SetTaxPercent stores the tax percentage from raw form text.
type SetTaxPercent struct {
	Value string
}

func (SetTaxPercent) Name() string { return "set_tax_percent" }

func (i SetTaxPercent) apply(s *Session) error {
	if err := s.requireStep(StepCollectingOrders, i.Name()); err != nil {
		return err
	}
	s.Settings.TaxPercent = editor.ParsePercent(i.Value)
	return nil
}

// SetAdditionalCost stores the flat additional charge from raw form text.
type SetAdditionalCost struct {
	Value string
}

func (SetAdditionalCost) Name() string { return "set_additional_cost" }

func (i SetAdditionalCost) apply(s *Session) error {
	if err := s.requireStep(StepCollectingOrders, i.Name()); err != nil {
		return err
	}
	s.Settings.AdditionalCost = editor.ParseAmount(i.Value)
	return nil
}

// Calculate computes every settlement and shows the summary. It requires each
// participant to have at least one valid order line.
type Calculate struct{}

func (Calculate) Name() string { return "calculate" }

func (i Calculate) apply(s *Session) error {
	if err := s.requireStep(StepCollectingOrders, i.Name()); err != nil {
		return err
	}
	if index, ok := calculator.FirstWithoutValidOrder(s.Participants); ok {
		return &MissingOrdersError{Index: index, Name: s.Participants[index].Name}
	}

	s.Results = calculator.Compute(s.Participants, s.Settings.TaxPercent, s.Settings.AdditionalCost)
	s.Step = StepShowingSummary
	return nil
}

// Back returns from the summary to order entry without discarding anything.
type Back struct{}

func (Back) Name() string { return "back" }

func (i Back) apply(s *Session) error {
	if err := s.requireStep(StepShowingSummary, i.Name()); err != nil {
		return err
	}
	s.Step = StepCollectingOrders
	return nil
}

// Reset restores the initial state from any step. The session ID and locale
// are kept.
type Reset struct{}

func (Reset) Name() string { return "reset" }

func (Reset) apply(s *Session) error {
	s.reset()
	return nil
}

// SetLocale switches the display language from any step.
type SetLocale struct {
	Locale string
}

func (SetLocale) Name() string { return "set_locale" }

func (i SetLocale) apply(s *Session) error {
	l, ok := i18n.Parse(i.Locale)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLocale, i.Locale)
	}
	s.Locale = l
	return nil
}
