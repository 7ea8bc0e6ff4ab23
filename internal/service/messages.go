package service

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/editor"
	"github.com/mmynk/splitbill/internal/models"
	"github.com/mmynk/splitbill/internal/session"
)

// ErrUnknownIntent is returned for intent kinds the service does not know.
var ErrUnknownIntent = errors.New("unknown intent")

// StartSessionRequest opens a new session.
type StartSessionRequest struct {
	Locale string `json:"locale,omitempty" validate:"max=16"`
}

// GetSessionRequest loads the session behind a token. Requests on an existing
// session may instead send the token as "Authorization: Bearer <token>".
type GetSessionRequest struct {
	Token string `json:"token,omitempty"`
}

// ApplyIntentRequest applies one or more intents, in order, to a session.
type ApplyIntentRequest struct {
	Token   string          `json:"token,omitempty"`
	Intents []IntentMessage `json:"intents" validate:"required,min=1,max=64,dive"`
}

// IntentMessage is the wire form of a session intent. Value carries the raw
// input for set_count, set_tax_percent, set_additional_cost and set_locale.
type IntentMessage struct {
	Kind        string       `json:"kind" validate:"required,oneof=set_count confirm_count edit_participant set_tax_percent set_additional_cost calculate back reset set_locale"`
	Value       string       `json:"value,omitempty" validate:"max=64"`
	Participant int          `json:"participant,omitempty" validate:"min=0"`
	Edit        *EditMessage `json:"edit,omitempty" validate:"required_if=Kind edit_participant"`
}

// EditMessage is the wire form of a participant edit.
type EditMessage struct {
	Op    string `json:"op" validate:"required,oneof=set_name add_line update_line remove_line"`
	Name  string `json:"name,omitempty" validate:"max=100"`
	Line  int    `json:"line,omitempty" validate:"min=0"`
	Field string `json:"field,omitempty" validate:"omitempty,oneof=item price"`
	Value string `json:"value,omitempty" validate:"max=200"`
}

// SessionResponse returns the session state. Token is only set when a session
// is started.
type SessionResponse struct {
	Token   string      `json:"token,omitempty"`
	Session SessionView `json:"session"`
}

// SessionView is the client-facing state of a session.
type SessionView struct {
	ID           string               `json:"id"`
	Step         string               `json:"step"`
	Count        int                  `json:"count"`
	Participants []models.Participant `json:"participants"`
	Settings     models.Settings      `json:"settings"`
	Results      []models.Result      `json:"results"`
	GrandTotal   float64              `json:"grand_total"`
	Locale       string               `json:"locale"`
}

// ComputeSettlementRequest calculates a settlement without a session.
type ComputeSettlementRequest struct {
	Participants   []ParticipantMessage `json:"participants" validate:"required,min=1,max=20,dive"`
	TaxPercent     float64              `json:"tax_percent" validate:"min=0,max=100"`
	AdditionalCost float64              `json:"additional_cost" validate:"min=0"`
	Locale         string               `json:"locale,omitempty" validate:"max=16"`
}

// ParticipantMessage is one participant of a stateless computation.
type ParticipantMessage struct {
	Name   string             `json:"name" validate:"max=100"`
	Orders []OrderLineMessage `json:"orders" validate:"max=100,dive"`
}

// OrderLineMessage is one order line of a stateless computation.
type OrderLineMessage struct {
	Item  string  `json:"item" validate:"max=200"`
	Price float64 `json:"price"`
}

// ComputeSettlementResponse carries the results and their localized grand
// total.
type ComputeSettlementResponse struct {
	Results        []models.Result `json:"results"`
	GrandTotal     float64         `json:"grand_total"`
	GrandTotalText string          `json:"grand_total_text"`
}

// ExportSummaryRequest asks for the PNG of a calculated session.
type ExportSummaryRequest struct {
	Token string `json:"token,omitempty"`
}

// ExportSummaryResponse carries the PNG; the JSON codec encodes it as base64.
type ExportSummaryResponse struct {
	Filename string `json:"filename"`
	PNG      []byte `json:"png"`
}

func toIntent(m IntentMessage) (session.Intent, error) {
	switch m.Kind {
	case "set_count":
		return session.SetCount{Value: m.Value}, nil
	case "confirm_count":
		return session.ConfirmCount{}, nil
	case "edit_participant":
		if m.Edit == nil {
			return nil, fmt.Errorf("%w: edit_participant without edit", ErrUnknownIntent)
		}
		return session.EditParticipant{
			Index: m.Participant,
			Edit: editor.Edit{
				Op:    editor.Op(m.Edit.Op),
				Name:  m.Edit.Name,
				Line:  m.Edit.Line,
				Field: editor.Field(m.Edit.Field),
				Value: m.Edit.Value,
			},
		}, nil
	case "set_tax_percent":
		return session.SetTaxPercent{Value: m.Value}, nil
	case "set_additional_cost":
		return session.SetAdditionalCost{Value: m.Value}, nil
	case "calculate":
		return session.Calculate{}, nil
	case "back":
		return session.Back{}, nil
	case "reset":
		return session.Reset{}, nil
	case "set_locale":
		return session.SetLocale{Locale: m.Value}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, m.Kind)
}

func toParticipants(msgs []ParticipantMessage) []models.Participant {
	participants := make([]models.Participant, len(msgs))
	for i, m := range msgs {
		orders := make([]models.OrderLine, len(m.Orders))
		for j, o := range m.Orders {
			orders[j] = models.OrderLine{Item: o.Item, Price: o.Price}
		}
		participants[i] = models.Participant{Name: m.Name, Orders: orders}
	}
	return participants
}

func toView(s *session.Session) SessionView {
	return SessionView{
		ID:           s.ID,
		Step:         s.Step.String(),
		Count:        s.Count,
		Participants: s.Participants,
		Settings:     s.Settings,
		Results:      s.Results,
		GrandTotal:   calculator.GrandTotal(s.Results),
		Locale:       string(s.Locale),
	}
}
