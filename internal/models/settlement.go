package models

const (
	// DefaultTaxPercent is the restaurant tax applied to a fresh session.
	DefaultTaxPercent = 10.0

	// DefaultAdditionalCost is the flat extra charge of a fresh session.
	DefaultAdditionalCost = 0.0
)

// Settings holds the charges shared by every participant.
type Settings struct {
	// TaxPercent is applied to each participant's subtotal (0-100).
	TaxPercent float64 `json:"tax_percent"`

	// AdditionalCost is split equally among all participants
	// (service charge, parking, etc.).
	AdditionalCost float64 `json:"additional_cost"`
}

// DefaultSettings returns the settings of a fresh session.
func DefaultSettings() Settings {
	return Settings{
		TaxPercent:     DefaultTaxPercent,
		AdditionalCost: DefaultAdditionalCost,
	}
}

// Result represents one participant's calculated share of the bill.
// Results are derived data: a new calculation replaces the whole list.
type Result struct {
	// Name is the participant's display name as entered (may be empty).
	Name string `json:"name"`

	// Orders are the participant's valid lines only.
	Orders []OrderLine `json:"orders"`

	// Subtotal is the sum of the valid line prices.
	Subtotal float64 `json:"subtotal"`

	// Tax is Subtotal × TaxPercent / 100.
	Tax float64 `json:"tax"`

	// AdditionalShare is AdditionalCost divided by the number of participants.
	// It is identical for every participant of one calculation.
	AdditionalShare float64 `json:"additional_share"`

	// FinalTotal is Subtotal + Tax + AdditionalShare.
	FinalTotal float64 `json:"final_total"`
}
