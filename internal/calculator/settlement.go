package calculator

import (
	"github.com/mmynk/splitbill/internal/models"
)

// Compute calculates every participant's settlement in one pass.
//
// Algorithm, per participant:
//   - subtotal = sum of valid line prices (label set, price > 0), in line order
//   - tax = subtotal × (taxPercent / 100)
//   - additionalShare = additionalCost / len(participants), the same for everyone
//   - finalTotal = subtotal + tax + additionalShare
//
// Compute is pure: identical inputs always yield identical results. With no
// participants it returns an empty slice; callers are expected to have at
// least one participant.
func Compute(participants []models.Participant, taxPercent, additionalCost float64) []models.Result {
	results := make([]models.Result, 0, len(participants))
	if len(participants) == 0 {
		return results
	}

	additionalShare := additionalCost / float64(len(participants))
	for _, p := range participants {
		validOrders := p.ValidOrders()

		subtotal := 0.0
		for _, o := range validOrders {
			subtotal += o.Price
		}
		tax := subtotal * (taxPercent / 100)

		results = append(results, models.Result{
			Name:            p.Name,
			Orders:          validOrders,
			Subtotal:        subtotal,
			Tax:             tax,
			AdditionalShare: additionalShare,
			FinalTotal:      subtotal + tax + additionalShare,
		})
	}

	return results
}

// FirstWithoutValidOrder returns the index of the first participant that has
// no valid order line. ok is false when every participant has one.
func FirstWithoutValidOrder(participants []models.Participant) (index int, ok bool) {
	for i, p := range participants {
		if !p.HasValidOrder() {
			return i, true
		}
	}
	return -1, false
}

// GrandTotal sums the final totals of all results.
func GrandTotal(results []models.Result) float64 {
	total := 0.0
	for _, r := range results {
		total += r.FinalTotal
	}
	return total
}
