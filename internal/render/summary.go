// Package render is the summary renderer: it turns settlement results into a
// localized view model and exports that view as a PNG image.
package render

import (
	"strings"
	"time"

	"github.com/mmynk/splitbill/internal/calculator"
	"github.com/mmynk/splitbill/internal/i18n"
	"github.com/mmynk/splitbill/internal/models"
)

// Summary is the localized, display-ready form of one calculation. The HTML
// page and the PNG export both render from it.
type Summary struct {
	Locale i18n.Locale

	Title          string
	GrandTotalLine string
	ChargesLine    string
	GeneratedOn    string

	OrdersLabel     string
	SubtotalLabel   string
	TaxLabel        string
	AdditionalLabel string
	TotalLabel      string

	People []PersonSummary

	GrandTotal float64
	Date       time.Time
}

// PersonSummary is one participant's block of the summary.
type PersonSummary struct {
	Name            string
	Lines           []LineSummary
	Subtotal        string
	Tax             string
	AdditionalShare string
	Total           string
}

// LineSummary is one valid order line.
type LineSummary struct {
	Item  string
	Price string
}

// Build creates the summary view of results. Names fall back to ordinals and
// only valid order lines are listed.
func Build(results []models.Result, settings models.Settings, l *i18n.Localizer, now time.Time) Summary {
	grandTotal := calculator.GrandTotal(results)
	taxPercent := l.Percent(settings.TaxPercent)

	s := Summary{
		Locale:          l.Locale(),
		Title:           l.T("summary.title"),
		GrandTotalLine:  l.T("summary.grand_total", l.Money(grandTotal)),
		ChargesLine:     l.T("summary.charges", taxPercent, l.Money(settings.AdditionalCost)),
		GeneratedOn:     l.T("summary.generated", l.LongDate(now)),
		OrdersLabel:     l.T("summary.orders"),
		SubtotalLabel:   l.T("summary.subtotal"),
		TaxLabel:        l.T("summary.tax", taxPercent),
		AdditionalLabel: l.T("summary.additional"),
		TotalLabel:      l.T("summary.total"),
		People:          make([]PersonSummary, 0, len(results)),
		GrandTotal:      grandTotal,
		Date:            now,
	}

	for i, r := range results {
		person := PersonSummary{
			Name:            l.DisplayName(r.Name, i),
			Subtotal:        l.Money(r.Subtotal),
			Tax:             l.Money(r.Tax),
			AdditionalShare: l.Money(r.AdditionalShare),
			Total:           l.Money(r.FinalTotal),
		}
		for _, o := range r.Orders {
			if !o.Valid() {
				continue
			}
			person.Lines = append(person.Lines, LineSummary{Item: o.Item, Price: l.Money(o.Price)})
		}
		s.People = append(s.People, person)
	}

	return s
}

// Digest is a plain-text rendition of the totals, small enough to fit in a QR
// code.
func (s Summary) Digest() string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteByte('\n')
	b.WriteString(s.Date.UTC().Format(time.DateOnly))
	b.WriteByte('\n')
	for _, p := range s.People {
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Total)
		b.WriteByte('\n')
	}
	b.WriteString(s.GrandTotalLine)
	return b.String()
}
