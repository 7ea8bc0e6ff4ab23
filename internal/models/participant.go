package models

// OrderLine represents a single itemized purchase.
type OrderLine struct {
	// Item is the label of the purchase (e.g., "Nasi Goreng").
	Item string `json:"item"`

	// Price is the non-negative price of the purchase.
	Price float64 `json:"price"`
}

// Valid reports whether the line counts towards totals: it needs a label and a
// positive price.
func (o OrderLine) Valid() bool {
	return o.Item != "" && o.Price > 0
}

// Participant represents one person splitting the bill.
type Participant struct {
	// Name is the optional display name. An empty name is rendered with an
	// ordinal fallback ("Person 2").
	Name string `json:"name"`

	// Orders always holds at least one line slot once the participant has been
	// created by the session.
	Orders []OrderLine `json:"orders"`
}

// NewParticipant returns a participant with an empty name and exactly one empty
// order line.
func NewParticipant() Participant {
	return Participant{Orders: []OrderLine{{}}}
}

// Clone returns a copy of p whose order list does not share a backing array
// with p.
func (p Participant) Clone() Participant {
	orders := make([]OrderLine, len(p.Orders))
	copy(orders, p.Orders)
	return Participant{Name: p.Name, Orders: orders}
}

// ValidOrders returns the valid lines of p in their original order.
func (p Participant) ValidOrders() []OrderLine {
	var valid []OrderLine
	for _, o := range p.Orders {
		if o.Valid() {
			valid = append(valid, o)
		}
	}
	return valid
}

// HasValidOrder reports whether at least one of p's lines is valid.
func (p Participant) HasValidOrder() bool {
	for _, o := range p.Orders {
		if o.Valid() {
			return true
		}
	}
	return false
}
