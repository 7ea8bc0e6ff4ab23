// Package editor implements the participant editor: pure update functions that
// take a participant and an edit and return a new participant.
//
// None of the functions mutate their argument. The returned participant never
// shares an order-list backing array with the input, so a participant held by
// a session snapshot is unaffected by later edits.
package editor

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/mmynk/splitbill/internal/models"
)

// Field names an editable column of an order line.
type Field string

const (
	FieldItem  Field = "item"
	FieldPrice Field = "price"
)

// Op names an editor operation.
type Op string

const (
	OpSetName    Op = "set_name"
	OpAddLine    Op = "add_line"
	OpUpdateLine Op = "update_line"
	OpRemoveLine Op = "remove_line"
)

var (
	ErrLineIndex    = errors.New("order line index out of range")
	ErrUnknownField = errors.New("unknown order line field")
	ErrUnknownOp    = errors.New("unknown editor operation")
)

// Text longer than these limits is cut to the limit, counted in runes.
const (
	MaxNameLength = 100
	MaxItemLength = 200
)

// MaxOrderLines is the most order lines one participant can hold.
const MaxOrderLines = 100

// Edit describes one change to a participant.
type Edit struct {
	Op    Op
	Name  string // OpSetName
	Line  int    // OpUpdateLine, OpRemoveLine
	Field Field  // OpUpdateLine
	Value string // OpUpdateLine, raw form text
}

// Apply performs e on p and returns the new participant.
func Apply(p models.Participant, e Edit) (models.Participant, error) {
	switch e.Op {
	case OpSetName:
		return SetName(p, e.Name), nil
	case OpAddLine:
		return AddOrderLine(p), nil
	case OpUpdateLine:
		return UpdateOrderLine(p, e.Line, e.Field, e.Value)
	case OpRemoveLine:
		return RemoveOrderLine(p, e.Line), nil
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
}

// SetName replaces the display name. Any text is accepted, including "".
func SetName(p models.Participant, name string) models.Participant {
	next := p.Clone()
	next.Name = truncate(name, MaxNameLength)
	return next
}

// AddOrderLine appends one empty line. At MaxOrderLines it is a no-op.
func AddOrderLine(p models.Participant) models.Participant {
	next := p.Clone()
	if len(next.Orders) >= MaxOrderLines {
		return next
	}
	next.Orders = append(next.Orders, models.OrderLine{})
	return next
}

// UpdateOrderLine replaces the item label or the price of the line at index.
// Price text goes through ParseAmount, so bad input becomes 0.
func UpdateOrderLine(p models.Participant, index int, field Field, value string) (models.Participant, error) {
	if index < 0 || index >= len(p.Orders) {
		return p, fmt.Errorf("%w: %d", ErrLineIndex, index)
	}

	next := p.Clone()
	switch field {
	case FieldItem:
		next.Orders[index].Item = truncate(value, MaxItemLength)
	case FieldPrice:
		next.Orders[index].Price = ParseAmount(value)
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return next, nil
}

// RemoveOrderLine removes the line at index. Removing a participant's only
// line, or an index that does not exist, is a no-op.
func RemoveOrderLine(p models.Participant, index int) models.Participant {
	next := p.Clone()
	if len(next.Orders) <= 1 || index < 0 || index >= len(next.Orders) {
		return next
	}
	next.Orders = append(next.Orders[:index], next.Orders[index+1:]...)
	return next
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// RunningSubtotal sums every line price, valid or not. It is the live figure
// shown under a participant card while editing; settlement uses only valid
// lines.
func RunningSubtotal(p models.Participant) float64 {
	total := 0.0
	for _, o := range p.Orders {
		total += o.Price
	}
	return total
}
