package session

import (
	"errors"

	"github.com/mmynk/splitbill/internal/i18n"
)

// Notice returns the user-facing notification for a rejected intent, in the
// localizer's language. ok is false for errors that are not user input
// problems.
func Notice(err error, l *i18n.Localizer) (text string, ok bool) {
	var missing *MissingOrdersError
	switch {
	case errors.Is(err, ErrCountOutOfRange):
		return l.T("error.count_range", MinParticipants, MaxParticipants), true
	case errors.As(err, &missing):
		return l.T("error.missing_orders", l.DisplayName(missing.Name, missing.Index)), true
	case errors.Is(err, ErrInvalidTransition):
		return l.T("error.invalid_step"), true
	}
	return "", false
}
