// Package models defines the core domain models for Split Bill.
//
// # Models
//
//   - OrderLine: one itemized purchase (label + price) attributable to a participant
//   - Participant: one person among whom the bill is split
//   - Settings: the shared tax percentage and flat additional charge
//   - Result: the computed settlement for one participant
//
// Participants are identified by display name and position only; there are no
// user accounts.
//
// # Value semantics
//
// Participants are passed and returned by value. Code that changes a
// participant's order list must work on a copy (see Participant.Clone) so that
// a participant held elsewhere never observes the change.
package models
