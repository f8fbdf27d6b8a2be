package model

import (
	"strconv"
	"time"
)

// Reservation records a user's booking of a saved court.  It is created when
// the user confirms a slot and is never edited afterwards; it can only be
// deleted.
//
// Fields:
//  Datetime  – start of the booked slot.
//  CourtType – sport of the court, "Cancha" when unknown.
//  Location  – formatted address of the court.
type Reservation struct {
	Datetime  time.Time `json:"datetime"`
	CourtType string    `json:"courtType"`
	Location  string    `json:"location"`
}

// ID returns the key a reservation is stored under ("reservation-<unix ms>").
func (r Reservation) ID() string {
	return "reservation-" + strconv.FormatInt(r.Datetime.UnixMilli(), 10)
}

// DefaultCourtType is used when the reserved court has no sport tag.
const DefaultCourtType = "Cancha"
