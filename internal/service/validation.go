package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/utils"
)

// ErrValidation marks input rejected by the service layer.  Handlers map it
// to HTTP 400 and show the wrapped message to the client.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cedulaRe = regexp.MustCompile(`^\d{3}-\d{7}-\d{1}$`)
)

const minNameLen = 2

// Registration is the data a user submits to create a local account.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Cedula   string `json:"cedula"`
}

// ValidateRegistration applies the sign-up rules: email shape, password
// strength, name lengths and cedula format.
func ValidateRegistration(r Registration) error {
	if !emailRe.MatchString(strings.TrimSpace(r.Email)) {
		return invalid("email is not valid")
	}
	if !utils.PasswordStrong(r.Password) {
		return invalid("password must have at least %d characters, one upper-case letter and one digit", utils.MinPasswordLen)
	}
	return validatePerson(r.Name, r.LastName, r.Cedula)
}

func validatePerson(name, lastName, cedula string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minNameLen {
		return invalid("name must have at least %d characters", minNameLen)
	}
	if utf8.RuneCountInString(strings.TrimSpace(lastName)) < minNameLen {
		return invalid("lastName must have at least %d characters", minNameLen)
	}
	if !cedulaRe.MatchString(strings.TrimSpace(cedula)) {
		return invalid("cedula must look like 000-0000000-0")
	}
	return nil
}

// ValidateProfile checks an edited profile with the registration rules.
func ValidateProfile(p model.Profile) error {
	if !emailRe.MatchString(strings.TrimSpace(p.Email)) {
		return invalid("email is not valid")
	}
	return validatePerson(p.Name, p.LastName, p.Cedula)
}

// ValidatePlace checks a court submitted for saving.
func ValidatePlace(p model.Place) error {
	if p.ID == 0 {
		return invalid("court id is required")
	}
	if p.Location.Lat < -90 || p.Location.Lat > 90 || p.Location.Lng < -180 || p.Location.Lng > 180 {
		return invalid("court %d has invalid coordinates", p.ID)
	}
	if p.DistanceMeters < 0 {
		return invalid("court %d has a negative distance", p.ID)
	}
	return nil
}

// Bookable slots: every 30 minutes from 08:00 to 20:30.
const (
	firstSlotMinute = 8 * 60
	lastSlotMinute  = 20*60 + 30
	slotStep        = 30
)

// Slots returns the bookable start times of a day as "HH:MM".
func Slots() []string {
	out := make([]string, 0, (lastSlotMinute-firstSlotMinute)/slotStep+1)
	for m := firstSlotMinute; m <= lastSlotMinute; m += slotStep {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

func onSlot(t time.Time) bool {
	if t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return m >= firstSlotMinute && m <= lastSlotMinute && (m-firstSlotMinute)%slotStep == 0
}

// ValidateNewReservation checks a reservation about to be created.  Slot
// times are interpreted in loc, the court's local time zone.
func ValidateNewReservation(r model.Reservation, now time.Time, loc *time.Location) error {
	if r.Datetime.IsZero() {
		return invalid("datetime is required")
	}
	if r.Datetime.Before(now) {
		return invalid("datetime %s is in the past", r.Datetime.Format(time.RFC3339))
	}
	if loc == nil {
		loc = time.UTC
	}
	if !onSlot(r.Datetime.In(loc)) {
		return invalid("datetime %s is not a bookable slot", r.Datetime.In(loc).Format("15:04"))
	}
	if strings.TrimSpace(r.Location) == "" {
		return invalid("location is required")
	}
	return nil
}

// Star rating bounds.
const (
	MinStars = 1
	MaxStars = 5
)

// ValidateComment checks rating and text.  Top-level comments must carry the
// court they review.
func ValidateComment(c model.Comment, reply bool) error {
	if c.Stars < MinStars || c.Stars > MaxStars {
		return invalid("stars must be between %d and %d", MinStars, MaxStars)
	}
	if strings.TrimSpace(c.Text) == "" {
		return invalid("text is required")
	}
	if reply {
		if strings.TrimSpace(c.ParentID) == "" {
			return invalid("parentId is required")
		}
		return nil
	}
	if c.Cancha == nil {
		return invalid("cancha is required")
	}
	return nil
}
