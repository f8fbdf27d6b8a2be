// Package repository implements MySQL persistence for accounts, saved
// courts, reservations, profiles and comments.  Sentinel errors let higher
// layers such as handlers distinguish failure scenarios without inspecting
// driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with an existing row, such
// as posting a comment whose id is already taken.  Handlers translate it into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering an email that is already used.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
