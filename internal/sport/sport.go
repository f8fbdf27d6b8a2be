// Package sport translates user-typed sport names into OpenStreetMap sport
// tag values.
package sport

import (
	"strings"

	"golang.org/x/text/cases"
)

// Entry maps an OSM sport key to its Spanish display name.
type Entry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Table is an ordered translation table.  Order matters: the first entry
// whose name matches wins.
type Table []Entry

// Default is the table offered to clients.
var Default = Table{
	{Key: "soccer", Name: "Fútbol"},
	{Key: "basketball", Name: "Baloncesto"},
	{Key: "volleyball", Name: "Voleibol"},
	{Key: "tennis", Name: "Tenis"},
	{Key: "padel", Name: "Pádel"},
}

// Resolve returns the key whose display name equals query ignoring case, or
// "" when nothing matches.  Accents are significant and substrings do not
// match.
func (t Table) Resolve(query string) string {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return ""
	}
	for _, e := range t {
		if fold.String(e.Name) == q {
			return e.Key
		}
	}
	return ""
}

// Name returns the display name for key, or "" when key is unknown.
func (t Table) Name(key string) string {
	for _, e := range t {
		if e.Key == key {
			return e.Name
		}
	}
	return ""
}
