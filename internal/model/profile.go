package model

// Profile holds the personal data a user enters at registration and edits
// from the settings screen.
type Profile struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Cedula   string `json:"cedula"`
	Email    string `json:"email"`
	PfpSrc   string `json:"pfpSrc,omitempty"`
}

// FullName is the display name derived from the profile.
func (p Profile) FullName() string {
	switch {
	case p.LastName == "":
		return p.Name
	case p.Name == "":
		return p.LastName
	}
	return p.Name + " " + p.LastName
}
