package model

import "strconv"

// LatLng is the JSON shape of a coordinate pair in API payloads.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a playing court found by the nearby search.  It is built by the
// enrichment loop and never modified afterwards; saved courts persist the
// same shape under the derived CourtID.
//
// Fields:
//  ID               – OpenStreetMap element id.
//  DisplayName      – tag name, geocoded name or "Cancha de <sport>" / "Cancha".
//  Location         – coordinates of the element (or its center).
//  FormattedAddress – geocoded address or "Sin dirección".
//  Sport            – OSM sport tag, possibly empty.
//  DistanceMeters   – distance from the searching user.
type Place struct {
	ID               int64   `json:"id"`
	DisplayName      string  `json:"displayName"`
	Location         LatLng  `json:"location"`
	FormattedAddress string  `json:"formattedAddress"`
	Sport            string  `json:"sport"`
	DistanceMeters   float64 `json:"distanceMeters"`
}

// CourtID returns the key a saved court is stored under.
func (p Place) CourtID() string {
	return CourtID(p.ID)
}

// CourtID formats an OSM id as a saved-court key ("cancha-<id>").
func CourtID(osmID int64) string {
	return "cancha-" + strconv.FormatInt(osmID, 10)
}
