package entity

import "time"

// Códigos de las ubicaciones sembradas.
const (
	LocationStore    = "STORE"
	LocationFeedMill = "FEED_MILL"
	LocationPoultry  = "POULTRY"
	LocationBSF      = "BSF"
	LocationCatfish  = "CATFISH"
)

// Location pool de stock con nombre (almacén o módulo). Dato de referencia; el motor no lo modifica.
type Location struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}

// DefaultLocations ubicaciones que siembra cmd/seed y el store en memoria.
func DefaultLocations() []Location {
	return []Location{
		{ID: "loc-store", Code: LocationStore, Name: "Store"},
		{ID: "loc-feed-mill", Code: LocationFeedMill, Name: "Feed Mill"},
		{ID: "loc-poultry", Code: LocationPoultry, Name: "Poultry"},
		{ID: "loc-bsf", Code: LocationBSF, Name: "BSF"},
		{ID: "loc-catfish", Code: LocationCatfish, Name: "Catfish"},
	}
}
