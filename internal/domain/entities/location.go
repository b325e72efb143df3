package entities

import "time"

// City is one entry from the scheduler's site-wide metadata.
type City struct {
	Name string
}

// Location is a scheduler office returned by the nearest-locations search.
// The identity of a location is its ID. NextAvailable and DistanceMiles are
// derived per aggregation pass; every pass builds fresh copies, so a Location
// is never mutated concurrently.
type Location struct {
	ID        int
	Name      string
	Address   string
	CityName  string
	ZipCode   string
	Latitude  float64
	Longitude float64

	NextAvailable time.Time
	// DistanceMiles is nil when the origin zip was absent or did not resolve.
	// A nil distance is distinct from a zero distance.
	DistanceMiles *float64
}

// SlotDetail is the earliest open slot at a location for a service type.
// It is scoped to the aggregation pass that produced it and is never cached
// across polls.
type SlotDetail struct {
	LocationID      int
	SlotID          int
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
}

// LocationSlot pairs a ranked location with its next open slot.
type LocationSlot struct {
	Location Location
	Slot     SlotDetail
}
