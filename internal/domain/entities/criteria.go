package entities

import "time"

// SearchCriteria narrows an aggregation pass. It is immutable and supplied
// per invocation.
type SearchCriteria struct {
	// Cities to search; empty means every city the scheduler knows about.
	Cities []string

	// OriginZip is the distance reference point. Empty or unresolvable zips
	// leave distances undefined and disable the distance filter.
	OriginZip string

	// MaxDistanceMiles limits results by distance from OriginZip. Zero or
	// negative disables the filter.
	MaxDistanceMiles float64

	// MinDate and MaxDate bound the acceptable next-available date. A zero
	// value leaves that side of the window open.
	MinDate time.Time
	MaxDate time.Time

	ServiceTypeID int

	// StrictCities aborts the whole pass on the first per-city fetch failure
	// instead of skipping the failed city.
	StrictCities bool
}
