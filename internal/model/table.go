package model

// AnyPreference is the wildcard value accepted for location and segment
// filters.  A request using it matches every hall or segment.
const AnyPreference = "Any"

// Table describes one physical dining table.  Tables form a fixed
// inventory that is loaded once at startup and never mutated while the
// service runs.
//
// Fields:
//  ID       – numeric identifier; allocation tie-breaks on the lowest ID.
//  Name     – human readable label shown to staff (e.g. "T7").
//  Location – hall category the table belongs to (Main Hall, Family Hall,
//             Outdoor).
//  Segment  – area within the hall (Window, Center, Private).
//  Capacity – maximum number of guests the table seats; always >= 1.
type Table struct {
	ID       uint64 `json:"table_id"`   // dining_tables.id
	Name     string `json:"table_name"` // dining_tables.name
	Location string `json:"location"`   // dining_tables.location
	Segment  string `json:"segment"`    // dining_tables.segment
	Capacity int    `json:"capacity"`   // dining_tables.capacity
}

// DefaultTables is the reference inventory of twelve tables seeded into
// the database on first start.  The pool size is a deployment constant,
// not something the engine computes.
var DefaultTables = []Table{
	{ID: 1, Name: "T1", Location: "Main Hall", Segment: "Window", Capacity: 2},
	{ID: 2, Name: "T2", Location: "Main Hall", Segment: "Window", Capacity: 2},
	{ID: 3, Name: "T3", Location: "Main Hall", Segment: "Center", Capacity: 4},
	{ID: 4, Name: "T4", Location: "Main Hall", Segment: "Center", Capacity: 4},
	{ID: 5, Name: "T5", Location: "Main Hall", Segment: "Private", Capacity: 6},
	{ID: 6, Name: "T6", Location: "Family Hall", Segment: "Window", Capacity: 4},
	{ID: 7, Name: "T7", Location: "Family Hall", Segment: "Center", Capacity: 6},
	{ID: 8, Name: "T8", Location: "Family Hall", Segment: "Private", Capacity: 8},
	{ID: 9, Name: "T9", Location: "Outdoor", Segment: "Window", Capacity: 2},
	{ID: 10, Name: "T10", Location: "Outdoor", Segment: "Center", Capacity: 4},
	{ID: 11, Name: "T11", Location: "Outdoor", Segment: "Center", Capacity: 6},
	{ID: 12, Name: "T12", Location: "Outdoor", Segment: "Private", Capacity: 10},
}

// Matches reports whether the table satisfies a guest count and the
// optional location/segment preferences.  AnyPreference (or an empty
// string) matches everything.
func (t Table) Matches(guests int, location, segment string) bool {
	if t.Capacity < guests {
		return false
	}
	if location != "" && location != AnyPreference && t.Location != location {
		return false
	}
	if segment != "" && segment != AnyPreference && t.Segment != segment {
		return false
	}
	return true
}
