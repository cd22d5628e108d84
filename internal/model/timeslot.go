package model

// SlotDurationMinutes is the length of one reservation slot.  The walk-in
// wait estimate assumes one table turns over roughly every slot duration,
// a deliberate policy choice rather than a predictive model.
const SlotDurationMinutes = 60

// TimeSlots is the fixed, enumerated set of bookable windows.  Lunch
// service runs 12:00-15:00 and dinner 18:00-22:00, in hourly slots.
var TimeSlots = []string{
	"12:00-13:00",
	"13:00-14:00",
	"14:00-15:00",
	"18:00-19:00",
	"19:00-20:00",
	"20:00-21:00",
	"21:00-22:00",
}

// ValidTimeSlot reports whether s is one of the enumerated slots.
func ValidTimeSlot(s string) bool {
	for _, slot := range TimeSlots {
		if slot == s {
			return true
		}
	}
	return false
}
