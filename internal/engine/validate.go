package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/dineflow/table-reservation/internal/model"
)

const dateLayout = "2006-01-02"

// validateDate checks the YYYY-MM-DD format and rejects dates already in
// the past relative to the engine clock's day.
func validateDate(date string, now time.Time) error {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidRequest)
	}
	today, _ := time.Parse(dateLayout, now.UTC().Format(dateLayout))
	if d.Before(today) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidRequest)
	}
	return nil
}

func validateGuests(guests int) error {
	if guests < 1 {
		return fmt.Errorf("%w: guest count must be at least 1", ErrInvalidRequest)
	}
	return nil
}

func validateTimeSlot(slot string) error {
	if !model.ValidTimeSlot(slot) {
		return fmt.Errorf("%w: unknown time slot %q", ErrInvalidRequest, slot)
	}
	return nil
}

func validateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	return nil
}

func validateNotificationMethod(method string) error {
	switch method {
	case "sms", "email":
		return nil
	}
	return fmt.Errorf("%w: notification method must be sms or email", ErrInvalidRequest)
}
