package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// Weekday is the closed set of days an offering can meet on.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

// Weekdays lists the teaching days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// ParseWeekday parses a weekday token case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	switch Weekday(strings.ToLower(strings.TrimSpace(s))) {
	case Monday:
		return Monday, nil
	case Tuesday:
		return Tuesday, nil
	case Wednesday:
		return Wednesday, nil
	case Thursday:
		return Thursday, nil
	case Friday:
		return Friday, nil
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidWeekday, s)
}

func (d Weekday) String() string {
	return string(d)
}

// Label returns the capitalized display form, e.g. "Monday".
func (d Weekday) Label() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// ClockTime is a time of day in whole minutes since midnight.
type ClockTime int

// MinutesPerDay bounds ClockTime values.
const MinutesPerDay = 24 * 60

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid time of day %02d:%02d", hour, minute))
	}
	return ClockTime(hour*60 + minute), nil
}

// ParseClockTime parses "HH:MM" (24-hour clock).
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid time of day %q, expected HH:MM", s))
	}
	hour, errH := strconv.Atoi(hh)
	minute, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil || len(mm) != 2 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid time of day %q, expected HH:MM", s))
	}
	return NewClockTime(hour, minute)
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MeetingEntry is one weekly meeting slot of an offering.
type MeetingEntry struct {
	ID         int64     `json:"id" db:"id"`
	OfferingID uuid.UUID `json:"offeringId" db:"offering_id"`
	Weekday    Weekday   `json:"weekday" db:"day_of_week"`
	StartTime  ClockTime `json:"startTime" db:"start_time"`
	EndTime    ClockTime `json:"endTime" db:"end_time"`
}

// NewMeetingEntry validates the slot; the ID is assigned by the store.
func NewMeetingEntry(offeringID uuid.UUID, day Weekday, start, end ClockTime) (*MeetingEntry, error) {
	if _, err := ParseWeekday(string(day)); err != nil {
		return nil, err
	}
	if start < 0 || end > MinutesPerDay || start >= end {
		return nil, fmt.Errorf("%w: %s-%s", apperrors.ErrInvalidTimeRange, start, end)
	}
	return &MeetingEntry{
		OfferingID: offeringID,
		Weekday:    day,
		StartTime:  start,
		EndTime:    end,
	}, nil
}
