package model

import (
	"fmt"
	"time"
)

// Weekday is the three-letter day code used by schedule entries.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// Weekdays lists the day codes in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ValidWeekday reports whether d is a known day code.
func ValidWeekday(d Weekday) bool {
	for _, v := range Weekdays {
		if v == d {
			return true
		}
	}
	return false
}

// WeekdayOf returns the day code for t.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// TimeOfDay is a wall-clock time in "HH:MM:SS" form. Zero-padded string
// comparison orders values correctly, which keeps the type trivial to store
// in a TIME column and compare in SQL and Go alike.
type TimeOfDay string

// ParseTimeOfDay validates and normalizes a "HH:MM" or "HH:MM:SS" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay(t.Format("15:04:05")), nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q", s)
}

// TimeOfDayOf extracts the wall-clock time from t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Format("15:04:05"))
}

// ScheduledContent associates a content feed with a device group for a
// weekday. Default entries cover the whole day; timed entries cover
// [StartTime, EndTime).
type ScheduledContent struct {
	ID            int        `db:"id"              json:"id"`
	Day           Weekday    `db:"day"             json:"day"`
	Default       bool       `db:"is_default"      json:"default"`
	StartTime     *TimeOfDay `db:"start_time"      json:"start_time,omitempty"`
	EndTime       *TimeOfDay `db:"end_time"        json:"end_time,omitempty"`
	BringToFront  bool       `db:"bring_to_front"  json:"bring_to_front"`
	ContentID     *int       `db:"content_id"      json:"content_id,omitempty"`
	DeviceGroupID int        `db:"device_group_id" json:"device_group_id"`
}

// Contains reports whether the timed entry's window covers t.
func (s ScheduledContent) Contains(t TimeOfDay) bool {
	if s.StartTime == nil || s.EndTime == nil {
		return false
	}
	return *s.StartTime <= t && t < *s.EndTime
}

// Validate checks the entry's time range rules. Overlap against sibling
// entries is checked separately, at write time, against the full current set.
func (s ScheduledContent) Validate() error {
	if s.Default {
		if s.StartTime != nil || s.EndTime != nil {
			return fmt.Errorf("default schedules cannot have a start and/or end time")
		}
		return nil
	}
	if s.StartTime == nil {
		return fmt.Errorf("start_time: start time cannot be empty")
	}
	if s.EndTime == nil {
		return fmt.Errorf("end_time: end time cannot be empty")
	}
	if *s.EndTime <= *s.StartTime {
		return fmt.Errorf("ending time must be after starting time")
	}
	return nil
}

// Overlaps reports whether the half-open ranges [s1,e1) and [s2,e2) clash.
// Two ranges clash when one starts inside the other, ends inside the other,
// or fully contains the other.
func Overlaps(s1, e1, s2, e2 TimeOfDay) bool {
	if s2 >= s1 && s2 < e1 {
		return true
	}
	if e2 > s1 && e2 <= e1 {
		return true
	}
	return s2 <= s1 && e2 >= e1
}

// OverlapsWith reports whether two timed entries on the same group and day
// clash. An entry never clashes with itself, so editing an existing entry is
// always allowed to keep (or shrink) its own window.
func (s ScheduledContent) OverlapsWith(other ScheduledContent) bool {
	if s.ID != 0 && s.ID == other.ID {
		return false
	}
	if s.Day != other.Day || s.DeviceGroupID != other.DeviceGroupID {
		return false
	}
	if s.Default || other.Default {
		return false
	}
	if other.StartTime == nil || other.EndTime == nil {
		return false
	}
	return Overlaps(*other.StartTime, *other.EndTime, *s.StartTime, *s.EndTime)
}

// SpecialContent overrides a group's content for one calendar date. At most
// one override may exist per (group, date).
type SpecialContent struct {
	ID            int       `db:"id"              json:"id"`
	Date          time.Time `db:"date"            json:"date"`
	ContentID     *int      `db:"content_id"      json:"content_id,omitempty"`
	DeviceGroupID int       `db:"device_group_id" json:"device_group_id"`
}
