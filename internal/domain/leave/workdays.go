package leave

import "time"

const dayKeyFormat = "2006-01-02"

// HolidayCalendar is a set of non-working dates. Working-day math excludes
// weekends and these dates everywhere; no call site applies a different rule.
type HolidayCalendar map[string]struct{}

func NewHolidayCalendar(dates []time.Time) HolidayCalendar {
	cal := make(HolidayCalendar, len(dates))
	for _, d := range dates {
		cal[d.Format(dayKeyFormat)] = struct{}{}
	}
	return cal
}

func (c HolidayCalendar) IsHoliday(day time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c[day.Format(dayKeyFormat)]
	return ok
}

// CountWorkingDays returns the number of working days in [start, end]
// inclusive, skipping Saturdays, Sundays and calendar holidays.
func CountWorkingDays(start, end time.Time, cal HolidayCalendar) float64 {
	if end.Before(start) {
		return 0
	}
	var days float64
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		if cal.IsHoliday(day) {
			continue
		}
		days++
	}
	return days
}

// MonthsOfService returns full calendar months between joining and today.
func MonthsOfService(joining, today time.Time) int {
	if today.Before(joining) {
		return 0
	}
	months := (today.Year()-joining.Year())*12 + int(today.Month()) - int(joining.Month())
	if today.Day() < joining.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
