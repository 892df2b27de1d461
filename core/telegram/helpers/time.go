package helpers

import "time"

const dateLayout = "2006-01-02"

// FormatDate renders t as a calendar date in loc, or UTC when loc is nil.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

// FormatUptime renders d as days, hours and minutes.
func FormatUptime(d time.Duration) (days, hours, minutes int) {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	return total / (24 * 60), (total / 60) % 24, total % 60
}
