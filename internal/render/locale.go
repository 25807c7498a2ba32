package render

import (
	"fmt"
	"time"
)

var frWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var frMonthsShort = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

// dayHeader formats "lundi 1 sept.".
func dayHeader(t time.Time) string {
	return fmt.Sprintf("%s %d %s", frWeekdays[t.Weekday()], t.Day(), frMonthsShort[t.Month()-1])
}

// shortDate formats "1 sept. 2025".
func shortDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), frMonthsShort[t.Month()-1], t.Year())
}

// weekLabel formats "1 sept. 2025 – 7 sept. 2025".
func weekLabel(first, last time.Time) string {
	return shortDate(first) + " – " + shortDate(last)
}

// statusDate formats "mercredi 17.12.2025".
func statusDate(t time.Time) string {
	return frWeekdays[t.Weekday()] + " " + t.Format("02.01.2006")
}
