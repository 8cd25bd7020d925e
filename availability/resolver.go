// Package availability turns a professional's weekly settings and existing
// bookings into concrete bookable slots. It performs no I/O and never reads
// the clock; callers pass the reference instant in.
package availability

import (
	"strings"
	"time"

	"github.com/meinhoongagan/carebook/models"
)

// SlotMinutes is the fixed granularity of every generated slot.
const SlotMinutes = 30

const dateLayout = "2006-01-02"

// Booked is an existing appointment occupying the professional's time.
type Booked struct {
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}

// End is the exclusive end of the booked interval.
func (b Booked) End() time.Time {
	return b.Start.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

type Slot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

type Day struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	IsAvailable bool   `json:"is_available"`
	Slots       []Slot `json:"slots"`
}

// Resolve returns one Day per calendar day in [rangeStart, rangeEnd), in
// rangeStart's location. A slot survives only if it starts strictly after now
// and does not overlap any booked interval.
func Resolve(weekly models.WeeklyAvailability, booked []Booked, rangeStart, rangeEnd, now time.Time) []Day {
	days := []Day{}
	step := SlotMinutes * time.Minute

	for d := midnight(rangeStart); d.Before(rangeEnd); d = d.AddDate(0, 0, 1) {
		weekday := strings.ToLower(d.Weekday().String())
		day := Day{
			Date:    d.Format(dateLayout),
			Weekday: weekday,
			Slots:   []Slot{},
		}

		avail, ok := weekly[weekday]
		if !ok || !avail.Available {
			days = append(days, day)
			continue
		}

		for _, iv := range avail.Intervals {
			start, err := models.ParseClock(iv.Start)
			if err != nil {
				continue
			}
			end, err := models.ParseClock(iv.End)
			if err != nil || end <= start {
				continue
			}

			from := clockOn(d, start)
			until := clockOn(d, end)
			for t := from; !t.Add(step).After(until); t = t.Add(step) {
				if !t.After(now) {
					continue
				}
				slotEnd := t.Add(step)
				if overlapsAny(t, slotEnd, booked) {
					continue
				}
				day.Slots = append(day.Slots, Slot{Start: t, End: slotEnd, DurationMinutes: SlotMinutes})
			}
		}

		day.IsAvailable = len(day.Slots) > 0
		days = append(days, day)
	}

	return days
}

func overlapsAny(start, end time.Time, booked []Booked) bool {
	for _, b := range booked {
		if start.Before(b.End()) && end.After(b.Start) {
			return true
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clockOn(day time.Time, minutes int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, day.Location())
}
