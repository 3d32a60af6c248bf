// Package schedule derives the day calendar view: a fixed grid of
// half-hour slots between the salon's opening and closing hours, with
// appointments mapped onto their slots.
package schedule

import (
	"fmt"
	"time"

	"github.com/linapure/salon-api/internal/domain"
)

// Slot is one half-hour bucket of a day's working window. It is derived
// on every request and never persisted.
type Slot struct {
	Label        string               `json:"label"` // zero-padded HH:MM
	Appointments []domain.Appointment `json:"appointments"`
	Past         bool                 `json:"past"`
}

// Builder turns a date and an appointment list into an ordered slot
// sequence. Appointments are matched to slots by string equality of
// their formatted local start time against the slot label; bookings are
// assumed to be aligned to the 30-minute grid, and anything off-grid
// lands in no slot.
type Builder struct {
	OpenHour  int
	CloseHour int
	Location  *time.Location
}

func NewBuilder(openHour, closeHour int, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{OpenHour: openHour, CloseHour: closeHour, Location: loc}
}

// Labels returns the slot labels of the working window: two per hour in
// [OpenHour, CloseHour), ascending.
func (b *Builder) Labels() []string {
	labels := make([]string, 0, 2*(b.CloseHour-b.OpenHour))
	for hour := b.OpenHour; hour < b.CloseHour; hour++ {
		for _, minute := range []int{0, 30} {
			labels = append(labels, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return labels
}

// Build produces the slot view of a date. now supplies the wall clock
// for the past flag; the computation is pure and safe to repeat for a
// fixed input snapshot.
func (b *Builder) Build(date time.Time, appts []domain.Appointment, now time.Time) []Slot {
	date = date.In(b.Location)
	now = now.In(b.Location)

	byLabel := make(map[string][]domain.Appointment, len(appts))
	for _, apt := range appts {
		label := apt.StartAt.In(b.Location).Format("15:04")
		byLabel[label] = append(byLabel[label], apt)
	}

	sameDay := date.Year() == now.Year() && date.YearDay() == now.YearDay()

	slots := make([]Slot, 0, 2*(b.CloseHour-b.OpenHour))
	for hour := b.OpenHour; hour < b.CloseHour; hour++ {
		for _, minute := range []int{0, 30} {
			label := fmt.Sprintf("%02d:%02d", hour, minute)
			past := sameDay && (hour < now.Hour() || (hour == now.Hour() && minute < now.Minute()))

			appointments := byLabel[label]
			if appointments == nil {
				appointments = []domain.Appointment{}
			}
			slots = append(slots, Slot{
				Label:        label,
				Appointments: appointments,
				Past:         past,
			})
		}
	}
	return slots
}
