package feed

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/fourfp/calpatch/internal/vobject"
)

// FractionColors are the display colors per waste fraction.
var FractionColors = map[string]string{
	"Restmüll":    "dimgrey",
	"Papier":      "floralwhite",
	"Gelber Sack": "gold",
	"Biomüll":     "saddlebrown",
}

// DefaultFractionColor applies to fractions without an entry above.
const DefaultFractionColor = "black"

// DefaultEventColor is the color assigned to exported venue events.
const DefaultEventColor = "darkgoldenrod"

// NormalizeFraction collapses the fraction name variants the feed emits.
func NormalizeFraction(name string) string {
	s := strings.TrimSpace(name)
	low := strings.ToLower(s)
	switch {
	case low == "altpapier" || low == "papier":
		return "Papier"
	case strings.HasPrefix(low, "restmüll"):
		return "Restmüll"
	case strings.HasPrefix(low, "gelber sack") || strings.HasPrefix(low, "gelbsack"):
		return "Gelber Sack"
	}
	return s
}

const prodID = "-//calpatch//feed export//EN"

func newExportCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	return cal
}

// WasteICS converts an area calendar into all-day collection reminders.
// wanted filters by normalized fraction name; an empty list keeps all.
// Each event carries the fraction color and a display alarm the evening
// before.
func WasteICS(wc *WasteCalendar, wanted []string) (*ical.Calendar, error) {
	keep := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		keep[NormalizeFraction(w)] = true
	}

	cal := newExportCalendar()
	count := 0
	for _, day := range wc.CollectionDays {
		date, ok := day.Day()
		if !ok {
			continue
		}
		for _, raw := range day.Fractions() {
			fraction := NormalizeFraction(raw)
			if len(keep) > 0 && !keep[fraction] {
				continue
			}
			cal.Children = append(cal.Children, wasteEvent(fraction, wc.Street, date).Component)
			count++
		}
	}
	if count == 0 {
		return nil, fmt.Errorf("no collection days left after filtering")
	}
	return cal, nil
}

func wasteEvent(fraction, street string, date time.Time) *ical.Event {
	ev := ical.NewEvent()
	// Date plus fraction keys the UID so a re-imported export updates
	// instead of duplicating.
	uid := fmt.Sprintf("%s-%s@waste.script",
		date.Format("20060102"), strings.ReplaceAll(fraction, " ", "-"))
	ev.Props.SetText(ical.PropUID, uid)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ev.Props.SetText(ical.PropSummary, fraction)
	if street != "" {
		ev.Props.SetText(ical.PropLocation, street)
	}
	ev.Props.SetDate(ical.PropDateTimeStart, date)
	ev.Props.SetDate(ical.PropDateTimeEnd, date.AddDate(0, 0, 1))
	ev.Props.SetText(ical.PropTransparency, "TRANSPARENT")

	color := FractionColors[fraction]
	if color == "" {
		color = DefaultFractionColor
	}
	ev.Props.SetText(ical.PropColor, color)

	// 6h before the midnight start, so 18:00 the evening before.
	alarm := &ical.Component{Name: ical.CompAlarm, Props: make(ical.Props)}
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, fraction+" rausstellen")
	trigger := ical.NewProp(ical.PropTrigger)
	trigger.SetValueType(ical.ValueDuration)
	trigger.Value = "-PT6H"
	alarm.Props.Set(trigger)
	ev.Children = append(ev.Children, alarm)

	return ev
}

// EventsICS converts a venue event listing into calendar events. Timed
// events get datetime bounds; all-day events get date values with the
// end defaulting to the next day.
func EventsICS(events []VenueEvent) (*ical.Calendar, error) {
	cal := newExportCalendar()
	count := 0
	for _, e := range events {
		ev, ok := venueICSEvent(e)
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, ev.Component)
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("listing contains no usable events")
	}
	return cal, nil
}

func venueICSEvent(e VenueEvent) (*ical.Event, bool) {
	start, ok := e.StartTime()
	if !ok {
		return nil, false
	}
	name := e.Name
	if name == "" {
		name = "Termin"
	}

	ev := ical.NewEvent()
	// The listing id keys the UID so re-running the export updates
	// events in place; entries without one get a throwaway UID.
	if e.ID != "" {
		ev.Props.SetText(ical.PropUID, e.ID+"@heurigen.script")
	} else {
		ev.Props.SetText(ical.PropUID, uuid.New().String())
	}
	ev.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ev.Props.SetText(ical.PropSummary, name)

	end, hasEnd := e.EndTime()
	if e.AllDay() {
		ev.Props.SetDate(ical.PropDateTimeStart, start)
		if hasEnd {
			ev.Props.SetDate(ical.PropDateTimeEnd, end)
		} else {
			ev.Props.SetDate(ical.PropDateTimeEnd, start.AddDate(0, 0, 1))
		}
	} else {
		ev.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		if hasEnd {
			ev.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
		}
	}

	if venue := e.Venue(); venue != "" {
		ev.Props.SetText(ical.PropLocation, venue)
	}
	if e.MeetupURL != "" {
		ev.Props.SetText(ical.PropURL, e.MeetupURL)
	}
	ev.Props.SetText(ical.PropColor, DefaultEventColor)
	return ev, true
}

// WriteFile serializes a calendar to path.
func WriteFile(path string, cal *ical.Calendar) error {
	data, err := vobject.Encode(cal)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
