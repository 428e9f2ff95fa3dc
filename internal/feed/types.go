package feed

import (
	"encoding/json"
	"strings"
	"time"
)

// WasteCalendar is the area calendar payload.
type WasteCalendar struct {
	Street         string          `json:"street"`
	CollectionDays []CollectionDay `json:"garbageCollectionDays"`
}

// CollectionDay is one collection date with its fraction entries. The API
// is inconsistent about garbageTypeSettings: depending on the area it is a
// list of objects, a single object, or absent with a bare name field.
type CollectionDay struct {
	Date      string           `json:"date"`
	Name      string           `json:"name"`
	TypesList typeSettingsList `json:"garbageTypeSettings"`
}

// Fractions returns the fraction display names of this day, falling back
// to the bare name when no settings are present.
func (d CollectionDay) Fractions() []string {
	var names []string
	for _, s := range d.TypesList {
		if n := s.displayName(); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 && d.Name != "" {
		names = append(names, d.Name)
	}
	return names
}

// Day returns the collection date (the payload carries a timestamp; only
// the date part matters for an all-day event).
func (d CollectionDay) Day() (time.Time, bool) {
	if len(d.Date) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", d.Date[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type typeSetting struct {
	DisplayName string `json:"displayName"`
	Name        string `json:"name"`
	GarbageType string `json:"garbageType"`
}

func (s typeSetting) displayName() string {
	switch {
	case s.DisplayName != "":
		return s.DisplayName
	case s.Name != "":
		return s.Name
	default:
		return s.GarbageType
	}
}

type typeSettingsList []typeSetting

// UnmarshalJSON accepts a list, a single object, or a bare string.
func (l *typeSettingsList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "["):
		var list []typeSetting
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
	case strings.HasPrefix(trimmed, "{"):
		var single typeSetting
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = typeSettingsList{single}
	case trimmed == "null":
		*l = nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = typeSettingsList{{Name: s}}
	}
	return nil
}

// VenueEvent is one entry of the venue event listing. The API carries
// separate timestamp and date fields; hasStartTime/hasEndTime say which
// one is authoritative. A missing hasStartTime means timed.
type VenueEvent struct {
	ID           string        `json:"_id"`
	Name         string        `json:"name"`
	StartsAt     string        `json:"startsAt"`
	StartsAtDate string        `json:"startsAtDate"`
	EndsAt       string        `json:"endsAt"`
	EndsAtDate   string        `json:"endsAtDate"`
	HasStartTime *bool         `json:"hasStartTime"`
	HasEndTime   bool          `json:"hasEndTime"`
	MeetupURL    string        `json:"meetupUrl"`
	Location     venueLocation `json:"location"`
	Page         venuePage     `json:"page"`
}

type venueLocation struct {
	Label string `json:"label"`
}

type venuePage struct {
	Address venueLocation `json:"address"`
}

// eventListing is one page of the listing; NextURL chains to the next
// page until the server stops sending it.
type eventListing struct {
	Data    []VenueEvent `json:"data"`
	NextURL string       `json:"nextUrl"`
}

// AllDay reports whether the event has a date but no time of day.
func (e VenueEvent) AllDay() bool {
	return e.HasStartTime != nil && !*e.HasStartTime
}

// StartTime parses the event start, preferring the field the has-flag
// points at and falling back to the other one.
func (e VenueEvent) StartTime() (time.Time, bool) {
	first, second := e.StartsAt, e.StartsAtDate
	if e.AllDay() {
		first, second = second, first
	}
	if t, ok := parseISOTime(first); ok {
		return t, true
	}
	return parseISOTime(second)
}

// EndTime parses the event end; ok is false when the listing carries none.
func (e VenueEvent) EndTime() (time.Time, bool) {
	first, second := e.EndsAtDate, e.EndsAt
	if e.HasEndTime {
		first, second = second, first
	}
	if t, ok := parseISOTime(first); ok {
		return t, true
	}
	return parseISOTime(second)
}

// Venue returns the location label, falling back to the hosting page's
// address. Labels that are only separator junk count as absent.
func (e VenueEvent) Venue() string {
	label := e.Location.Label
	if label == "" {
		label = e.Page.Address.Label
	}
	if strings.Trim(label, ", ") == "" {
		return ""
	}
	return label
}

func parseISOTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
