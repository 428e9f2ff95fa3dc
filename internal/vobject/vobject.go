// Package vobject decodes and re-encodes iCalendar resource bodies and
// applies classification patches to their events. Everything the decoder
// does not understand is kept in the component tree and survives the
// round trip; only TRANSP and COLOR are ever rewritten.
package vobject

import (
	"bytes"
	"fmt"

	"github.com/emersion/go-ical"

	"github.com/fourfp/calpatch/internal/rules"
)

// Decode parses a raw iCalendar body. A malformed body is a hard error;
// the caller skips the object rather than guessing at its structure.
func Decode(raw []byte) (*ical.Calendar, error) {
	cal, err := ical.NewDecoder(bytes.NewReader(raw)).Decode()
	if err != nil {
		return nil, fmt.Errorf("decode icalendar body: %w", err)
	}
	return cal, nil
}

// Encode serializes the calendar back to its wire form.
func Encode(cal *ical.Calendar) ([]byte, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode icalendar body: %w", err)
	}
	return buf.Bytes(), nil
}

// Summary returns the SUMMARY of an event, if present.
func Summary(ev ical.Event) (string, bool) {
	prop := ev.Props.Get(ical.PropSummary)
	if prop == nil {
		return "", false
	}
	return prop.Value, true
}

// Transparency returns the raw TRANSP value, or "" when unset.
func Transparency(ev ical.Event) string {
	if prop := ev.Props.Get(ical.PropTransparency); prop != nil {
		return prop.Value
	}
	return ""
}

// Color returns the raw COLOR value, or "" when unset.
func Color(ev ical.Event) string {
	if prop := ev.Props.Get(ical.PropColor); prop != nil {
		return prop.Value
	}
	return ""
}

// Apply sets the event's TRANSP and COLOR to the patch's desired state and
// reports whether anything actually changed. Setting an already-correct
// value is a no-op, so applying the same patch twice never produces a diff.
func Apply(ev ical.Event, p rules.Patch) bool {
	changed := false
	if Transparency(ev) != p.Transparency {
		ev.Props.SetText(ical.PropTransparency, p.Transparency)
		changed = true
	}
	if p.Color != "" && Color(ev) != p.Color {
		ev.Props.SetText(ical.PropColor, p.Color)
		changed = true
	}
	return changed
}
