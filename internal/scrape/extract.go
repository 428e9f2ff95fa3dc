package scrape

import (
	"regexp"
	"strings"
	"time"

	"github.com/fourfp/calpatch/internal/feed"
)

// Item is one recognized schedule row.
type Item struct {
	Date     string `json:"date"` // ISO yyyy-mm-dd
	Fraction string `json:"fraction"`
	Street   string `json:"street"`
	RawText  string `json:"raw_text"`
}

var dateRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)

// ParseDate finds the first dd.mm.yyyy date in text and returns it in ISO
// form. Calendar-invalid dates (e.g. 31.02.) are rejected.
func ParseDate(text string) (string, bool) {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	t, err := time.Parse("2.1.2006", m[1]+"."+m[2]+"."+m[3])
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// MatchFraction reports which wanted fraction the row mentions, if any.
// An empty wanted list matches any known fraction keyword.
func MatchFraction(text string, wanted []string) (string, bool) {
	if len(wanted) == 0 {
		wanted = []string{"Restmüll", "Papier", "Altpapier", "Gelber Sack", "Gelbsack", "Biomüll"}
	}
	low := strings.ToLower(text)
	for _, w := range wanted {
		if strings.Contains(low, strings.ToLower(w)) {
			return feed.NormalizeFraction(w), true
		}
	}
	return "", false
}

// ExtractItems turns raw row texts into schedule items. A row counts when
// it carries both a date and a fraction keyword; when street is non-empty
// the row must mention it too.
func ExtractItems(rows []string, street string, wanted []string) []Item {
	var items []Item
	seen := make(map[string]struct{})
	for _, row := range rows {
		if street != "" && !strings.Contains(strings.ToLower(row), strings.ToLower(street)) {
			continue
		}
		date, ok := ParseDate(row)
		if !ok {
			continue
		}
		fraction, ok := MatchFraction(row, wanted)
		if !ok {
			continue
		}
		key := date + "|" + fraction
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, Item{
			Date:     date,
			Fraction: fraction,
			Street:   street,
			RawText:  row,
		})
	}
	return items
}
