// Package normalize converts a loosely typed submission payload into the
// canonical fields a published show requires. Every per-field step degrades
// to nil/default instead of failing; only structural problems (no usable
// start date, conflicting schedule timezones) abort the whole normalization.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"showfinder/internal/geo"
	"showfinder/internal/models"
	"showfinder/internal/payload"
)

// DefaultTimezone is assumed for schedule entries that do not declare one.
const DefaultTimezone = "America/New_York"

const (
	defaultTitle    = "Untitled Show"
	defaultLocation = "TBD"
)

var (
	// ErrNoStartDate means neither a daily schedule nor a parseable
	// top-level start date was present.
	ErrNoStartDate = errors.New("no parseable start date")
	// ErrMixedTimezones means schedule entries declared conflicting
	// timezones. The first entry's timezone is authoritative; conflicting
	// declarations are rejected rather than silently reinterpreted.
	ErrMixedTimezones = errors.New("daily schedule entries declare conflicting timezones")
)

var feePattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
}

// Normalized is the derived canonical field set for one show.
type Normalized struct {
	Title         string
	Description   string
	Location      string
	Address       string
	ImageURL      *string
	WebsiteURL    *string
	StartDate     time.Time
	EndDate       time.Time
	DailySchedule []models.ScheduleEntry
	EntryFee      *float64
	Latitude      *float64
	Longitude     *float64
	Features      map[string]bool
	Categories    []string

	// CoordinateIssue is non-empty when the payload carried no usable
	// coordinates; the caller logs it, the show publishes without a point.
	CoordinateIssue string
}

// Show derives canonical show fields from an untrusted payload.
func Show(p payload.Untrusted) (Normalized, error) {
	n := Normalized{
		Title:       defaultTitle,
		Location:    defaultLocation,
		Features:    map[string]bool{},
		Categories:  []string{},
		Description: firstString(p, "description"),
	}

	if title := firstString(p, "title", "name"); title != "" {
		n.Title = title
	}

	venue := firstString(p, "venueName", "venue", "location")
	city := firstString(p, "city")
	state := firstString(p, "state")
	if venue != "" {
		n.Location = venue
	} else if city != "" {
		n.Location = city
	}
	n.Address = resolveAddress(p, venue, city, state)

	if u := firstString(p, "imageUrl", "image_url"); u != "" {
		n.ImageURL = &u
	}
	if u := firstString(p, "websiteUrl", "website_url", "url"); u != "" {
		n.WebsiteURL = &u
	}

	n.EntryFee = parseFee(p)
	n.Features = coerceFeatures(p)
	n.Categories = p.StringSlice("categories")
	if n.Categories == nil {
		n.Categories = []string{}
	}

	if err := resolveDates(p, &n); err != nil {
		return Normalized{}, err
	}

	resolveCoordinates(p, &n)

	return n, nil
}

// ApplyGeocoded overlays coordinates resolved by the external geocoder onto
// an already-normalized show. It only fills coordinates the payload itself
// could not provide; a malformed geocoded payload is ignored.
func ApplyGeocoded(n *Normalized, raw json.RawMessage) {
	if len(raw) == 0 || n.Latitude != nil {
		return
	}
	p, err := payload.Parse(raw)
	if err != nil {
		return
	}
	var g Normalized
	resolveCoordinates(p, &g)
	if g.Latitude != nil {
		n.Latitude = g.Latitude
		n.Longitude = g.Longitude
		n.CoordinateIssue = ""
	}
}

// ParseEntryFee extracts a numeric fee from free text. Ambiguous or
// unparseable input yields nil, never an error.
func ParseEntryFee(raw string) *float64 {
	match := feePattern.FindString(raw)
	if match == "" {
		return nil
	}
	fee, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &fee
}

func parseFee(p payload.Untrusted) *float64 {
	for _, key := range []string{"entryFee", "entry_fee", "fee"} {
		if f, ok := p.Float(key); ok {
			return &f
		}
		if raw, ok := p.Raw(key); ok {
			if s, ok := raw.(string); ok {
				if fee := ParseEntryFee(s); fee != nil {
					return fee
				}
			}
		}
	}
	return nil
}

func coerceFeatures(p payload.Untrusted) map[string]bool {
	features := map[string]bool{}
	raw, ok := p.Raw("features")
	if !ok {
		return features
	}
	switch v := raw.(type) {
	case []any:
		for _, key := range p.StringSlice("features") {
			features[key] = true
		}
	case map[string]any:
		for key, val := range v {
			if b, ok := val.(bool); ok && b {
				features[key] = true
			}
		}
	}
	return features
}

func resolveAddress(p payload.Untrusted, venue, city, state string) string {
	if addr := firstString(p, "address"); addr != "" {
		return addr
	}
	parts := make([]string, 0, 3)
	for _, part := range []string{venue, city, state} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return defaultLocation
	}
	return strings.Join(parts, ", ")
}

// resolveDates fills the overall span. A non-empty daily schedule wins:
// start/end become the min/max schedule instants in the schedule's declared
// timezone. Otherwise top-level fields apply, with endDate defaulting to
// startDate for single-day shows.
func resolveDates(p payload.Untrusted, n *Normalized) error {
	entries := p.Objects("dailySchedule")
	if len(entries) == 0 {
		entries = p.Objects("daily_schedule")
	}

	if len(entries) > 0 {
		start, end, schedule, err := scheduleSpan(entries)
		if err != nil {
			return err
		}
		if len(schedule) > 0 {
			n.StartDate = start
			n.EndDate = end
			n.DailySchedule = schedule
			return nil
		}
		// Every entry was unusable; fall through to top-level dates.
	}

	start, ok := parseDate(firstString(p, "startDate", "start_date", "date"))
	if !ok {
		return ErrNoStartDate
	}
	n.StartDate = start
	if end, ok := parseDate(firstString(p, "endDate", "end_date")); ok && !end.Before(start) {
		n.EndDate = end
	} else {
		n.EndDate = start
	}
	return nil
}

func scheduleSpan(entries []payload.Untrusted) (time.Time, time.Time, []models.ScheduleEntry, error) {
	tzName := ""
	var schedule []models.ScheduleEntry

	for _, e := range entries {
		entry := models.ScheduleEntry{
			Date:      firstString(e, "date"),
			StartTime: firstString(e, "startTime", "start_time"),
			EndTime:   firstString(e, "endTime", "end_time"),
			Timezone:  firstString(e, "timezone"),
			Notes:     firstString(e, "notes"),
		}
		if entry.Date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", entry.Date); err != nil {
			continue
		}
		if entry.Timezone != "" {
			if tzName == "" {
				tzName = entry.Timezone
			} else if entry.Timezone != tzName {
				return time.Time{}, time.Time{}, nil, ErrMixedTimezones
			}
		}
		schedule = append(schedule, entry)
	}

	if len(schedule) == 0 {
		return time.Time{}, time.Time{}, nil, nil
	}

	if tzName == "" {
		tzName = DefaultTimezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		loc, _ = time.LoadLocation(DefaultTimezone)
	}

	sort.Slice(schedule, func(i, j int) bool { return schedule[i].Date < schedule[j].Date })

	first := schedule[0]
	last := schedule[len(schedule)-1]
	start := dayInstant(first.Date, first.StartTime, loc, 0, 0)
	end := dayInstant(last.Date, last.EndTime, loc, 23, 59)
	if end.Before(start) {
		end = start
	}
	return start, end, schedule, nil
}

// dayInstant combines a schedule date with a wall-clock time in loc. An
// absent or unparseable time degrades to the given fallback hour/minute.
func dayInstant(date, clock string, loc *time.Location, fallbackHour, fallbackMin int) time.Time {
	day, _ := time.ParseInLocation("2006-01-02", date, loc)
	h, m := fallbackHour, fallbackMin
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, clock); err == nil {
			h, m = t.Hour(), t.Minute()
			break
		}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
}

func resolveCoordinates(p payload.Untrusted, n *Normalized) {
	lat, latOK := p.Float("latitude")
	lon, lonOK := p.Float("longitude")
	if !latOK || !lonOK {
		if raw, ok := p.Raw("coordinates"); ok {
			if m, isMap := raw.(map[string]any); isMap {
				c := payload.FromMap(m)
				lat, latOK = c.Float("latitude")
				lon, lonOK = c.Float("longitude")
			}
		}
	}

	switch {
	case !latOK || !lonOK:
		n.CoordinateIssue = "missing coordinates"
	case !geo.ValidCoordinates(lat, lon):
		n.CoordinateIssue = fmt.Sprintf("coordinates out of range: (%v, %v)", lat, lon)
	default:
		n.Latitude = &lat
		n.Longitude = &lon
	}
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstString(p payload.Untrusted, keys ...string) string {
	for _, key := range keys {
		if s, ok := p.String(key); ok {
			return s
		}
	}
	return ""
}
