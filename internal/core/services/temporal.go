package services

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// TemporalResolver converts extracted time fragments into absolute windows.
// Resolution depends only on the reference and the anchor; the logger only
// records fragments that could not be parsed.
type TemporalResolver struct {
	logger *slog.Logger
}

// NewTemporalResolver creates a TemporalResolver
func NewTemporalResolver(logger *slog.Logger) *TemporalResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemporalResolver{logger: logger}
}

var (
	daysAgoPattern  = regexp.MustCompile(`(\d+)\s+days?\s+(ago|back|before)`)
	weeksAgoPattern = regexp.MustCompile(`(\d+)\s+weeks?\s+(ago|back|before)`)
	lastPattern     = regexp.MustCompile(`\blast\b`)
	clockPattern    = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)?$`)
)

// instantLayouts are tried in order for explicit period bounds
var instantLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// dayPartHours maps a day part to its [start, end) hours. End hours past
// 24 roll into the next day.
var dayPartHours = []struct {
	name       string
	start, end int
}{
	{"morning", 6, 12},
	{"afternoon", 12, 18},
	{"evening", 18, 22},
	{"night", 22, 30},
}

// Resolve returns the window described by ref. The first applicable rule wins:
// explicit period, specific date (+time), relative phrase, then day part.
func (r *TemporalResolver) Resolve(ref domain.TimeReference, anchor time.Time) domain.TimeConstraint {
	loc := anchor.Location()
	rel := strings.ToLower(ref.RelativeTime)

	if ref.Period != nil {
		tc := domain.TimeConstraint{
			Start: r.parseInstant(ref.Period.Start, loc, false),
			End:   r.parseInstant(ref.Period.End, loc, true),
		}
		if !tc.IsEmpty() {
			return tc
		}
	}

	var tc domain.TimeConstraint
	if ref.SpecificDate != "" || ref.SpecificTime != "" {
		tc = r.resolveDate(ref, rel, anchor)
	}

	if tc.IsEmpty() && rel != "" {
		tc = resolveRelative(rel, anchor)
	}

	dayPart := ref.DayPart
	if dayPart == "" && tc.Start == nil {
		dayPart = rel
	}
	if dayPart != "" {
		switch {
		case tc.Start == nil:
			// "last night" starts on the day before the anchor
			day := startOfDay(anchor)
			if lastPattern.MatchString(rel) {
				day = day.AddDate(0, 0, -1)
			}
			if narrowed, ok := applyDayPart(dayPart, day); ok {
				tc = narrowed
			}
		default:
			if date, ok := tc.FullDay(); ok {
				day, _ := time.ParseInLocation(domain.DateLayout, date, loc)
				if narrowed, ok := applyDayPart(dayPart, day); ok {
					tc = narrowed
				}
			}
		}
	}

	return tc
}

func (r *TemporalResolver) resolveDate(ref domain.TimeReference, rel string, anchor time.Time) domain.TimeConstraint {
	loc := anchor.Location()
	day := startOfDay(anchor)

	if ref.SpecificDate != "" && !strings.Contains(rel, "today") {
		parsed, err := time.ParseInLocation(domain.DateLayout, ref.SpecificDate, loc)
		if err != nil {
			r.logger.Warn("ignoring malformed date",
				"date", ref.SpecificDate,
				"error", domain.ErrMalformedTimeReference,
			)
			return domain.TimeConstraint{}
		}
		day = parsed
	}

	if ref.SpecificTime == "" {
		return fullDay(day)
	}

	hour, minute, ok := parseClock(ref.SpecificTime)
	if !ok {
		r.logger.Warn("ignoring malformed time",
			"time", ref.SpecificTime,
			"error", domain.ErrMalformedTimeReference,
		)
		return domain.TimeConstraint{}
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)

	switch {
	case strings.Contains(rel, "before"):
		return window(day, at)
	case strings.Contains(rel, "after"):
		return window(at, endOfDay(day))
	default:
		return window(at, at.Add(time.Hour))
	}
}

func resolveRelative(rel string, anchor time.Time) domain.TimeConstraint {
	today := startOfDay(anchor)

	if m := daysAgoPattern.FindStringSubmatch(rel); m != nil {
		n, _ := strconv.Atoi(m[1])
		return fullDay(today.AddDate(0, 0, -n))
	}
	if m := weeksAgoPattern.FindStringSubmatch(rel); m != nil {
		n, _ := strconv.Atoi(m[1])
		first := today.AddDate(0, 0, -7*n)
		return window(first, endOfDay(first.AddDate(0, 0, 6)))
	}

	switch {
	case strings.Contains(rel, "yesterday"):
		return fullDay(today.AddDate(0, 0, -1))
	case strings.Contains(rel, "today"):
		return fullDay(today)
	case strings.Contains(rel, "last week"):
		return window(today.AddDate(0, 0, -7), anchor)
	}
	return domain.TimeConstraint{}
}

func applyDayPart(dayPart string, day time.Time) (domain.TimeConstraint, bool) {
	dayPart = strings.ToLower(dayPart)
	for _, p := range dayPartHours {
		if strings.Contains(dayPart, p.name) {
			start := time.Date(day.Year(), day.Month(), day.Day(), p.start, 0, 0, 0, day.Location())
			end := time.Date(day.Year(), day.Month(), day.Day(), p.end, 0, 0, 0, day.Location())
			return window(start, end), true
		}
	}
	return domain.TimeConstraint{}, false
}

// parseInstant parses a period bound. A bare date used as an end bound
// covers the whole day.
func (r *TemporalResolver) parseInstant(value string, loc *time.Location, isEnd bool) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t
		}
	}
	if t, err := time.ParseInLocation(domain.DateLayout, value, loc); err == nil {
		if isEnd {
			t = endOfDay(t)
		}
		return &t
	}
	r.logger.Warn("ignoring malformed period bound",
		"value", value,
		"error", domain.ErrMalformedTimeReference,
	)
	return nil
}

// parseClock accepts 24h "HH:MM[:SS]" and 12h "H[:MM] am/pm" forms
func parseClock(value string) (int, int, bool) {
	m := clockPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(value)))
	if m == nil {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch strings.ReplaceAll(m[4], ".", "") {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 12 {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func fullDay(day time.Time) domain.TimeConstraint {
	return window(startOfDay(day), endOfDay(day))
}

func window(start, end time.Time) domain.TimeConstraint {
	return domain.TimeConstraint{Start: &start, End: &end}
}
