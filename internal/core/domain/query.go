package domain

import (
	"fmt"
	"strings"
	"time"
)

// ExtractedTerms is the structured form of a free-text query.
// Created per request by query understanding; never persisted.
type ExtractedTerms struct {
	Keywords       []string      `json:"keywords"`
	PrimaryObjects []string      `json:"primary_objects"`
	Attributes     []string      `json:"attributes"`
	Actions        []string      `json:"actions"`
	TimeReference  TimeReference `json:"time_references"`
}

// TimeReference holds the raw temporal fragments found in a query.
// Fragments are resolved to absolute bounds by the temporal resolver.
type TimeReference struct {
	SpecificDate string      `json:"specific_date,omitempty"` // YYYY-MM-DD
	SpecificTime string      `json:"specific_time,omitempty"` // HH:MM, 24h
	RelativeTime string      `json:"relative_time,omitempty"` // "yesterday", "before 8 pm", ...
	Period       *TimePeriod `json:"time_period,omitempty"`
	DayPart      string      `json:"day_part,omitempty"` // morning, afternoon, evening, night
}

// TimePeriod is an explicit start/end range given by the query
type TimePeriod struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsEmpty reports whether no temporal fragment is present
func (r TimeReference) IsEmpty() bool {
	return r.SpecificDate == "" && r.SpecificTime == "" && r.RelativeTime == "" &&
		r.DayPart == "" && (r.Period == nil || (r.Period.Start == "" && r.Period.End == ""))
}

// Normalize trims whitespace, drops empty terms and lowercases labels.
func (t *ExtractedTerms) Normalize() {
	t.Keywords = cleanTerms(t.Keywords)
	t.PrimaryObjects = cleanTerms(t.PrimaryObjects)
	t.Attributes = cleanTerms(t.Attributes)
	t.Actions = cleanTerms(t.Actions)

	ref := &t.TimeReference
	ref.SpecificDate = strings.TrimSpace(ref.SpecificDate)
	ref.SpecificTime = strings.TrimSpace(ref.SpecificTime)
	ref.RelativeTime = strings.ToLower(strings.TrimSpace(ref.RelativeTime))
	ref.DayPart = strings.ToLower(strings.TrimSpace(ref.DayPart))
	if ref.Period != nil {
		ref.Period.Start = strings.TrimSpace(ref.Period.Start)
		ref.Period.End = strings.TrimSpace(ref.Period.End)
		if ref.Period.Start == "" && ref.Period.End == "" {
			ref.Period = nil
		}
	}
}

// SearchKeywords returns the deduplicated union of all term lists,
// lowercased, keeping only terms longer than two characters.
func (t *ExtractedTerms) SearchKeywords() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{t.Keywords, t.PrimaryObjects, t.Attributes, t.Actions} {
		for _, term := range list {
			term = strings.ToLower(strings.TrimSpace(term))
			if len(term) <= 2 || seen[term] {
				continue
			}
			seen[term] = true
			out = append(out, term)
		}
	}
	return out
}

// NaiveTerms tokenizes a query without any model: every word longer than
// two characters becomes a keyword and every other field stays empty.
func NaiveTerms(query string) *ExtractedTerms {
	terms := &ExtractedTerms{}
	for _, word := range strings.Fields(query) {
		if len(word) > 2 {
			terms.Keywords = append(terms.Keywords, word)
		}
	}
	return terms
}

func cleanTerms(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TimeConstraint is a resolved absolute window. A nil bound is unbounded.
type TimeConstraint struct {
	Start *time.Time `json:"start_time,omitempty"`
	End   *time.Time `json:"end_time,omitempty"`
}

// IsEmpty reports whether both bounds are absent
func (c TimeConstraint) IsEmpty() bool {
	return c.Start == nil && c.End == nil
}

// FullDay reports whether the window covers exactly one calendar day,
// 00:00:00 through 23:59:59, and returns that day as YYYY-MM-DD.
func (c TimeConstraint) FullDay() (string, bool) {
	if c.Start == nil || c.End == nil {
		return "", false
	}
	s, e := *c.Start, *c.End
	if s.Hour() != 0 || s.Minute() != 0 || s.Second() != 0 {
		return "", false
	}
	if e.Hour() != 23 || e.Minute() != 59 || e.Second() != 59 {
		return "", false
	}
	if s.Year() != e.Year() || s.YearDay() != e.YearDay() {
		return "", false
	}
	return s.Format(DateLayout), true
}

// Bounds returns concrete bounds, substituting the Unix epoch for a
// missing start and now for a missing end.
func (c TimeConstraint) Bounds(now time.Time) (time.Time, time.Time) {
	start := time.Unix(0, 0).In(now.Location())
	end := now
	if c.Start != nil {
		start = *c.Start
	}
	if c.End != nil {
		end = *c.End
	}
	return start, end
}

// ExclusiveEnd turns an inclusive window end into the half-open bound used
// by store lookups. Ends are inclusive to the second, so 23:59:59 admits
// 23:59:59.999.
func ExclusiveEnd(end time.Time) time.Time {
	return end.Truncate(time.Second).Add(time.Second)
}

func (c TimeConstraint) String() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "unbounded"
		}
		return t.Format(TimestampLayout)
	}
	return fmt.Sprintf("%s to %s", format(c.Start), format(c.End))
}

const (
	// DateLayout is the ISO calendar date used for date-pattern lookups
	DateLayout = "2006-01-02"

	// TimestampLayout is the zone-less ISO timestamp used in prompts and logs
	TimestampLayout = "2006-01-02T15:04:05"
)
