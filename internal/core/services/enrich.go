package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// IssueBoost multiplies the score of non-normal clips for issue queries
const IssueBoost = 1.2

// Enrich derives manufacturing annotations for a clip from its camera and
// description. The clip itself is not modified.
func Enrich(clip *domain.Clip) *domain.Enrichment {
	zone := zoneForClip(clip)
	alert := AlertLevelFor(clip.Description)
	return &domain.Enrichment{
		Zone:              domain.ZoneLabels[zone],
		AlertLevel:        alert,
		IssueType:         issueTypeFor(clip, alert),
		ProcessParameters: processParametersFor(zone, clip.Description, alert),
	}
}

// EnrichResults annotates every result and, for issue queries, boosts
// clips with a non-normal alert level. Results are re-sorted by score.
func EnrichResults(query string, results []*domain.RankedResult) []*domain.RankedResult {
	boost := HasIssueIntent(query)
	for _, r := range results {
		r.Enrichment = Enrich(&r.Clip)
		if boost && r.Enrichment.AlertLevel != domain.AlertNormal {
			r.RelevanceScore = min(r.RelevanceScore*IssueBoost, 1.0)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	return results
}

// HasIssueIntent reports whether the query asks about problems
func HasIssueIntent(query string) bool {
	return ContainsAny(query, domain.IssueIntentTerms)
}

// AlertLevelFor returns the first alert group with a term in the description
func AlertLevelFor(description string) domain.AlertLevel {
	for _, group := range domain.AlertTerms {
		if ContainsAny(description, group.Terms) {
			return group.Level
		}
	}
	return domain.AlertNormal
}

func zoneForClip(clip *domain.Clip) domain.Zone {
	for zone, camera := range domain.ZoneCameras {
		if strings.EqualFold(clip.CameraID, camera) {
			return zone
		}
	}
	return InferZone(clip.Description)
}

func issueTypeFor(clip *domain.Clip, alert domain.AlertLevel) string {
	for _, rule := range domain.IssueTerms[strings.ToUpper(clip.CameraID)] {
		if strings.Contains(strings.ToLower(clip.Description), rule.Term) {
			return rule.Issue
		}
	}
	if alert == domain.AlertNormal {
		return "None"
	}
	return "General Anomaly"
}

// processParametersFor produces plausible readings for display. Values move
// away from nominal only when the description implies an abnormal reading.
func processParametersFor(zone domain.Zone, description string, alert domain.AlertLevel) domain.ProcessParameters {
	abnormal := alert != domain.AlertNormal

	switch zone {
	case domain.ZoneSoldering:
		p := domain.ProcessParameters{TemperatureC: 245, SpeedMMPerSec: 20, PressureKPa: 101.3, DurationSec: 60}
		switch {
		case ContainsAny(description, []string{"overheat", "burn", "smoke", "high temperature"}):
			p.TemperatureC = 285
		case ContainsAny(description, []string{"cold joint", "insufficient"}):
			p.TemperatureC = 210
		}
		if ContainsAny(description, []string{"jam", "stopped"}) {
			p.SpeedMMPerSec = 0
		}
		if abnormal {
			p.DurationSec = 90
		}
		return p

	case domain.ZonePickAndPlace:
		p := domain.ProcessParameters{TemperatureC: 25, SpeedMMPerSec: 150, PressureKPa: -60, DurationSec: 0.4}
		if ContainsAny(description, []string{"overheat"}) {
			p.TemperatureC = 45
		}
		switch {
		case ContainsAny(description, []string{"jam", "stopped"}):
			p.SpeedMMPerSec = 0
		case ContainsAny(description, []string{"misalign"}):
			p.SpeedMMPerSec = 180
		}
		if ContainsAny(description, []string{"nozzle"}) {
			p.PressureKPa = -30
		}
		if abnormal {
			p.DurationSec = 0.9
		}
		return p

	default:
		return domain.ProcessParameters{TemperatureC: 22, PressureKPa: 101.3}
	}
}
