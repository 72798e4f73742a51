package services

import (
	"strings"

	"github.com/custodia-labs/clipsearch/internal/core/domain"
)

// ClassifyDomain picks the domain mode for a query. An explicit hint wins;
// otherwise PCB terms are checked before manufacturing terms.
func ClassifyDomain(query string, hint domain.SearchMode) domain.SearchMode {
	if hint != "" {
		return hint
	}
	switch {
	case ContainsAny(query, domain.PCBTerms):
		return domain.SearchModePCB
	case ContainsAny(query, domain.SolderingTerms),
		ContainsAny(query, domain.PickAndPlaceTerms),
		ContainsAny(query, domain.ManufacturingTerms):
		return domain.SearchModeManufacturing
	default:
		return domain.SearchModeDefault
	}
}

// FilterPCB keeps clips whose description mentions a PCB term
func FilterPCB(set *domain.CandidateSet) *domain.CandidateSet {
	return set.Filter(func(c *domain.Clip) bool {
		return ContainsAny(c.Description, domain.PCBTerms)
	})
}

// InferZone scores the query against the soldering and pick-and-place
// vocabularies. Only a strict winner yields a zone.
func InferZone(query string) domain.Zone {
	soldering := CountMatches(query, domain.SolderingTerms)
	pickAndPlace := CountMatches(query, domain.PickAndPlaceTerms)
	switch {
	case soldering > pickAndPlace:
		return domain.ZoneSoldering
	case pickAndPlace > soldering:
		return domain.ZonePickAndPlace
	default:
		return domain.ZoneNone
	}
}

// FilterZone keeps clips from the camera watching zone.
// Without a zone the set is returned unchanged.
func FilterZone(set *domain.CandidateSet, zone domain.Zone) *domain.CandidateSet {
	camera, ok := domain.ZoneCameras[zone]
	if !ok {
		return set
	}
	return set.Filter(func(c *domain.Clip) bool {
		return strings.EqualFold(c.CameraID, camera)
	})
}

// ContainsAny reports whether text contains any term, ignoring case
func ContainsAny(text string, terms []string) bool {
	text = strings.ToLower(text)
	for _, t := range terms {
		if strings.Contains(text, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// CountMatches counts the terms contained in text, ignoring case
func CountMatches(text string, terms []string) int {
	text = strings.ToLower(text)
	n := 0
	for _, t := range terms {
		if strings.Contains(text, strings.ToLower(t)) {
			n++
		}
	}
	return n
}
