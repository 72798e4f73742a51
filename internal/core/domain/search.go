package domain

import "time"

// SearchMode selects domain-specific filtering and enrichment
type SearchMode string

const (
	SearchModeDefault       SearchMode = "default"       // general surveillance
	SearchModePCB           SearchMode = "pcb"           // PCB inspection
	SearchModeManufacturing SearchMode = "manufacturing" // manufacturing-zone monitoring
)

// IsValid reports whether the mode is known. The empty mode is valid and
// means "classify from the query".
func (m SearchMode) IsValid() bool {
	switch m {
	case "", SearchModeDefault, SearchModePCB, SearchModeManufacturing:
		return true
	}
	return false
}

// Tier names the retrieval strategy that produced the candidates
type Tier string

const (
	TierLatest      Tier = "latest"
	TierFullDay     Tier = "full_day"
	TierKeywordTime Tier = "keyword_time"
	TierTimeOnly    Tier = "time_only"
	TierKeyword     Tier = "keyword"
	TierEmpty       Tier = "empty"
)

// Fixed scores assigned by the bypass tiers
const (
	BypassScore   = 0.95
	TimeOnlyScore = 0.8
)

// SearchOptions configures a search request
type SearchOptions struct {
	Mode         SearchMode `json:"mode,omitempty"`
	CameraFilter string     `json:"camera_filter,omitempty"` // manufacturing results only
}

// SearchSettings is read-only configuration fixed at startup
type SearchSettings struct {
	RelevanceThreshold float64 `json:"relevance_threshold"`
	MaxResults         int     `json:"max_results"`
	RankCandidateCap   int     `json:"rank_candidate_cap"`
	LookupConcurrency  int     `json:"lookup_concurrency"`
}

// DefaultSearchSettings returns the defaults used by the original deployment
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		RelevanceThreshold: 0.6,
		MaxResults:         10,
		RankCandidateCap:   50,
		LookupConcurrency:  4,
	}
}

// WithDefaults fills unset values from DefaultSearchSettings. Counts are
// unset when zero or negative; the threshold only when negative, since a
// zero threshold keeps every scored clip.
func (s SearchSettings) WithDefaults() SearchSettings {
	d := DefaultSearchSettings()
	if s.RelevanceThreshold < 0 {
		s.RelevanceThreshold = d.RelevanceThreshold
	}
	if s.MaxResults <= 0 {
		s.MaxResults = d.MaxResults
	}
	if s.RankCandidateCap <= 0 {
		s.RankCandidateCap = d.RankCandidateCap
	}
	if s.LookupConcurrency <= 0 {
		s.LookupConcurrency = d.LookupConcurrency
	}
	return s
}

// SearchResult represents the result of a search query
type SearchResult struct {
	Query      string          `json:"query"`
	Mode       SearchMode      `json:"mode"`
	Tier       Tier            `json:"tier"`
	Window     TimeConstraint  `json:"window"`
	Results    []*RankedResult `json:"results"`
	TotalCount int             `json:"total_count"`
	Took       time.Duration   `json:"took"`
}

// RankedResult is a clip with its relevance score and optional annotations
type RankedResult struct {
	Clip           Clip        `json:"clip"`
	RelevanceScore float64     `json:"relevance_score"`
	Enrichment     *Enrichment `json:"enrichment,omitempty"`
}

// Enrichment carries presentation-only annotations for manufacturing results
type Enrichment struct {
	Zone              string            `json:"zone"`
	AlertLevel        AlertLevel        `json:"alert_level"`
	IssueType         string            `json:"issue_type"`
	ProcessParameters ProcessParameters `json:"process_parameters"`
}

// ProcessParameters are synthetic readings derived from a clip description
type ProcessParameters struct {
	TemperatureC  float64 `json:"temperature_c"`
	SpeedMMPerSec float64 `json:"speed_mm_per_sec"`
	PressureKPa   float64 `json:"pressure_kpa"`
	DurationSec   float64 `json:"duration_sec"`
}

// AlertLevel grades how urgent a clip looks
type AlertLevel string

const (
	AlertCritical AlertLevel = "critical"
	AlertWarning  AlertLevel = "warning"
	AlertNormal   AlertLevel = "normal"
)

// CandidateScore is one relevance judgement returned by the semantic oracle
type CandidateScore struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// ScoreCandidate is the minimal view of a clip sent to the oracle for ranking
type ScoreCandidate struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}
