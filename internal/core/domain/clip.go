package domain

import (
	"sort"
	"time"
)

// Clip is a stored, timestamped image record.
// The pipeline only reads clips; annotations live on RankedResult.
type Clip struct {
	ID          string        `json:"id"`
	CameraID    string        `json:"camera_id"`
	ImageRef    string        `json:"image_ref"` // URL or data URI, opaque to search
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
	Metadata    *ClipMetadata `json:"metadata,omitempty"`
}

// ClipMetadata holds optional derived fields written at ingest time.
// None of these are authoritative; enrichment recomputes them per request.
type ClipMetadata struct {
	ZoneType          string            `json:"zone_type,omitempty"`
	AlertLevel        string            `json:"alert_level,omitempty"`
	IssueType         string            `json:"issue_type,omitempty"`
	ProcessParameters map[string]string `json:"process_parameters,omitempty"`
}

// CandidateSet is a deduplicated collection of clips keyed by ID.
// Insertion order is kept so the ranking cap is deterministic.
type CandidateSet struct {
	order []string
	byID  map[string]*Clip
}

// NewCandidateSet creates an empty CandidateSet
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{byID: make(map[string]*Clip)}
}

// Add inserts a clip unless its ID is already present.
// Returns true if the clip was added.
func (s *CandidateSet) Add(clip *Clip) bool {
	if clip == nil {
		return false
	}
	if _, ok := s.byID[clip.ID]; ok {
		return false
	}
	s.byID[clip.ID] = clip
	s.order = append(s.order, clip.ID)
	return true
}

// AddAll inserts every clip, skipping duplicates
func (s *CandidateSet) AddAll(clips []*Clip) {
	for _, c := range clips {
		s.Add(c)
	}
}

// Contains reports whether a clip ID is in the set
func (s *CandidateSet) Contains(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Get returns the clip for an ID
func (s *CandidateSet) Get(id string) (*Clip, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Len returns the number of clips in the set
func (s *CandidateSet) Len() int {
	return len(s.order)
}

// Clips returns the clips in insertion order
func (s *CandidateSet) Clips() []*Clip {
	clips := make([]*Clip, 0, len(s.order))
	for _, id := range s.order {
		clips = append(clips, s.byID[id])
	}
	return clips
}

// Filter returns a new set containing only clips for which keep returns true
func (s *CandidateSet) Filter(keep func(*Clip) bool) *CandidateSet {
	out := NewCandidateSet()
	for _, id := range s.order {
		if c := s.byID[id]; keep(c) {
			out.Add(c)
		}
	}
	return out
}

// SortByNewest orders clips by CreatedAt descending, ties broken by ID
func SortByNewest(clips []*Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].CreatedAt.Equal(clips[j].CreatedAt) {
			return clips[i].ID < clips[j].ID
		}
		return clips[i].CreatedAt.After(clips[j].CreatedAt)
	})
}
