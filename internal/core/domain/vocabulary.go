package domain

// Keyword tables for query classification and enrichment.
// Matching is lowercase substring containment; changing an entry changes
// which clips a query can see, so bump VocabularyVersion on every edit.

// VocabularyVersion identifies the keyword tables below
const VocabularyVersion = "2025-06.2"

// PCBTerms mark PCB inspection queries and descriptions
var PCBTerms = []string{
	"pcb",
	"circuit board",
	"printed circuit",
	"missing hole",
	"mouse bite",
	"open circuit",
	"short circuit",
	"spur",
	"spurious copper",
	"copper trace",
	"capacitor",
	"resistor",
}

// SolderingTerms describe the soldering zone. Zone and manufacturing terms
// only classify a query on their own, so words common in ordinary scene
// descriptions ("bridge", "heat", "station") are left out.
var SolderingTerms = []string{
	"solder",
	"reflow",
	"flux",
	"cold joint",
}

// PickAndPlaceTerms describe the pick-and-place zone
var PickAndPlaceTerms = []string{
	"pick and place",
	"pick-and-place",
	"nozzle",
	"feeder",
	"tombstone",
	"surface mount",
}

// ManufacturingTerms are line-level terms not tied to one zone
var ManufacturingTerms = []string{
	"manufacturing",
	"assembly line",
	"production line",
	"conveyor",
}

// Zone is a monitored manufacturing area
type Zone string

const (
	ZoneNone         Zone = ""
	ZoneSoldering    Zone = "soldering"
	ZonePickAndPlace Zone = "pick_and_place"
)

// ZoneCameras maps each zone to the camera that watches it
var ZoneCameras = map[Zone]string{
	ZoneSoldering:    "CAM-01",
	ZonePickAndPlace: "CAM-02",
}

// ZoneLabels are display names for zones
var ZoneLabels = map[Zone]string{
	ZoneNone:         "General Monitoring",
	ZoneSoldering:    "Soldering Station",
	ZonePickAndPlace: "Pick-and-Place",
}

// AlertTerms are checked in order; the first group with a match wins
var AlertTerms = []struct {
	Level AlertLevel
	Terms []string
}{
	{AlertCritical, []string{"fire", "smoke", "burn", "overheat", "spark", "critical", "emergency", "short circuit", "explosion"}},
	{AlertWarning, []string{"warning", "misalign", "defect", "missing", "bridge", "cold joint", "excess", "insufficient", "crack", "jam", "tombstone", "damaged", "abnormal"}},
}

// IssueRule maps a description term to an issue label
type IssueRule struct {
	Term  string
	Issue string
}

// IssueTerms are camera-specific issue tables, checked in order
var IssueTerms = map[string][]IssueRule{
	"CAM-01": {
		{"bridge", "Solder Bridge"},
		{"cold joint", "Cold Joint"},
		{"insufficient", "Insufficient Solder"},
		{"excess", "Excess Solder"},
		{"overheat", "Overheating"},
		{"burn", "Overheating"},
		{"smoke", "Overheating"},
	},
	"CAM-02": {
		{"misalign", "Component Misalignment"},
		{"missing", "Missing Component"},
		{"tombstone", "Tombstoning"},
		{"nozzle", "Nozzle Fault"},
		{"jam", "Feeder Jam"},
		{"feeder", "Feeder Jam"},
	},
}

// IssueIntentTerms mark queries that ask about problems
var IssueIntentTerms = []string{"issue", "problem", "defect", "alert"}

// RecencyMarkers mark queries asking for the newest clips
var RecencyMarkers = []string{"latest", "most recent", "newest", "last"}

// TimeUnits following "last" turn it into a time window, not a recency marker
var TimeUnits = []string{"week", "weeks", "month", "months", "year", "years", "day", "days", "night", "hour", "hours", "minute", "minutes", "morning", "afternoon", "evening"}

// SingleItemNouns ask for exactly one clip
var SingleItemNouns = []string{"image", "picture", "photo", "snapshot", "frame"}

// MediaNouns never name a subject
var MediaNouns = []string{
	"image", "images", "picture", "pictures", "photo", "photos", "snapshot", "snapshots",
	"frame", "frames", "clip", "clips", "footage", "video", "videos", "camera", "one",
}
