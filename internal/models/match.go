// internal/models/match.go
package models

import "time"

// FieldScores holds the seven per-field results of one pending/reference
// comparison, rounded independently for display. NameScore and
// BirthDateScore are presentation aggregates and are not inputs to the
// weighted confidence score.
type FieldScores struct {
	LastName      int `json:"lastName"`
	FirstName     int `json:"firstName"`
	MiddleName    int `json:"middleName"`
	ExtensionName int `json:"extensionName"`
	BirthMonth    int `json:"birthMonth"`
	BirthDay      int `json:"birthDay"`
	BirthYear     int `json:"birthYear"`

	NameScore      int `json:"nameScore"`
	BirthDateScore int `json:"birthDateScore"`
}

// MatchCandidate is one pending/reference pair that crossed the confidence
// threshold. Candidates are ephemeral: they live only inside the scan
// snapshot that produced them.
type MatchCandidate struct {
	Pending    CitizenRecord `json:"pending"`
	Reference  CitizenRecord `json:"reference"`
	Confidence int           `json:"confidenceScore"`
	Fields     FieldScores   `json:"fieldScores"`
}

// ScanConfiguration carries the caller-tunable inputs of one scan.
// MinConfidence must be in [50, 95] in steps of 5.
type ScanConfiguration struct {
	MinConfidence int `json:"minConfidence"`
}

const (
	MinConfidenceFloor   = 50
	MinConfidenceCeiling = 95
	MinConfidenceStep    = 5
)

// Valid reports whether the threshold is inside the allowed range and on
// the allowed step.
func (c ScanConfiguration) Valid() bool {
	if c.MinConfidence < MinConfidenceFloor || c.MinConfidence > MinConfidenceCeiling {
		return false
	}
	return c.MinConfidence%MinConfidenceStep == 0
}

// ScanResult is the immutable snapshot produced by one completed scan.
// Candidates are ordered by confidence descending; ties keep the order in
// which the cross product produced them.
type ScanResult struct {
	ScanID         string           `json:"scanId"`
	MinConfidence  int              `json:"minConfidence"`
	Candidates     []MatchCandidate `json:"candidates"`
	PendingCount   int              `json:"pendingCount"`
	ReferenceCount int              `json:"referenceCount"`
	PairsCompared  int              `json:"pairsCompared"`
	SkippedRecords int              `json:"skippedRecords"`
	StartedAt      time.Time        `json:"startedAt"`
	Duration       time.Duration    `json:"durationMs"`
}

// MatchPage is one fixed-size window over a scan snapshot.
type MatchPage struct {
	ScanID     string           `json:"scanId"`
	PageIndex  int              `json:"pageIndex"`
	PageSize   int              `json:"pageSize"`
	TotalCount int              `json:"totalCount"`
	TotalPages int              `json:"totalPages"`
	Candidates []MatchCandidate `json:"candidates"`
}

// CandidateDetail is the read-only inspection view of a single candidate,
// with address codes resolved to display names.
type CandidateDetail struct {
	Candidate        MatchCandidate `json:"candidate"`
	PendingAddress   AddressDisplay `json:"pendingAddress"`
	ReferenceAddress AddressDisplay `json:"referenceAddress"`
}
