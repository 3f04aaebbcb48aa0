// internal/models/citizen.go
package models

import "time"

// CitizenStatus is the lifecycle state of a registry record.
type CitizenStatus string

const (
	// StatusEncoded marks a record that has been entered but not yet
	// verified. Every other status counts as a reference record.
	StatusEncoded CitizenStatus = "Encoded"
)

// CitizenRecord is the read-only projection of a registry row used by the
// duplicate scanner. Address codes are carried for display enrichment only
// and never participate in matching.
type CitizenRecord struct {
	ID            int64         `json:"id"`
	LastName      string        `json:"lastName"`
	FirstName     string        `json:"firstName"`
	MiddleName    *string       `json:"middleName,omitempty"`
	ExtensionName *string       `json:"extensionName,omitempty"`
	BirthDate     time.Time     `json:"birthDate"`
	Status        CitizenStatus `json:"status"`
	ProvinceCode  string        `json:"provinceCode"`
	LguCode       string        `json:"lguCode"`
	BarangayCode  string        `json:"barangayCode"`
}

// IsPending reports whether the record is still awaiting verification.
func (c CitizenRecord) IsPending() bool {
	return c.Status == StatusEncoded
}

// StatusFilter selects one of the two scan partitions.
type StatusFilter string

const (
	FilterPending   StatusFilter = "Encoded"
	FilterReference StatusFilter = "NotEncoded"
)
