// internal/models/address.go
package models

// AddressKind selects one level of the address hierarchy.
type AddressKind string

const (
	AddressProvince AddressKind = "province"
	AddressLgu      AddressKind = "lgu"
	AddressBarangay AddressKind = "barangay"
)

// AddressDisplay holds the resolved display names for one record's address
// codes. Unresolved codes fall back to the raw code.
type AddressDisplay struct {
	Province string `json:"province"`
	Lgu      string `json:"lgu"`
	Barangay string `json:"barangay"`
}
