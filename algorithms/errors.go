package algorithms

import "fmt"

// Algorithm family names used in error reporting.
const (
	FamilyCompression = "compression"
	FamilyEncoding    = "encoding"
	FamilyChecksum    = "checksum"
)

// UnsupportedAlgorithmError is returned when an identifier does not
// resolve to a member of its algorithm family.
type UnsupportedAlgorithmError struct {
	Family string
	Value  string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported %s algorithm: %q", e.Family, e.Value)
}
