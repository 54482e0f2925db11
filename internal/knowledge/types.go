package knowledge

import (
	"unicode/utf8"
)

// DefaultTopN is the result limit used by callers that have no preference.
const DefaultTopN = 5

// RecordID identifies a stored record. IDs are assigned by the backend,
// strictly increase with insertion order and are never reused.
type RecordID int64

// Record is a single knowledge entry.
type Record struct {
	ID       RecordID `json:"id"`
	Tag      string   `json:"tag"`
	Contents string   `json:"contents"`
}

// AddRequest carries the fields of a new record.
//
// Nil pointers mean the field was not supplied (for example a JSON null or a
// missing key) and are rejected. Empty strings are valid.
type AddRequest struct {
	Tag      *string `json:"tag"`
	Contents *string `json:"contents"`
}

// Validate checks that both fields are present and hold valid UTF-8 text.
func (r AddRequest) Validate() error {
	if err := validateField("tag", r.Tag); err != nil {
		return err
	}
	return validateField("contents", r.Contents)
}

func validateField(name string, v *string) error {
	if v == nil {
		return &ValidationError{Field: name, Reason: "is required"}
	}
	if !utf8.ValidString(*v) {
		return &ValidationError{Field: name, Reason: "contains invalid UTF-8"}
	}
	return nil
}

// copyRecords returns a slice that shares no backing array with records.
func copyRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
