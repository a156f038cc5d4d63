// Package importererror defines the error types shared by all importers.
package importererror

import "fmt"

// UnknownFormatError is returned when an account-type tag has no entry in the
// format catalog. There is nothing to retry; the caller passed a bad tag.
type UnknownFormatError struct {
	TypeTag string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown account format: %q", e.TypeTag)
}

// InvalidFormatError is returned when an input file does not conform to the
// shape an importer expects. Identify maps it to a false result; Extract
// surfaces it as a hard failure.
type InvalidFormatError struct {
	FilePath string
	Expected string
	Line     int
	Msg      string
}

func (e *InvalidFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid format in file '%s' at line %d: %s. Expected: %s",
			e.FilePath, e.Line, e.Msg, e.Expected)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.Expected)
}

// MalformedNumberError is returned when a numeric cell cannot be normalized.
// Extraction aborts entirely on this error so that no financial data is
// silently dropped.
type MalformedNumberError struct {
	Raw string
	Err error
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number %q: %v", e.Raw, e.Err)
}

func (e *MalformedNumberError) Unwrap() error {
	return e.Err
}

// DataExtractionError is returned when a required field cannot be extracted
// from a structurally valid file.
type DataExtractionError struct {
	FilePath string
	Field    string
	Value    string
	Err      error
}

func (e *DataExtractionError) Error() string {
	return fmt.Sprintf("%s: failed to extract %s='%s': %v",
		e.FilePath, e.Field, e.Value, e.Err)
}

func (e *DataExtractionError) Unwrap() error {
	return e.Err
}
