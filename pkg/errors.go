package peakfinder

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}

// OutOfRangeError is returned when an index or crop window does not fit in a trace.
type OutOfRangeError struct {
	Op     string
	Value  int
	Length int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: value %d out of range for length %d", e.Op, e.Value, e.Length)
}

// InvalidParameterError represents a rejected analysis parameter.
type InvalidParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

// DegenerateInputError is returned when a trace carries no usable weight.
type DegenerateInputError struct {
	Op     string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Op, e.Reason)
}

// MissingMetadataError is returned when a trace cannot be assigned a channel, gain or pulse.
type MissingMetadataError struct {
	Source string
	Field  string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("missing %s in run metadata of %q", e.Field, e.Source)
}
