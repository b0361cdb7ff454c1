// Package gfferrors is the error taxonomy shared by the ingest pipeline.
//
// Every error raised against a single record carries the 1-based input
// line number, so callers can point a user at the offending record.
// EmptyInputError and UnknownDialectFeature concern the input as a
// whole and carry no line number.
package gfferrors

import "fmt"

// MalformedLine is raised by the line parser when a record has the
// wrong number of fields or an unparseable coordinate.
type MalformedLine struct {
	Line   int
	Reason string
}

func (e *MalformedLine) Error() string {
	return fmt.Sprintf("gff: malformed line %d: %s", e.Line, e.Reason)
}

// InvalidAttributeToken is raised by the attribute parser when a
// token has no key/value separator but contains internal whitespace
// (under a dialect whose key/value separator is not a space). A
// separator-less token without whitespace is accepted as a key with
// an empty value list instead.
type InvalidAttributeToken struct {
	Line  int
	Token string
}

func (e *InvalidAttributeToken) Error() string {
	return fmt.Sprintf("gff: invalid attribute token on line %d: %q", e.Line, e.Token)
}

// DuplicateIDError is raised under merge_strategy=error when two
// records resolve to the same primary key.
type DuplicateIDError struct {
	Line int
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("gff: duplicate id %q on line %d", e.ID, e.Line)
}

// MergeConflictError is raised under merge_strategy=merge when two
// records sharing a primary key disagree on a non-attribute field.
type MergeConflictError struct {
	Line  int
	ID    string
	Field string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("gff: merge conflict for id %q on line %d: field %q disagrees", e.ID, e.Line, e.Field)
}

// EmptyInputError is raised when an ingest produced zero features.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "gff: no features found in input"
}

// UnknownDialectFeature is raised by the dialect inferencer when none
// of the probed lines casts a vote for any format, so no dialect field
// can be decided. Split votes are not an error: ties go to gff3.
type UnknownDialectFeature struct {
	Field string
}

func (e *UnknownDialectFeature) Error() string {
	return fmt.Sprintf("gff: could not infer dialect field %q: no majority among probed lines", e.Field)
}
