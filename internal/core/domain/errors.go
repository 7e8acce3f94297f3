package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Precondition Errors.

	// ErrToolMissing indicates the mirroring tool could not be invoked at all.
	ErrToolMissing = errors.New("mirroring tool missing")

	// ErrToolVersionUnparseable indicates the tool's version output had no version in it.
	ErrToolVersionUnparseable = errors.New("mirroring tool version unparseable")

	// ErrToolTooOld indicates the installed tool is older than the required minimum.
	ErrToolTooOld = errors.New("mirroring tool too old")

	// Mirror Errors.

	// ErrMirrorSyncFailed indicates a clone or pull step failed.
	ErrMirrorSyncFailed = errors.New("mirror sync failed")

	// ErrMirrorMissing indicates an offline run found no populated mirror.
	ErrMirrorMissing = errors.New("mirror missing")

	// Loading Errors.

	// ErrInvalidReferenceData indicates the reference document lacks a required key.
	ErrInvalidReferenceData = errors.New("invalid reference data")

	// ErrDuplicateReferenceID indicates two entities of one collection share an ID.
	ErrDuplicateReferenceID = errors.New("duplicate reference id")

	// ErrRecordParseFailed indicates a per-record file could not be decoded.
	ErrRecordParseFailed = errors.New("record parse failed")

	// Merge Errors.

	// ErrUnresolvedConnectionType indicates a ConnectionTypeID with no table entry.
	ErrUnresolvedConnectionType = errors.New("unresolved connection type")

	// ErrUnresolvedCountry indicates a CountryID with no table entry.
	ErrUnresolvedCountry = errors.New("unresolved country")

	// ErrUnresolvedOperator indicates an OperatorID with no table entry.
	ErrUnresolvedOperator = errors.New("unresolved operator")

	// Collaborator Errors.

	// ErrAmbiguousOrMissingDownloadLink indicates a landing page did not yield exactly one link.
	ErrAmbiguousOrMissingDownloadLink = errors.New("ambiguous or missing download link")
)

// MirrorSyncError records which synchronisation step failed.
type MirrorSyncError struct {
	Step string
	Err  error
}

func (e *MirrorSyncError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMirrorSyncFailed, e.Step, e.Err)
}

// Unwrap returns the underlying tool error.
func (e *MirrorSyncError) Unwrap() error { return e.Err }

// Is reports a match against ErrMirrorSyncFailed.
func (e *MirrorSyncError) Is(target error) bool { return target == ErrMirrorSyncFailed }

// DuplicateReferenceIDError names the collection and ID that collided.
type DuplicateReferenceIDError struct {
	Collection string
	ID         int
}

func (e *DuplicateReferenceIDError) Error() string {
	return fmt.Sprintf("%s: %s ID %d", ErrDuplicateReferenceID, e.Collection, e.ID)
}

// Is reports a match against ErrDuplicateReferenceID.
func (e *DuplicateReferenceIDError) Is(target error) bool { return target == ErrDuplicateReferenceID }

// RecordParseError names the file that failed to decode.
type RecordParseError struct {
	File string
	Err  error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRecordParseFailed, e.File, e.Err)
}

// Unwrap returns the decode error.
func (e *RecordParseError) Unwrap() error { return e.Err }

// Is reports a match against ErrRecordParseFailed.
func (e *RecordParseError) Is(target error) bool { return target == ErrRecordParseFailed }

// UnresolvedReferenceError names a present reference ID that matched no table entry.
// Origin is the file the record came from.
type UnresolvedReferenceError struct {
	Kind   ReferenceKind
	ID     int
	Origin string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Origin == "" {
		return fmt.Sprintf("%s: ID %d", e.Kind.sentinel(), e.ID)
	}
	return fmt.Sprintf("%s: ID %d (in %s)", e.Kind.sentinel(), e.ID, e.Origin)
}

// Is reports a match against the sentinel for the reference kind.
func (e *UnresolvedReferenceError) Is(target error) bool {
	return target == e.Kind.sentinel()
}
