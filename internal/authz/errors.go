// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"errors"
	"fmt"
)

// Comm errors are returned by Handle when the actor cannot be reached or
// does not answer. Callers on the permission path must treat them as deny.
var (
	// ErrSendFailed means the actor has stopped and no longer accepts messages.
	ErrSendFailed = errors.New("authz: actor mailbox closed")

	// ErrNoReply means the actor dropped the request without answering.
	ErrNoReply = errors.New("authz: actor did not reply")
)

// Directory error classes, for use with errors.Is.
var (
	ErrDirectoryUnavailable = errors.New("directory unavailable")
	ErrDirectoryDecode      = errors.New("directory data malformed")
)

// DirectoryErrorKind classifies a directory fetch failure.
type DirectoryErrorKind int

const (
	// DirectoryUnavailable is a transient failure; the caller may retry.
	DirectoryUnavailable DirectoryErrorKind = iota
	// DirectoryDecode means stored role or user data could not be decoded.
	DirectoryDecode
)

// String returns the kind name used in logs and metric labels.
func (k DirectoryErrorKind) String() string {
	switch k {
	case DirectoryUnavailable:
		return "unavailable"
	case DirectoryDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// DirectoryError is returned by directory ports and by LoadPolicies.
type DirectoryError struct {
	Kind DirectoryErrorKind
	// Op names the failing operation, e.g. "find_all_roles".
	Op  string
	Err error
}

// Unavailable wraps err as a transient directory failure.
func Unavailable(op string, err error) *DirectoryError {
	return &DirectoryError{Kind: DirectoryUnavailable, Op: op, Err: err}
}

// Decode wraps err as a malformed-data directory failure.
func Decode(op string, err error) *DirectoryError {
	return &DirectoryError{Kind: DirectoryDecode, Op: op, Err: err}
}

func (e *DirectoryError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("directory %s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("directory %s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// Is matches ErrDirectoryUnavailable and ErrDirectoryDecode by kind.
func (e *DirectoryError) Is(target error) bool {
	switch target {
	case ErrDirectoryUnavailable:
		return e.Kind == DirectoryUnavailable
	case ErrDirectoryDecode:
		return e.Kind == DirectoryDecode
	}
	return false
}

// asDirectoryError classifies err, treating anything unclassified as Unavailable.
func asDirectoryError(op string, err error) *DirectoryError {
	var de *DirectoryError
	if errors.As(err, &de) {
		return de
	}
	return Unavailable(op, err)
}
