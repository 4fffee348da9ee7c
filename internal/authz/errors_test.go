// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDirectoryError_Is(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name        string
		err         error
		unavailable bool
		decode      bool
	}{
		{"unavailable", Unavailable("find_all_roles", cause), true, false},
		{"decode", Decode("find_all_users", cause), false, true},
		{"wrapped unavailable", fmt.Errorf("reload: %w", Unavailable("find_all_roles", cause)), true, false},
		{"plain error", cause, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, ErrDirectoryUnavailable); got != tt.unavailable {
				t.Errorf("Is(ErrDirectoryUnavailable) = %v, want %v", got, tt.unavailable)
			}
			if got := errors.Is(tt.err, ErrDirectoryDecode); got != tt.decode {
				t.Errorf("Is(ErrDirectoryDecode) = %v, want %v", got, tt.decode)
			}
		})
	}
}

func TestDirectoryError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("disk full")
	err := Unavailable("find_all_roles", cause)

	if !errors.Is(err, cause) {
		t.Error("DirectoryError should unwrap to its cause")
	}
	msg := err.Error()
	for _, want := range []string{"find_all_roles", "disk full"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestDirectoryErrorKind_String(t *testing.T) {
	if DirectoryUnavailable.String() != "unavailable" {
		t.Errorf("DirectoryUnavailable.String() = %q", DirectoryUnavailable.String())
	}
	if DirectoryDecode.String() != "decode" {
		t.Errorf("DirectoryDecode.String() = %q", DirectoryDecode.String())
	}
	if DirectoryErrorKind(99).String() != "unknown" {
		t.Errorf("unknown kind String() = %q", DirectoryErrorKind(99).String())
	}
}

func TestAsDirectoryError(t *testing.T) {
	decode := Decode("find_all_roles", errors.New("bad json"))
	if got := asDirectoryError("reload", decode); got != decode {
		t.Errorf("asDirectoryError should keep an existing DirectoryError, got %+v", got)
	}

	got := asDirectoryError("find_all_users", errors.New("timeout"))
	if got.Kind != DirectoryUnavailable || got.Op != "find_all_users" {
		t.Errorf("asDirectoryError(plain) = %+v, want unavailable find_all_users", got)
	}
}

func TestCommErrors_Distinct(t *testing.T) {
	if errors.Is(ErrSendFailed, ErrNoReply) {
		t.Error("ErrSendFailed and ErrNoReply must be distinguishable")
	}
}
