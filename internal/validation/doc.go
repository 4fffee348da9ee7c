// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package validation provides struct validation using go-playground/validator v10.

A single validator instance is shared process-wide; it caches struct
metadata and is safe for concurrent use. Failures are translated into
RequestValidationError, whose ToAPIError produces the VALIDATION_ERROR
envelope used by the HTTP API.

Custom tags:

  - httpmethod: an HTTP method token (letters only) or "*"
  - rolename: 1-64 characters of letters, digits, '-', '_' or '.'

Usage:

	if verr := validation.ValidateStruct(&role); verr != nil {
		apiErr := verr.ToAPIError()
		middleware.WriteError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
*/
package validation
