// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("remote unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInternalServerError = errors.New("internal server error")
	// ErrRemoteRequest covers every other non-2xx response.
	ErrRemoteRequest = errors.New("remote request failed")

	ErrInvalidBaseURL = errors.New("invalid remote base url")
)
