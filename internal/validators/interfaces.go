// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks the collection descriptions of the local store
// before a sync run relies on them.
//
// Core concepts:
//   - Validator: generic interface validating a value. The optional names
//     restrict validation to the listed checks.
//
// Usage patterns:
//  1. Build a validator over the set of collections the local store defines.
//  2. Call Validate with a collection (or a list of them) and, optionally,
//     the checks to run.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named checks.
	Validate(context.Context, any, ...string) error
}
