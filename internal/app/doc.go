// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app implements the content-sync process lifecycle.
//
// It loads the local store description, opens the local storages and the
// remote reader, runs one sync and releases everything it opened.
package app
