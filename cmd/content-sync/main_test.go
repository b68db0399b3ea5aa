// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"bytes"
	"testing"

	"github.com/MKhiriev/content-sync/internal/config"
	"github.com/MKhiriev/content-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Version(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Build version: N/A")
	assert.Contains(t, out.String(), "Build commit: N/A")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URI", "")
	t.Setenv("CONTENT_SYNC_REMOTE_URL", "")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--collections", "posts"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingDatabaseURI)
}

func TestRootCommand_RejectsArguments(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}

func TestPrintBuildInfo(t *testing.T) {
	var out bytes.Buffer
	printBuildInfo(&out, models.NewAppBuildInfo("1.2.3", "2026-01-01", "abc123"))

	assert.Equal(t, "Build version: 1.2.3\nBuild date: 2026-01-01\nBuild commit: abc123\n", out.String())
}
