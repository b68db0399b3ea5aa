// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextKeyString(t *testing.T) {
	assert.Equal(t, "runID", RunIDCtxKey.String())
}

func TestGetRunIDFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		want   string
		wantOK bool
	}{
		{name: "set", ctx: WithRunID(context.Background(), "r1"), want: "r1", wantOK: true},
		{name: "missing", ctx: context.Background(), wantOK: false},
		{name: "empty", ctx: WithRunID(context.Background(), ""), wantOK: false},
		{name: "wrong type", ctx: context.WithValue(context.Background(), RunIDCtxKey, 42), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetRunIDFromContext(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunIDGenerator_GeneratesV7(t *testing.T) {
	g := NewRunIDGenerator()

	a, b := g.Generate(), g.Generate()

	require.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
