// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/plover/pkg/checks"
)

func TestInMemory_SaveAndGet(t *testing.T) {
	db := NewInMemory()

	_, ok := db.Get("connectivity")
	assert.False(t, ok, "empty database should not return a result")

	want := checks.Result{Data: "data", Timestamp: time.Now()}
	db.Save(checks.ResultDTO{Name: "connectivity", Result: &want})

	got, ok := db.Get("connectivity")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestInMemory_SaveOverwrites(t *testing.T) {
	db := NewInMemory()
	db.Save(checks.ResultDTO{Name: "health", Result: &checks.Result{Data: "old"}})
	db.Save(checks.ResultDTO{Name: "health", Result: &checks.Result{Data: "new"}})

	got, ok := db.Get("health")
	require.True(t, ok)
	assert.Equal(t, "new", got.Data)
}

func TestInMemory_List(t *testing.T) {
	db := NewInMemory()
	db.Save(checks.ResultDTO{Name: "health", Result: &checks.Result{Data: "healthy"}})
	db.Save(checks.ResultDTO{Name: "connectivity", Result: &checks.Result{Data: "public"}})

	got := db.List()
	assert.Len(t, got, 2)
	assert.Contains(t, got, "health")
	assert.Contains(t, got, "connectivity")
}
