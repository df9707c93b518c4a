// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"sync"

	"github.com/telekom/plover/pkg/checks"
)

//go:generate go tool moq -out db_moq.go . DB
type DB interface {
	// Save stores the result of a check run
	Save(result checks.ResultDTO)
	// Get returns the latest result of the check with the given name
	Get(check string) (result checks.Result, ok bool)
	// List returns the latest results of all checks
	List() map[string]checks.Result
}

var _ DB = (*InMemory)(nil)

// InMemory stores the latest result of every check in memory
type InMemory struct {
	data sync.Map
}

// NewInMemory creates a new in-memory database
func NewInMemory() *InMemory {
	return &InMemory{
		data: sync.Map{},
	}
}

func (i *InMemory) Save(result checks.ResultDTO) {
	i.data.Store(result.Name, result.Result)
}

func (i *InMemory) Get(check string) (checks.Result, bool) {
	tmp, ok := i.data.Load(check)
	if !ok {
		return checks.Result{}, false
	}
	result, ok := tmp.(*checks.Result)
	if !ok || result == nil {
		return checks.Result{}, false
	}
	return *result, true
}

func (i *InMemory) List() map[string]checks.Result {
	results := make(map[string]checks.Result)
	i.data.Range(func(key, value any) bool {
		name, ok := key.(string)
		if !ok {
			return true
		}
		result, ok := value.(*checks.Result)
		if !ok || result == nil {
			return true
		}
		results[name] = *result
		return true
	})
	return results
}
