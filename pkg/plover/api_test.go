// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package plover

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/plover/pkg/checks"
	"github.com/telekom/plover/pkg/db"
)

func TestPlover_HandleCheckResult(t *testing.T) {
	dbase := db.NewInMemory()
	dbase.Save(checks.ResultDTO{
		Name:   "connectivity",
		Result: &checks.Result{Data: map[string]string{"10.0.0.5:6112": "PUBLIC"}, Timestamp: time.Now()},
	})

	p := &Plover{db: dbase}
	router := chi.NewRouter()
	router.Get("/v1/checks/{check}", p.handleCheckResult)

	t.Run("known check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/checks/connectivity", http.NoBody))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "PUBLIC")
	})

	t.Run("unknown check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/checks/unknown", http.NoBody))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPlover_HandleOpenAPI(t *testing.T) {
	cc := newTestController(t, db.NewInMemory())
	cc.Reconcile(t.Context(), testRuntimeConfig())
	p := &Plover{controller: cc}

	t.Run("yaml per default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		p.handleOpenAPI(rec, httptest.NewRequest(http.MethodGet, "/openapi", http.NoBody))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/yaml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "/v1/checks/connectivity")
	})

	t.Run("json on accept header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/openapi", http.NoBody)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		p.handleOpenAPI(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "/v1/checks/connectivity")
	})
}
