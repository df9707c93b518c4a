// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/plover/internal/helper"
	"github.com/telekom/plover/pkg/checks/connectivity"
	"github.com/telekom/plover/pkg/checks/runtime"
	"gopkg.in/yaml.v3"
)

const testLoaderURL = "https://api.example.com/runtime"

func newHTTPTestLoader(t *testing.T, cRuntime chan runtime.Config) *HttpLoader {
	t.Helper()
	return NewHttpLoader(&Config{
		Loader: LoaderConfig{
			Type: "http",
			Http: HttpLoaderConfig{
				Url:      testLoaderURL,
				Token:    "my-loader-token",
				Timeout:  time.Second,
				RetryCfg: helper.RetryConfig{Count: 2, Delay: time.Millisecond},
			},
		},
	}, cRuntime)
}

func TestHttpLoader_getRuntimeConfig(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	want := runtime.Config{
		Connectivity: &connectivity.Config{
			Peers:    []connectivity.Peer{{Host: "10.0.0.5", Port: 6112, Identifier: "abc123"}},
			Interval: 10 * time.Second,
		},
	}
	body, err := yaml.Marshal(want)
	require.NoError(t, err)

	httpmock.RegisterResponder(http.MethodGet, testLoaderURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer my-loader-token", req.Header.Get("Authorization"))
			return httpmock.NewBytesResponse(http.StatusOK, body), nil
		},
	)

	h := newHTTPTestLoader(t, make(chan runtime.Config, 1))
	got, err := h.getRuntimeConfig(t.Context())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestHttpLoader_getRuntimeConfig_Failures(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{
			name:      "unexpected status code",
			responder: httpmock.NewStringResponder(http.StatusInternalServerError, "boom"),
		},
		{
			name:      "request error",
			responder: httpmock.NewErrorResponder(fmt.Errorf("connection refused")),
		},
		{
			name:      "malformed body",
			responder: httpmock.NewStringResponder(http.StatusOK, "this is not valid yaml: ["),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder(http.MethodGet, testLoaderURL, tt.responder)

			h := newHTTPTestLoader(t, make(chan runtime.Config, 1))
			_, err := h.getRuntimeConfig(t.Context())
			assert.Error(t, err)
		})
	}
}

func TestHttpLoader_Run(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	want := runtime.Config{
		Connectivity: &connectivity.Config{
			Peers:    []connectivity.Peer{{Host: "10.0.0.5", Port: 6112}},
			Interval: 10 * time.Second,
		},
	}
	body, err := yaml.Marshal(want)
	require.NoError(t, err)
	httpmock.RegisterResponder(http.MethodGet, testLoaderURL, httpmock.NewBytesResponder(http.StatusOK, body))

	// Keep slack in the channel so periodic pushes cannot block the loader
	// before the shutdown signal arrives.
	cRuntime := make(chan runtime.Config, 10)
	h := newHTTPTestLoader(t, cRuntime)
	h.config.Interval = 100 * time.Millisecond

	cErr := make(chan error, 1)
	go func() {
		cErr <- h.Run(t.Context())
	}()

	select {
	case got := <-cRuntime:
		assert.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for runtime config")
	}

	h.Shutdown(t.Context())
	require.NoError(t, <-cErr)
}

func TestNewLoader(t *testing.T) {
	cRuntime := make(chan runtime.Config, 1)

	httpCfg := &Config{Loader: LoaderConfig{Type: "http", Http: HttpLoaderConfig{Url: testLoaderURL}}}
	if _, ok := NewLoader(httpCfg, cRuntime).(*HttpLoader); !ok {
		t.Error("expected a http loader")
	}

	fileCfg := &Config{Loader: LoaderConfig{Type: "file", File: FileLoaderConfig{Path: "config.yaml"}}}
	if _, ok := NewLoader(fileCfg, cRuntime).(*FileLoader); !ok {
		t.Error("expected a file loader")
	}
}
