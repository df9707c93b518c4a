// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter is the protocol used to export the traces
type Exporter string

const (
	// HTTP sends the traces to an otlp collector over http
	HTTP Exporter = "http"
	// GRPC sends the traces to an otlp collector over grpc
	GRPC Exporter = "grpc"
	// STDOUT prints the traces to stdout
	STDOUT Exporter = "stdout"
	// NOOP discards the traces
	NOOP Exporter = "noop"
)

// Validate validates the exporter
func (e Exporter) Validate() error {
	if _, ok := registry[e]; !ok {
		return fmt.Errorf("unsupported exporter %q", e)
	}
	return nil
}

// IsExporting returns true if the exporter sends traces to a collector
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

// String returns the string representation of the exporter
func (e Exporter) String() string {
	return string(e)
}

// Create creates a new span exporter for the configured protocol
func (e Exporter) Create(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	f, ok := registry[e]
	if !ok {
		return nil, fmt.Errorf("unsupported exporter %q", e)
	}
	return f(ctx, cfg)
}

type factory func(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error)

// registry maps the exporter to its factory
var registry = map[Exporter]factory{
	HTTP:   newHTTPExporter,
	GRPC:   newGRPCExporter,
	STDOUT: newStdoutExporter,
	NOOP:   newNoopExporter,
	// The empty exporter defaults to noop, so a bare config works
	Exporter(""): newNoopExporter,
}

func newHTTPExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Url),
		otlptracehttp.WithHeaders(headers(cfg)),
	}

	if cfg.TLS.Enabled {
		tlsCfg, err := tlsConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg))
	} else {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	return otlptracehttp.New(ctx, opts...)
}

func newGRPCExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Url),
		otlptracegrpc.WithHeaders(headers(cfg)),
	}

	if cfg.TLS.Enabled {
		tlsCfg, err := tlsConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsCfg)))
	} else {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	return otlptracegrpc.New(ctx, opts...)
}

func newStdoutExporter(_ context.Context, _ *Config) (sdktrace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func newNoopExporter(_ context.Context, _ *Config) (sdktrace.SpanExporter, error) {
	return nil, nil
}

// headers returns the authentication headers for the collector
func headers(cfg *Config) map[string]string {
	if cfg.Token == "" {
		return nil
	}
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", cfg.Token),
	}
}

// tlsConfig builds the tls configuration for the collector connection
func tlsConfig(cfg *Config) (*tls.Config, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	if cfg.TLS.CertPath != "" {
		pem, err := os.ReadFile(cfg.TLS.CertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read certificate %q: %w", cfg.TLS.CertPath, err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse certificate %q", cfg.TLS.CertPath)
		}
	}

	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
