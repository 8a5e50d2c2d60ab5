// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Option represents an option for configuring the [Invoker].
type Option func(*Invoker)

// WithHTTPClient sets the [*http.Client] used for workflow calls.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Invoker) {
		if c != nil {
			i.client = c
		}
	}
}

// WithLogger sets the [*slog.Logger] for the [Invoker].
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		i.logger = logger
	}
}

// WithTracer sets the [trace.Tracer] for the [Invoker].
func WithTracer(tracer trace.Tracer) Option {
	return func(i *Invoker) {
		i.tracer = tracer
	}
}

// WithMeter sets the [metric.Meter] the [Invoker] records request metrics with.
func WithMeter(meter metric.Meter) Option {
	return func(i *Invoker) {
		i.meter = meter
	}
}

// WithTimeout bounds each workflow call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) {
		i.timeout = d
	}
}

// WithMaxResponseSize bounds how many bytes of a workflow response are accepted.
// Non-positive values keep [DefaultMaxResponseSize].
func WithMaxResponseSize(n int64) Option {
	return func(i *Invoker) {
		if n > 0 {
			i.maxBody = n
		}
	}
}

// WithRateLimit limits outbound calls to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(i *Invoker) {
		if r <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		i.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithHeader adds a static header to every workflow call, e.g. for header auth.
func WithHeader(key, value string) Option {
	return func(i *Invoker) {
		i.header.Add(key, value)
	}
}

// WithJWT signs every workflow call with an HS256 bearer token.
// An invalid config (empty secret) is ignored; use [ValidateJWTConfig] to check it up front.
func WithJWT(cfg JWTConfig) Option {
	return func(i *Invoker) {
		s, err := newJWTSigner(cfg)
		if err != nil {
			i.logger.Warn("ignoring workflow jwt config", slog.Any("error", err))
			return
		}
		i.signer = s
	}
}

// ValidateJWTConfig reports whether cfg can be used to sign requests.
func ValidateJWTConfig(cfg JWTConfig) error {
	_, err := newJWTSigner(cfg)
	return err
}
