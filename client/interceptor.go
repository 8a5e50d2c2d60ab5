// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// Interceptor wraps the HTTP round trip of every request.
type Interceptor func(ctx context.Context, req *http.Request, next Invoker) (*http.Response, error)

// Invoker represents the next handler in the interceptor chain.
type Invoker func(ctx context.Context, req *http.Request) (*http.Response, error)

// chainInterceptors chains interceptors so that the first one runs outermost.
func chainInterceptors(interceptors []Interceptor, invoker Invoker) Invoker {
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		next := invoker
		invoker = func(ctx context.Context, req *http.Request) (*http.Response, error) {
			return interceptor(ctx, req, next)
		}
	}
	return invoker
}

// HeaderInterceptor sets static headers on every request.
func HeaderInterceptor(headers map[string]string) Interceptor {
	return func(ctx context.Context, req *http.Request, next Invoker) (*http.Response, error) {
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		return next(ctx, req)
	}
}

// BearerTokenInterceptor authenticates every request with token.
func BearerTokenInterceptor(token string) Interceptor {
	return HeaderInterceptor(map[string]string{"Authorization": "Bearer " + token})
}

// LoggingInterceptor logs every round trip at debug level.
func LoggingInterceptor(logger *slog.Logger) Interceptor {
	return func(ctx context.Context, req *http.Request, next Invoker) (*http.Response, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		if err != nil {
			logger.DebugContext(ctx, "a2a request failed", slog.String("url", req.URL.String()), slog.Any("error", err))
			return resp, err
		}
		logger.DebugContext(ctx, "a2a request",
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, nil
	}
}

// RetryPolicy configures [RetryInterceptor].
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy retries three times with exponential backoff from 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
	}
}

// RetryInterceptor retries requests that failed in transit or were answered with 408, 429
// or a 5xx status. The request body is replayed through req.GetBody.
func RetryInterceptor(policy RetryPolicy) Interceptor {
	return func(ctx context.Context, req *http.Request, next Invoker) (*http.Response, error) {
		var (
			resp *http.Response
			err  error
		)
		for attempt := 0; attempt < max(policy.MaxAttempts, 1); attempt++ {
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(retryDelay(policy, attempt-1)):
				}
				if req.GetBody != nil {
					body, berr := req.GetBody()
					if berr != nil {
						return nil, berr
					}
					req.Body = body
				}
			}

			resp, err = next(ctx, req)
			if err == nil && !shouldRetry(resp.StatusCode) {
				return resp, nil
			}
			if attempt < policy.MaxAttempts-1 && resp != nil {
				resp.Body.Close()
			}
		}
		return resp, err
	}
}

func shouldRetry(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusRequestTimeout || statusCode == http.StatusTooManyRequests
}

func retryDelay(policy RetryPolicy, attempt int) time.Duration {
	return min(time.Duration(float64(policy.InitialDelay)*math.Pow(policy.Multiplier, float64(attempt))), policy.MaxDelay)
}
