// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"github.com/go-a2a/a2a-agent/agent"
	"github.com/go-a2a/a2a-agent/config"
	"github.com/go-a2a/a2a-agent/contextstore"
	"github.com/go-a2a/a2a-agent/reasoning"
	"github.com/go-a2a/a2a-agent/reasoning/openai"
	"github.com/go-a2a/a2a-agent/server"
	"github.com/go-a2a/a2a-agent/server/event"
	"github.com/go-a2a/a2a-agent/server/handler"
	"github.com/go-a2a/a2a-agent/server/task"
	"github.com/go-a2a/a2a-agent/tool"
	"github.com/go-a2a/a2a-agent/workflow"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the A2A server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config:\n%w", err)
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// serve runs the agent until ctx is done, then waits for running executions within the
// configured shutdown timeout.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		h, shutdown, err := setupMetrics()
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("shutdown meter provider", slog.Any("error", err))
			}
		}()
		metricsHandler = h
	}

	store, err := openTaskStore(ctx, cfg.TaskStore)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("close task store", slog.Any("error", err))
		}
	}()

	executor, err := newExecutor(cfg, logger)
	if err != nil {
		return err
	}

	handlerOpts := []handler.Option{
		handler.WithLogger(logger),
		handler.WithQueueSize(cfg.Server.QueueSize),
	}
	if cfg.Events.NATSURL != "" {
		nc, err := event.Connect(cfg.Events.NATSURL)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("drain nats connection", slog.Any("error", err))
			}
		}()
		handlerOpts = append(handlerOpts, handler.WithBusDecorator(func(next event.Bus) event.Bus {
			return event.NewNATSMirror(next, nc, cfg.Events.SubjectPrefix, logger)
		}))
	}
	rh := handler.NewDefaultRequestHandler(executor, store, handlerOpts...)

	card, err := cfg.AgentCard()
	if err != nil {
		return err
	}
	srvOpts := []server.Option{server.WithLogger(logger)}
	if metricsHandler != nil {
		srvOpts = append(srvOpts, server.WithMetricsHandler(metricsHandler))
	}
	srv, err := server.New(card, rh, srvOpts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := rh.Shutdown(shutdownCtx); err != nil {
			logger.Warn("executions still running at shutdown", slog.Any("error", err))
		}
		return nil
	})
	return g.Wait()
}

// setupMetrics installs a global meter provider exporting to a private Prometheus registry.
func setupMetrics() (http.Handler, func(context.Context) error, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), provider.Shutdown, nil
}

func openTaskStore(ctx context.Context, cfg config.TaskStoreConfig) (task.TaskStore, error) {
	if cfg.Driver != config.DriverSQLite {
		return task.NewInMemoryTaskStore(), nil
	}

	db, err := task.OpenSQLite(cfg.DSN)
	if err != nil {
		return nil, err
	}
	store, err := task.NewDatabaseTaskStore(ctx, task.DatabaseTaskStoreConfig{DB: db, CreateTable: true})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newExecutor(cfg *config.Config, logger *slog.Logger) (*agent.Executor, error) {
	fields, err := cfg.Fields()
	if err != nil {
		return nil, err
	}

	invOpts := []workflow.Option{
		workflow.WithLogger(logger),
		workflow.WithTimeout(cfg.Workflow.Timeout),
		workflow.WithMaxResponseSize(cfg.Workflow.MaxResponseSize),
		workflow.WithRateLimit(cfg.Workflow.RateLimit, cfg.Workflow.RateBurst),
	}
	if cfg.Workflow.HeaderName != "" {
		invOpts = append(invOpts, workflow.WithHeader(cfg.Workflow.HeaderName, cfg.Workflow.HeaderValue))
	}
	if jwt := cfg.JWT(); jwt != nil {
		invOpts = append(invOpts, workflow.WithJWT(*jwt))
	}
	wf := tool.NewWorkflow(workflow.New(invOpts...), cfg.Workflow.URL, fields, logger)

	var prompt *reasoning.PromptTemplate
	if cfg.Reasoning.SystemPrompt != "" {
		if prompt, err = reasoning.ParsePromptTemplate(cfg.Reasoning.SystemPrompt); err != nil {
			return nil, err
		}
	}
	reasoner, err := openai.NewFromAPIKey(cfg.Reasoning.APIKey, cfg.Reasoning.BaseURL, openai.Options{
		Model:         cfg.Reasoning.Model,
		Temperature:   cfg.Reasoning.Temperature,
		MaxToolRounds: cfg.Reasoning.MaxToolRounds,
		Prompt:        prompt,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("reasoning: %w", err)
	}

	var history contextstore.Store = contextstore.NewMemoryStore()
	if n := cfg.ContextStore.MaxContexts; n > 0 {
		lru, err := contextstore.NewLRUStore(n)
		if err != nil {
			return nil, err
		}
		history = lru
	}

	return agent.New(reasoner,
		agent.WithLogger(logger),
		agent.WithContextStore(history),
		agent.WithTools(wf),
		agent.WithWebhookURL(cfg.Workflow.URL),
		agent.WithInputFields(fields),
		agent.WithDefaultGoal(cfg.Goal),
	), nil
}
