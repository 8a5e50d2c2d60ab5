// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	a2a "github.com/go-a2a/a2a-agent"
	"github.com/go-a2a/a2a-agent/client"
)

type sendOptions struct {
	contextID string
	taskID    string
	goal      string
	token     string
	stream    bool
	timeout   time.Duration
	verbose   bool
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send <agent-url> <text>...",
		Short: "Send a message to an A2A agent and print the result",
		Long: `Resolves the agent card from the well-known location under <agent-url> and sends
the text as a user message. Pass --task-id and --context-id to answer an
input-required task.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}

			card, err := client.NewCardResolver(nil).Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			var interceptors []client.Interceptor
			if opts.token != "" {
				interceptors = append(interceptors, client.BearerTokenInterceptor(opts.token))
			}
			if opts.verbose {
				logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
				interceptors = append(interceptors, client.LoggingInterceptor(logger))
			}
			interceptors = append(interceptors, client.RetryInterceptor(client.DefaultRetryPolicy()))

			c, err := client.NewFromCard(card, client.WithInterceptors(interceptors...))
			if err != nil {
				return err
			}

			msg := a2a.NewUserTextMessage(strings.Join(args[1:], " "), opts.contextID, opts.taskID)
			if opts.goal != "" {
				msg.Metadata = map[string]any{"goal": opts.goal}
			}
			params := &a2a.MessageSendParams{Message: *msg}

			out := cmd.OutOrStdout()
			if !opts.stream || !card.Capabilities.Streaming {
				ev, err := c.SendMessage(ctx, params)
				if err != nil {
					return err
				}
				printEvent(out, ev)
				return nil
			}

			results, err := c.SendStreamingMessage(ctx, params)
			if err != nil {
				return err
			}
			for r := range results {
				if r.Err != nil {
					return r.Err
				}
				printEvent(out, r.Event)
			}
			return ctx.Err()
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.contextID, "context-id", "", "conversation to continue")
	f.StringVar(&opts.taskID, "task-id", "", "input-required task to answer")
	f.StringVar(&opts.goal, "goal", "", "goal sent as message metadata")
	f.StringVar(&opts.token, "token", "", "bearer token for the agent")
	f.BoolVar(&opts.stream, "stream", false, "stream events when the agent supports it")
	f.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall request timeout, 0 to disable")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log HTTP round trips to stderr")
	return cmd
}

// printEvent writes one line per event: "<kind> <state> <task>/<context>: <text>".
func printEvent(w io.Writer, ev a2a.Event) {
	switch ev := ev.(type) {
	case *a2a.Message:
		fmt.Fprintf(w, "message %s: %s\n", ev.ContextID, ev.Text(" "))
	case *a2a.Task:
		fmt.Fprintf(w, "task %s %s/%s: %s\n", ev.Status.State, ev.ID, ev.ContextID, statusText(ev.Status))
	case *a2a.TaskStatusUpdateEvent:
		fmt.Fprintf(w, "status-update %s %s/%s: %s\n", ev.Status.State, ev.TaskID, ev.ContextID, statusText(ev.Status))
	}
}

func statusText(s a2a.TaskStatus) string {
	if s.Message == nil {
		return ""
	}
	return s.Message.Text(" ")
}
