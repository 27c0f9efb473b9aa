package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/bakkerme/feedboard/internal/config"
	"github.com/bakkerme/feedboard/internal/core"
	"github.com/bakkerme/feedboard/internal/observability/otelx"
	"github.com/bakkerme/feedboard/internal/sources/feedjson/impl"
)

// runtime is the per-command process state.
type runtime struct {
	env       config.EnvConfig
	logger    *slog.Logger
	sessionID string
	shutdown  func(context.Context) error
}

// setup builds the logger and tracing and returns a context carrying both.
// Logs go to stderr so commands can write documents to stdout.
func setup(c *cli.Context) (context.Context, *runtime, error) {
	env := config.LoadEnv()
	logger := core.NewLogger(os.Stderr, env.LogLevel, env.LogFormat)
	slog.SetDefault(logger)

	sessionID := env.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	shutdown, err := otelx.Init(c.Context, logger, env.OTel, otelx.WithSession(sessionID), otelx.WithCommand(c.Command.Name))
	if err != nil {
		return nil, nil, err
	}

	ctx := core.WithSessionID(c.Context, sessionID)
	ctx = core.WithLogger(ctx, logger.With("session_id", sessionID, "command", c.Command.Name))
	return ctx, &runtime{env: env, logger: logger, sessionID: sessionID, shutdown: shutdown}, nil
}

func (r *runtime) close() {
	if err := r.shutdown(context.Background()); err != nil {
		r.logger.Warn("tracing shutdown failed", "error", err)
	}
}

func (r *runtime) fetcher(opts ...impl.Option) *impl.Fetcher {
	return impl.NewFetcher(r.env.HTTP.Timeout, r.env.HTTP.UserAgent, r.env.HTTP.Attempts, opts...)
}

// loadDocument reads the document named by --config.
func loadDocument(c *cli.Context) (*config.Document, error) {
	return config.Load(c.String("config"))
}

// loadOptionalDocument is loadDocument for commands that work without one.
func loadOptionalDocument(c *cli.Context) (*config.Document, error) {
	doc, err := loadDocument(c)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return doc, err
}
