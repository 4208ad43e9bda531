// Package bootstrap wires a configuration to a running worker: it builds the
// engine and connects a client to an in-process, spawned or remote worker.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"textchecker/internal/channel"
	"textchecker/internal/client"
	"textchecker/internal/config"
	"textchecker/internal/engine"
	"textchecker/internal/lint"
	"textchecker/internal/logging"
	"textchecker/internal/worker"
)

const pipeBuffer = 16

// Engine builds the configured lint engine behind a result cache.
func Engine(cfg *config.Config) (engine.Engine, error) {
	e, err := lint.New(lint.Options{Rules: cfg.Rules, Homepage: cfg.Homepage})
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return e, nil
	}
	return engine.Cached(e, cfg.CacheSize)
}

// Connect returns a client for the worker cfg selects: a remote worker when
// WorkerURL is set, a subprocess when Spawn is set, and otherwise a worker
// goroutine that lives until ctx is done.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*client.Client, error) {
	codec, err := channel.CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	log := logging.Component(logger, "bootstrap")

	var conn channel.HostConn
	switch {
	case cfg.WorkerURL != "":
		conn, err = channel.Dial(ctx, cfg.WorkerURL, codec)
		if err != nil {
			return nil, err
		}
		log.Debug("connected to remote worker", "url", cfg.WorkerURL, "codec", codec.Name())

	case cfg.Spawn:
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate executable: %w", err)
		}
		conn, err = channel.Spawn(ctx, codec, exe, WorkerArgs(cfg)...)
		if err != nil {
			return nil, err
		}
		log.Debug("spawned worker", "path", exe, "codec", codec.Name())

	default:
		e, err := Engine(cfg)
		if err != nil {
			return nil, err
		}
		host, workerConn := channel.Pipe(pipeBuffer)
		handler := worker.NewHandler(e, logger)
		go func() {
			if err := handler.Serve(ctx, workerConn); err != nil && ctx.Err() == nil {
				log.Error("worker stopped", "error", err)
			}
			_ = workerConn.Close()
		}()
		conn = host
	}

	return client.New(conn, client.WithLogger(logger)), nil
}

// WorkerArgs are the arguments that make this binary serve one worker on its stdio.
func WorkerArgs(cfg *config.Config) []string {
	args := []string{"worker", "--stdio", "--codec", cfg.Codec, "--log-level", cfg.Log.Level}
	if cfg.File != "" {
		args = append(args, "--config", cfg.File)
	}
	return args
}
