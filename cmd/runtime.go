// ABOUTME: Shared setup for every command: config, logging, tracing, session, client
// ABOUTME: Maps run functions to exit codes and API failures to messages

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ptisa/inventory-admin/internal/client"
	"github.com/ptisa/inventory-admin/internal/config"
	"github.com/ptisa/inventory-admin/internal/logger"
	"github.com/ptisa/inventory-admin/internal/session"
	"github.com/ptisa/inventory-admin/internal/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Exit codes shared by all commands
const (
	exitOK    = 0
	exitAuth  = 1 // not signed in, session rejected, or credentials refused
	exitError = 2 // connectivity, invalid input, configuration
)

// logTarget selects where slog output goes
type logTarget int

const (
	logStderr logTarget = iota
	logFile             // the TUI owns the terminal
)

// runtime bundles what every command needs
type runtime struct {
	cfg    *config.Config
	sess   *session.Manager
	client *client.Client
}

// runFunc is the body of a command, returning its exit code
type runFunc func(ctx context.Context, w io.Writer, rt *runtime) int

func newRuntime(cfg *config.Config, store session.Store) *runtime {
	sess := session.NewManager(session.Options{
		Store:       store,
		IdleTimeout: cfg.IdleTimeout,
	})
	c := client.New(GetAPIURL(cfg),
		client.WithTokenSource(sess),
		client.WithTimeout(cfg.RequestTimeout),
	)
	return &runtime{cfg: cfg, sess: sess, client: c}
}

// execute runs fn with signal handling and exits with its code
func execute(cmd *cobra.Command, target logTarget, fn runFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx, cmd, target, fn)
	cancel()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func run(ctx context.Context, cmd *cobra.Command, target logTarget, fn runFunc) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return exitError
	}

	closeLog := func() error { return nil }
	if target == logFile {
		closeLog, err = logger.InitFile(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return exitError
		}
	} else {
		logger.Init(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	}
	defer closeLog()

	shutdown := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(flushCtx)
	}()

	rt := newRuntime(cfg, session.NewFileStore(cfg.ConfigDir))
	defer rt.sess.Close()

	ctx, span := telemetry.Tracer().Start(ctx, cmd.CommandPath())
	defer span.End()

	exitCode := fn(ctx, cmd.OutOrStdout(), rt)
	span.SetAttributes(attribute.Int("exit_code", exitCode))
	if exitCode != exitOK {
		span.SetStatus(codes.Error, "non-zero exit")
	}
	return exitCode
}

// requireSession restores the stored session and fails closed
func requireSession(w io.Writer, rt *runtime) bool {
	if err := rt.sess.Restore(); err != nil {
		fmt.Fprintf(w, "Session ended: %v\nRun 'inventory-admin login' to sign in again.\n", err)
		return false
	}
	if !rt.sess.Authenticated() {
		fmt.Fprintln(w, "Not signed in. Run 'inventory-admin login' first.")
		return false
	}
	return true
}

// reportAPIError prints a failed call and returns its exit code. A 401 ends
// the stored session.
func reportAPIError(w io.Writer, rt *runtime, err error) int {
	if errors.Is(err, client.ErrUnauthorized) {
		rt.sess.Reject()
		fmt.Fprintln(w, "Session rejected by the server. Run 'inventory-admin login' again.")
		return exitAuth
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitError
}
