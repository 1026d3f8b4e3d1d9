package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"codebase-ai/internal/app"
	"codebase-ai/internal/config"
	"codebase-ai/internal/mcp"
)

var (
	// Version is injected at build time
	Version = "dev"
	// ProgramName is injected at build time
	ProgramName = "codebase-mcp"
)

const (
	transportStdio = "stdio"
	transportHTTP  = "http"
)

func main() {
	if err := Execute(Version, ProgramName, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing.
func Execute(version, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Codebase MCP server",
		Long:         "Exposes ingest_codebase and ask_codebase as MCP tools over stdio or streamable HTTP.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.Flags(), version, cmd.ErrOrStderr())
		},
	}
	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	registerFlags(rootCmd.Flags())
	rootCmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func registerFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", transportStdio, "MCP transport: stdio or http")
	flags.String("addr", "127.0.0.1:8090", "listen address for the http transport")
}

type settings struct {
	transport string
	addr      string
}

func settingsFromFlags(flags *pflag.FlagSet) (settings, error) {
	transport, err := flags.GetString("transport")
	if err != nil {
		return settings{}, err
	}
	addr, err := flags.GetString("addr")
	if err != nil {
		return settings{}, err
	}

	switch transport {
	case transportStdio, transportHTTP:
	default:
		return settings{}, fmt.Errorf("invalid transport %q: must be %q or %q", transport, transportStdio, transportHTTP)
	}
	return settings{transport: transport, addr: addr}, nil
}

func run(ctx context.Context, flags *pflag.FlagSet, version string, logOut io.Writer) error {
	s, err := settingsFromFlags(flags)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// stdout belongs to the stdio transport
	slog.SetDefault(app.NewLogger(cfg, logOut))
	slog.Info("Starting codebase MCP server", "version", version, "transport", s.transport)

	a, err := app.New(cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("Failed to close resources", "error", err)
		}
	}()

	if err := a.ValidateEmbedder(ctx, cfg.VectorSize); err != nil {
		slog.Warn("Embedding client check failed; tool calls will report embedding errors", "error", err)
	}

	server := mcp.CreateServer(mcp.ServerConfig{
		Name:    ProgramName,
		Version: version,
		Service: a.Service,
	})

	if s.transport == transportStdio {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	return serveHTTP(ctx, server, s.addr)
}

func serveHTTP(ctx context.Context, server *sdkmcp.Server, addr string) error {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/mcp", mcp.NewHTTPHandler(server))

	srv := &nethttp.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening (HTTP)", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
