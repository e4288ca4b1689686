package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/glaximini/internal/adapters/driven/config/file"
	"github.com/custodia-labs/glaximini/internal/adapters/driving/discovery"
	"github.com/custodia-labs/glaximini/internal/adapters/driving/mcp"
	"github.com/custodia-labs/glaximini/internal/adapters/driving/ws"
	"github.com/custodia-labs/glaximini/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the collaboration server",
	Long: `Serve accepts editor connections on /ws, keeps every open document in
memory and saves it when its last session leaves.

Also served:
  GET /documents               documents open right now
  GET /documents/{id}          document metadata
  GET /documents/{id}/lottie   Lottie JSON
  GET /documents/{id}/sticker  Telegram sticker (.tgs)
  /mcp                         MCP over streamable HTTP
  GET /healthz

Changes to [log] and [limits] in the config file apply without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveListen    string
	serveEphemeral bool
	serveMDNS      bool
)

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default [server] listen)")
	serveCmd.Flags().BoolVar(&serveEphemeral, "ephemeral", false, "keep documents in memory only")
	serveCmd.Flags().BoolVar(&serveMDNS, "mdns", false, "advertise the server on the local network")
	rootCmd.AddCommand(serveCmd)
}

func limitsOf(s file.Settings) ws.Limits {
	return ws.Limits{
		MessagesPerSecond: s.Limits.MessagesPerSecond,
		Burst:             s.Limits.Burst,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := settings
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = serveListen
	}
	if cmd.Flags().Changed("mdns") {
		cfg.Discovery.MDNS = serveMDNS
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cfg, serveEphemeral)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("closing store: %v", err)
		}
	}()

	server := ws.NewServer(a.hub, a.exports, ws.TrustingAuthenticator{}, limitsOf(cfg))
	mcpServer, err := mcp.NewServer(&mcp.Ports{Export: a.exports})
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/", server.Handler())
	mux.Handle("/mcp", mcpServer.Handler())

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Listen, err)
	}
	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	cmd.Printf("glaximini listening on %s\n", ln.Addr())
	if cfg.Server.PublicURL != "" {
		cmd.Printf("Public URL: %s\n", cfg.Server.PublicURL)
	}

	if cfg.Discovery.MDNS {
		adv, err := discovery.Advertise(cfg.Discovery.Instance, ln.Addr().String(), "path=/ws", "version="+version)
		if err != nil {
			logger.Warn("mDNS disabled: %v", err)
		} else {
			logger.Info("advertising %s on port %d", discovery.ServiceType, adv.Port())
			defer adv.Shutdown() //nolint:errcheck
		}
	}

	go watchSettings(ctx, server, settingsPath, verbose)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
	}

	return shutdown(httpServer, server, a, cfg.Server.ShutdownTimeout())
}

// shutdown stops accepting requests, disconnects every session and saves
// whatever documents are still open.
func shutdown(httpServer *http.Server, server *ws.Server, a *app, timeout time.Duration) error {
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	if err := server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}
	if err := a.registry.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("documents: %w", err))
	}
	return errors.Join(errs...)
}

// watchSettings applies config file changes to the running server.
func watchSettings(ctx context.Context, server *ws.Server, path string, forceVerbose bool) {
	if path == "" {
		return
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		logger.Debug("not watching %s: %v", path, err)
		return
	}

	err := file.Watch(ctx, path, func(s file.Settings) {
		if forceVerbose {
			s.Log.Verbose = true
		}
		logger.SetVerbose(s.Log.Verbose)
		server.SetLimits(limitsOf(s))
		logger.Info("applied settings from %s", path)
	})
	if err != nil {
		logger.Warn("config watcher stopped: %v", err)
	}
}
