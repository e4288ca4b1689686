package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/glaximini/internal/adapters/driving/tui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the documents open on a running server",
	Long: `Monitor shows a live table of the documents a server holds in memory,
with their session and shape counts.

When stdout is not a terminal a single snapshot is printed instead.

Controls:
  ↑/k, ↓/j - Move
  r        - Refresh now
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

var (
	monitorServer   string
	monitorInterval string
)

func init() {
	monitorCmd.Flags().StringVarP(&monitorServer, "server", "s", "", "server URL (default derived from [server])")
	monitorCmd.Flags().StringVarP(&monitorInterval, "interval", "i", "2s", "refresh interval")
	rootCmd.AddCommand(monitorCmd)
}

// serverURL picks the URL of the server to monitor.
func serverURL() string {
	if monitorServer != "" {
		return monitorServer
	}
	if settings.Server.PublicURL != "" {
		return settings.Server.PublicURL
	}
	listen := settings.Server.Listen
	if strings.HasPrefix(listen, ":") {
		listen = "localhost" + listen
	}
	return "http://" + listen
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	interval, err := parseInterval(monitorInterval)
	if err != nil {
		return err
	}

	url := serverURL()
	source := tui.NewHTTPSource(url)

	if f, ok := cmd.OutOrStdout().(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		docs, err := source.Documents(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		cmd.Print(tui.Snapshot(docs))
		return nil
	}

	return tui.Run(cmd.Context(), source, url, interval)
}
