package file

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// Settings is the full server configuration.
type Settings struct {
	Server    ServerSettings    `toml:"server" envPrefix:"SERVER_"`
	Storage   StorageSettings   `toml:"storage" envPrefix:"STORAGE_"`
	Document  DocumentSettings  `toml:"document" envPrefix:"DOCUMENT_"`
	Log       LogSettings       `toml:"log" envPrefix:"LOG_"`
	Limits    LimitSettings     `toml:"limits" envPrefix:"LIMITS_"`
	Discovery DiscoverySettings `toml:"discovery" envPrefix:"DISCOVERY_"`
	MCP       MCPSettings       `toml:"mcp" envPrefix:"MCP_"`
}

// ServerSettings configures the websocket server.
type ServerSettings struct {
	// Listen is the host:port of the HTTP listener.
	Listen string `toml:"listen" env:"LISTEN"`
	// PublicURL is the externally reachable base URL, used in logs and mDNS.
	PublicURL string `toml:"public_url" env:"PUBLIC_URL"`
	// IDSalt salts public document ids. Empty means the built-in salt.
	IDSalt string `toml:"id_salt" env:"ID_SALT"`
	// ShutdownSeconds bounds the final save of open documents.
	ShutdownSeconds int `toml:"shutdown_seconds" env:"SHUTDOWN_SECONDS"`
}

// StorageSettings configures the SQLite store.
type StorageSettings struct {
	// DataDir holds glaximini.db. Empty means ~/.glaximini/data.
	DataDir string `toml:"data_dir" env:"DATA_DIR"`
}

// DocumentSettings are the timeline parameters of new documents.
type DocumentSettings struct {
	Width    int     `toml:"width" env:"WIDTH"`
	Height   int     `toml:"height" env:"HEIGHT"`
	FPS      float64 `toml:"fps" env:"FPS"`
	Duration float64 `toml:"duration" env:"DURATION"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Verbose bool `toml:"verbose" env:"VERBOSE"`
}

// LimitSettings throttles inbound messages per connection.
type LimitSettings struct {
	MessagesPerSecond float64 `toml:"messages_per_second" env:"MESSAGES_PER_SECOND"`
	Burst             int     `toml:"burst" env:"BURST"`
}

// DiscoverySettings configures LAN advertisement.
type DiscoverySettings struct {
	MDNS     bool   `toml:"mdns" env:"MDNS"`
	Instance string `toml:"instance" env:"INSTANCE"`
}

// MCPSettings configures the MCP server.
type MCPSettings struct {
	// Listen serves MCP over streamable HTTP when set, stdio otherwise.
	Listen string `toml:"listen" env:"LISTEN"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	tl := domain.DefaultTimeline()
	return Settings{
		Server: ServerSettings{
			Listen:          ":8080",
			ShutdownSeconds: 10,
		},
		Document: DocumentSettings{
			Width:    tl.Width,
			Height:   tl.Height,
			FPS:      tl.FPS,
			Duration: tl.Duration,
		},
		Limits: LimitSettings{
			MessagesPerSecond: 60,
			Burst:             120,
		},
		Discovery: DiscoverySettings{
			Instance: "glaximini",
		},
	}
}

// ShutdownTimeout returns ShutdownSeconds as a duration, 10s when unset.
func (s ServerSettings) ShutdownTimeout() time.Duration {
	if s.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.ShutdownSeconds) * time.Second
}

// Timeline converts the document settings for new documents.
func (d DocumentSettings) Timeline() domain.Timeline {
	tl := domain.DefaultTimeline()
	tl.Width = d.Width
	tl.Height = d.Height
	tl.FPS = d.FPS
	tl.Duration = d.Duration
	return tl
}

// Validate reports every invalid value at once.
func (s Settings) Validate() error {
	var errs []error
	if s.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is empty"))
	}
	if s.Document.Width <= 0 || s.Document.Height <= 0 {
		errs = append(errs, fmt.Errorf("document size %dx%d must be positive", s.Document.Width, s.Document.Height))
	}
	if s.Document.FPS <= 0 {
		errs = append(errs, fmt.Errorf("document.fps %v must be positive", s.Document.FPS))
	}
	if s.Document.Duration <= 0 {
		errs = append(errs, fmt.Errorf("document.duration %v must be positive", s.Document.Duration))
	}
	if s.Server.ShutdownSeconds < 0 {
		errs = append(errs, errors.New("server.shutdown_seconds must not be negative"))
	}
	if s.Limits.MessagesPerSecond < 0 || s.Limits.Burst < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
