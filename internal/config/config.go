// Package config loads station settings from an HCL file
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/pokeriot/station/internal/menu"
	"github.com/pokeriot/station/internal/session"
)

// Config represents the complete station configuration
type Config struct {
	Server  ServerSettings
	Table   TableSettings
	Station StationSettings
	Reader  ReaderSettings
	UI      UISettings
}

// fileConfig mirrors Config with every block optional
type fileConfig struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Table   *TableSettings   `hcl:"table,block"`
	Station *StationSettings `hcl:"station,block"`
	Reader  *ReaderSettings  `hcl:"reader,block"`
	UI      *UISettings      `hcl:"ui,block"`
}

// ServerSettings locates the backend
type ServerSettings struct {
	Host              string `hcl:"host,optional"`
	Port              int    `hcl:"port,optional"`
	Path              string `hcl:"path,optional"`
	Secure            bool   `hcl:"secure,optional"`
	ReconnectInterval int    `hcl:"reconnect_interval,optional"` // seconds
	ConnectTimeout    int    `hcl:"connect_timeout,optional"`    // seconds
	BootTimeout       int    `hcl:"boot_timeout,optional"`       // seconds
}

// TableSettings holds the betting rules the menu enforces locally
type TableSettings struct {
	Actions        []string `hcl:"actions,optional"`
	MinBet         int      `hcl:"min_bet,optional"`
	BetStep        int      `hcl:"bet_step,optional"`
	MinRaise       int      `hcl:"min_raise,optional"`
	InitialBalance int      `hcl:"initial_balance,optional"`
	RoundReset     string   `hcl:"round_reset,optional"`
}

// StationSettings tunes the control loop (all values in milliseconds)
type StationSettings struct {
	TickInterval     int `hcl:"tick_interval,optional"`
	Debounce         int `hcl:"debounce,optional"`
	NoticeDuration   int `hcl:"notice_duration,optional"`
	RegisterCooldown int `hcl:"register_cooldown,optional"`
}

// ReaderSettings selects the card reader
type ReaderSettings struct {
	Type   string `hcl:"type,optional"`
	Device string `hcl:"device,optional"`
	Baud   int    `hcl:"baud,optional"`
}

// UISettings contains logging settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// DefaultConfig returns default station configuration
func DefaultConfig() *Config {
	m := menu.DefaultConfig()
	return &Config{
		Server: ServerSettings{
			Host:              "localhost",
			Port:              3000,
			Path:              "/",
			ReconnectInterval: 5,
			ConnectTimeout:    10,
			BootTimeout:       30,
		},
		Table: TableSettings{
			Actions:        m.Actions,
			MinBet:         m.MinBet,
			BetStep:        m.BetStep,
			MinRaise:       m.MinRaise,
			InitialBalance: 9999,
			RoundReset:     string(session.Continuity),
		},
		Station: StationSettings{
			TickInterval:     50,
			Debounce:         200,
			NoticeDuration:   1500,
			RegisterCooldown: 3000,
		},
		Reader: ReaderSettings{
			Type: "tui",
			Baud: 9600,
		},
		UI: UISettings{
			LogLevel: "info",
			LogFile:  "pokerstation.log",
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults; values left out of the file fall back to them.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	var cfg Config
	if fc.Server != nil {
		cfg.Server = *fc.Server
	}
	if fc.Table != nil {
		cfg.Table = *fc.Table
	}
	if fc.Station != nil {
		cfg.Station = *fc.Station
	}
	if fc.Reader != nil {
		cfg.Reader = *fc.Reader
	}
	if fc.UI != nil {
		cfg.UI = *fc.UI
	}

	cfg.applyDefaults(DefaultConfig())
	return &cfg, nil
}

func (c *Config) applyDefaults(d *Config) {
	fillString(&c.Server.Host, d.Server.Host)
	fillInt(&c.Server.Port, d.Server.Port)
	fillString(&c.Server.Path, d.Server.Path)
	fillInt(&c.Server.ReconnectInterval, d.Server.ReconnectInterval)
	fillInt(&c.Server.ConnectTimeout, d.Server.ConnectTimeout)
	fillInt(&c.Server.BootTimeout, d.Server.BootTimeout)

	if len(c.Table.Actions) == 0 {
		c.Table.Actions = d.Table.Actions
	}
	fillInt(&c.Table.MinBet, d.Table.MinBet)
	fillInt(&c.Table.BetStep, d.Table.BetStep)
	fillInt(&c.Table.MinRaise, d.Table.MinRaise)
	fillInt(&c.Table.InitialBalance, d.Table.InitialBalance)
	fillString(&c.Table.RoundReset, d.Table.RoundReset)

	fillInt(&c.Station.TickInterval, d.Station.TickInterval)
	fillInt(&c.Station.Debounce, d.Station.Debounce)
	fillInt(&c.Station.NoticeDuration, d.Station.NoticeDuration)
	fillInt(&c.Station.RegisterCooldown, d.Station.RegisterCooldown)

	fillString(&c.Reader.Type, d.Reader.Type)
	fillInt(&c.Reader.Baud, d.Reader.Baud)

	fillString(&c.UI.LogLevel, d.UI.LogLevel)
	fillString(&c.UI.LogFile, d.UI.LogFile)
}

func fillString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func fillInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate validates the station configuration
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server host is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Server.ReconnectInterval <= 0 {
		return fmt.Errorf("reconnect interval must be positive")
	}
	if c.Server.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive")
	}
	if c.Server.BootTimeout <= 0 {
		return fmt.Errorf("boot timeout must be positive")
	}

	if err := c.Menu().Validate(); err != nil {
		return err
	}
	if c.Table.InitialBalance < 0 {
		return fmt.Errorf("initial balance cannot be negative")
	}
	if _, err := session.ParseResetPolicy(c.Table.RoundReset); err != nil {
		return err
	}

	if c.Station.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Station.Debounce < 0 || c.Station.NoticeDuration < 0 || c.Station.RegisterCooldown < 0 {
		return fmt.Errorf("station durations cannot be negative")
	}

	validReaders := map[string]bool{
		"tui":    true,
		"serial": true,
	}
	if !validReaders[c.Reader.Type] {
		return fmt.Errorf("invalid reader type: %s", c.Reader.Type)
	}
	if c.Reader.Type == "serial" && c.Reader.Device == "" {
		return fmt.Errorf("serial reader requires a device")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	return nil
}

// ServerURL returns the backend WebSocket URL
func (c *Config) ServerURL() string {
	scheme := "ws"
	if c.Server.Secure {
		scheme = "wss"
	}
	path := c.Server.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port)),
		Path:   path,
	}
	return u.String()
}

// SetServerURL overrides host, port, path and scheme from a URL
func (c *Config) SetServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "ws", "http":
		c.Server.Secure = false
	case "wss", "https":
		c.Server.Secure = true
	default:
		return fmt.Errorf("unsupported server URL scheme: %q", u.Scheme)
	}

	c.Server.Host = u.Hostname()
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid server port: %w", err)
		}
		c.Server.Port = port
	} else if c.Server.Secure {
		c.Server.Port = 443
	} else {
		c.Server.Port = 80
	}
	c.Server.Path = u.Path
	if c.Server.Path == "" {
		c.Server.Path = "/"
	}
	return nil
}

// Menu returns the menu engine settings
func (c *Config) Menu() menu.Config {
	return menu.Config{
		Actions:  c.Table.Actions,
		MinBet:   c.Table.MinBet,
		BetStep:  c.Table.BetStep,
		MinRaise: c.Table.MinRaise,
	}
}

// ResetPolicy returns the parsed round reset policy
func (c *Config) ResetPolicy() session.ResetPolicy {
	p, err := session.ParseResetPolicy(c.Table.RoundReset)
	if err != nil {
		return session.Continuity
	}
	return p
}

// Duration helpers convert the integer settings

func (c *Config) ReconnectInterval() time.Duration {
	return time.Duration(c.Server.ReconnectInterval) * time.Second
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Server.ConnectTimeout) * time.Second
}

func (c *Config) BootTimeout() time.Duration {
	return time.Duration(c.Server.BootTimeout) * time.Second
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Station.TickInterval) * time.Millisecond
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Station.Debounce) * time.Millisecond
}

func (c *Config) NoticeDuration() time.Duration {
	return time.Duration(c.Station.NoticeDuration) * time.Millisecond
}

func (c *Config) RegisterCooldown() time.Duration {
	return time.Duration(c.Station.RegisterCooldown) * time.Millisecond
}
