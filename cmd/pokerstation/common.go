package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pokeriot/station/internal/card"
	"github.com/pokeriot/station/internal/config"
	"github.com/pokeriot/station/internal/transport"
)

// StationFlags are shared by every command and override the config file
type StationFlags struct {
	Config   string `short:"c" default:"pokerstation.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" help:"Backend URL, e.g. ws://10.0.0.5:3000/ (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
	Reader   string `help:"Card reader: tui or serial (overrides config)"`
	Device   string `help:"Serial device for the card reader (overrides config)"`
	Headless bool   `help:"Log screens instead of running the terminal simulator"`
}

func (f *StationFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if f.Server != "" {
		if err := cfg.SetServerURL(f.Server); err != nil {
			return nil, err
		}
	}
	if f.LogLevel != "" {
		cfg.UI.LogLevel = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.UI.LogFile = f.LogFile
	}
	if f.Reader != "" {
		cfg.Reader.Type = f.Reader
	}
	if f.Device != "" {
		cfg.Reader.Device = f.Device
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogger logs to the configured file while the simulator owns the
// terminal, and to stderr when headless
func (f *StationFlags) setupLogger(cfg *config.Config) (*log.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)

	if !f.Headless {
		logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = logFile
		closer = logFile
	}

	level, err := log.ParseLevel(cfg.UI.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return logger, closer, nil
}

// openReaders returns the reader the station polls and, when the simulator
// runs, the queue it feeds typed card IDs into
func (f *StationFlags) openReaders(cfg *config.Config, logger *log.Logger) (card.Reader, *card.QueueReader, func(), error) {
	reader, err := card.New(card.ReaderConfig{
		Type:   cfg.Reader.Type,
		Device: cfg.Reader.Device,
		Baud:   cfg.Reader.Baud,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	switch r := reader.(type) {
	case *card.SerialReader:
		closeFn := func() {
			if err := r.Err(); err != nil {
				logger.Error("Card reader stopped", "device", cfg.Reader.Device, "error", err)
			}
			_ = r.Close()
		}
		if f.Headless {
			return r, nil, closeFn, nil
		}
		keyboard := card.NewQueueReader(8)
		return card.Multi(r, keyboard), keyboard, closeFn, nil

	case *card.QueueReader:
		if f.Headless {
			return nil, nil, nil, fmt.Errorf("headless mode needs a serial card reader")
		}
		return r, r, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported card reader type: %s", cfg.Reader.Type)
	}
}

func newChannel(cfg *config.Config, logger *log.Logger, clock quartz.Clock) (*transport.Channel, error) {
	return transport.New(transport.Config{
		URL:               cfg.ServerURL(),
		ReconnectInterval: cfg.ReconnectInterval(),
		HandshakeTimeout:  cfg.ConnectTimeout(),
	}, logger, clock)
}
