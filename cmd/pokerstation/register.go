package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/pokeriot/station/internal/display"
	"github.com/pokeriot/station/internal/station"
	"github.com/pokeriot/station/internal/tui"
)

// RegisterCmd runs a registration station
type RegisterCmd struct {
	StationFlags
}

func (c *RegisterCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	logger, closer, err := c.setupLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	logger.Info("Starting registration station",
		"server", cfg.ServerURL(),
		"reader", cfg.Reader.Type,
		"cooldown", cfg.RegisterCooldown())

	clock := quartz.NewReal()
	channel, err := newChannel(cfg, logger, clock)
	if err != nil {
		return err
	}

	reader, keyboard, closeReader, err := c.openReaders(cfg, logger)
	if err != nil {
		return err
	}
	defer closeReader()

	var sink display.Sink
	var panel *tui.Panel
	if c.Headless {
		sink = display.NewLogSink(logger)
	} else {
		panel = tui.NewPanel()
		sink = panel
	}

	reg, err := station.NewRegistrar(station.RegistrarOptions{
		TickInterval: cfg.TickInterval(),
		Cooldown:     cfg.RegisterCooldown(),
	}, station.Devices{
		Transport: channel,
		Reader:    reader,
		Display:   sink,
	}, logger, clock)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if panel != nil {
		model := tui.NewModel(tui.Options{
			Title:     "Registration",
			Panel:     panel,
			Cards:     keyboard,
			Connected: channel.Connected,
		}, logger)
		g.Go(func() error {
			defer cancel()
			return tui.Run(gctx, model)
		})
	}

	// The registrar reports a dropped connection per scan, so it starts
	// without waiting for the backend.
	g.Go(func() error { return channel.Run(gctx) })
	g.Go(func() error { return reg.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
