package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/pokeriot/station/internal/display"
	"github.com/pokeriot/station/internal/input"
	"github.com/pokeriot/station/internal/station"
	"github.com/pokeriot/station/internal/tui"
)

// PlayCmd runs a player station
type PlayCmd struct {
	StationFlags
}

func (c *PlayCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	logger, closer, err := c.setupLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	logger.Info("Starting player station",
		"server", cfg.ServerURL(),
		"reader", cfg.Reader.Type,
		"round_reset", cfg.Table.RoundReset,
		"config", c.Config)

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

	keys := input.NewQueueSource()
	buttons := input.NewDebouncer(keys, clock, cfg.Debounce())

	var sink display.Sink
	var panel *tui.Panel
	if c.Headless {
		sink = display.NewLogSink(logger)
		logger.Warn("No button input in headless mode; the station can join but not act")
	} else {
		panel = tui.NewPanel()
		sink = panel
	}

	st, err := station.New(station.Options{
		Menu:           cfg.Menu(),
		InitialBalance: cfg.Table.InitialBalance,
		ResetPolicy:    cfg.ResetPolicy(),
		TickInterval:   cfg.TickInterval(),
		NoticeDuration: cfg.NoticeDuration(),
	}, station.Devices{
		Transport: channel,
		Reader:    reader,
		Buttons:   buttons,
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
			Title:     "Player Station",
			Panel:     panel,
			Cards:     keyboard,
			Buttons:   keys,
			Connected: channel.Connected,
		}, logger)
		g.Go(func() error {
			defer cancel()
			return tui.Run(gctx, model)
		})
	}

	g.Go(func() error {
		err := station.Boot(gctx, channel, sink, clock, station.BootOptions{
			Timeout:        cfg.BootTimeout(),
			RetryInterval:  500 * time.Millisecond,
			AttemptTimeout: cfg.ConnectTimeout(),
		}, logger)
		if errors.Is(err, station.ErrUnreachable) && panel != nil {
			// leave the unreachable screen up until the operator quits
			logger.Error("Station halted", "error", err)
			return nil
		}
		if err != nil {
			return err
		}

		g.Go(func() error { return channel.Run(gctx) })
		return st.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
