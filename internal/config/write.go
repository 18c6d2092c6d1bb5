package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrExists is returned by WriteDefault when the file is already there
var ErrExists = errors.New("config file already exists")

// DefaultHCL renders the default configuration as an HCL file
func DefaultHCL() []byte {
	d := DefaultConfig()

	quoted := make([]string, len(d.Table.Actions))
	for i, a := range d.Table.Actions {
		quoted[i] = fmt.Sprintf("%q", a)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "server {\n")
	fmt.Fprintf(&b, "  host               = %q\n", d.Server.Host)
	fmt.Fprintf(&b, "  port               = %d\n", d.Server.Port)
	fmt.Fprintf(&b, "  path               = %q\n", d.Server.Path)
	fmt.Fprintf(&b, "  secure             = %t\n", d.Server.Secure)
	fmt.Fprintf(&b, "  reconnect_interval = %d # seconds\n", d.Server.ReconnectInterval)
	fmt.Fprintf(&b, "  connect_timeout    = %d # seconds\n", d.Server.ConnectTimeout)
	fmt.Fprintf(&b, "  boot_timeout       = %d # seconds\n", d.Server.BootTimeout)
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "table {\n")
	fmt.Fprintf(&b, "  actions         = [%s]\n", strings.Join(quoted, ", "))
	fmt.Fprintf(&b, "  min_bet         = %d\n", d.Table.MinBet)
	fmt.Fprintf(&b, "  bet_step        = %d\n", d.Table.BetStep)
	fmt.Fprintf(&b, "  min_raise       = %d\n", d.Table.MinRaise)
	fmt.Fprintf(&b, "  initial_balance = %d\n", d.Table.InitialBalance)
	fmt.Fprintf(&b, "  round_reset     = %q # or \"rescan\"\n", d.Table.RoundReset)
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "station {\n")
	fmt.Fprintf(&b, "  tick_interval     = %d # milliseconds\n", d.Station.TickInterval)
	fmt.Fprintf(&b, "  debounce          = %d\n", d.Station.Debounce)
	fmt.Fprintf(&b, "  notice_duration   = %d\n", d.Station.NoticeDuration)
	fmt.Fprintf(&b, "  register_cooldown = %d\n", d.Station.RegisterCooldown)
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "reader {\n")
	fmt.Fprintf(&b, "  type = %q # or \"serial\"\n", d.Reader.Type)
	fmt.Fprintf(&b, "  # device = \"/dev/ttyUSB0\"\n")
	fmt.Fprintf(&b, "  baud = %d\n", d.Reader.Baud)
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "ui {\n")
	fmt.Fprintf(&b, "  log_level = %q\n", d.UI.LogLevel)
	fmt.Fprintf(&b, "  log_file  = %q\n", d.UI.LogFile)
	fmt.Fprintf(&b, "}\n")

	return []byte(b.String())
}

// WriteDefault writes DefaultHCL to filename. An existing file is only
// replaced when force is set.
func WriteDefault(filename string, force bool) error {
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, filename)
		}
	}
	return writeFileAtomic(filename, DefaultHCL(), 0o644)
}

// writeFileAtomic writes through a temporary file in the same directory and
// renames it into place, so a station booting concurrently never loads a
// half-written config.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		_ = os.Remove(tmpPath)
		committed = true
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	committed = true
	return nil
}
