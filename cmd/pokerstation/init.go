package main

import (
	"fmt"

	"github.com/pokeriot/station/internal/config"
)

// InitCmd writes the default configuration
type InitCmd struct {
	Config string `short:"c" default:"pokerstation.hcl" help:"Path of the file to write"`
	Force  bool   `short:"f" help:"Overwrite an existing file"`
}

func (c *InitCmd) Run() error {
	if err := config.WriteDefault(c.Config, c.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", c.Config)
	return nil
}
