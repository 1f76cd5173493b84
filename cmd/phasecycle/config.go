package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/xyhelper/xyphase"
	"github.com/xyhelper/xyphase/phasecycle"
)

// resolveConfig starts from the --config file, or the defaults, and applies
// any timing flags given on the command line.
func resolveConfig(c *cli.Context) (phasecycle.Config, error) {
	cfg := phasecycle.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = phasecycle.LoadConfig(path); err != nil {
			return phasecycle.Config{}, err
		}
	}
	if c.IsSet("min") {
		cfg.MinCycle = c.Duration("min")
	}
	if c.IsSet("max") {
		cfg.MaxCycle = c.Duration("max")
	}
	if c.IsSet("poll") {
		cfg.PollInterval = c.Duration("poll")
	}
	if c.IsSet("discipline") {
		d, err := xyphase.ParseDiscipline(c.String("discipline"))
		if err != nil {
			return phasecycle.Config{}, fmt.Errorf("--discipline %q: %w", c.String("discipline"), err)
		}
		cfg.Discipline = d
	}
	if err := cfg.Validate(); err != nil {
		return phasecycle.Config{}, err
	}
	return cfg, nil
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective configuration as YAML",
		Action: func(c *cli.Context) error {
			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = c.App.Writer.Write(out)
			return err
		},
	}
}
