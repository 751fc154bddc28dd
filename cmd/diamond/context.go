package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/dan-lund/diamond/internal/api"
	"github.com/dan-lund/diamond/internal/config"
	"github.com/dan-lund/diamond/internal/logging"
	"github.com/dan-lund/diamond/internal/palette"
)

// commandContext carries lazily loaded configuration shared by all
// subcommands.
type commandContext struct {
	configFlag *string

	cfg *config.Config
	log zerolog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig loads the configuration once and initializes logging.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.log = logging.NewDefault(cfg.Log.Level)
	return cfg, nil
}

// client builds the API client from the loaded configuration.
func (c *commandContext) client() *api.Client {
	return api.NewClient(c.cfg.API.BaseURL, c.cfg.APITimeout())
}

// palette returns the configured palette, falling back to the default.
func (c *commandContext) palette() palette.Palette {
	if len(c.cfg.Palette) == 0 {
		return palette.Default()
	}
	p := make(palette.Palette, 0, len(c.cfg.Palette))
	for _, e := range c.cfg.Palette {
		p = append(p, palette.Style{Name: e.Name, Base: e.Base, Fill: e.Fill})
	}
	return p
}

// colorize reports whether stdout supports colored output.
func colorize() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
