package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/beastgo/internal/engine"
	"golang.org/x/text/language"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	TemplatePath  string // template file; empty when ComponentName is set
	ComponentName string // render a component as the top-level template
	Static        bool   // render ComponentName through the static store

	ContextPath    string // YAML or JSON bindings
	ComponentsPath string // directory of *.component<ext> files
	Engine         string // html, text or css
	Locale         string // BCP 47 tag of the render
	RoutePath      string // value of the router path variable
	OutputPath     string // "" or "-" writes to the output writer

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.TemplatePath == "" && cfg.ComponentName == "" {
		return nil, errors.New("a template path or a component name is required")
	}
	if cfg.TemplatePath != "" && cfg.ComponentName != "" {
		return nil, errors.New("a template path and a component name cannot be used together")
	}
	if cfg.Static && cfg.ComponentName == "" {
		return nil, errors.New("static rendering requires a component name")
	}

	if cfg.Engine == "" {
		cfg.Engine = "html"
	}
	flavor, err := engine.ParseFlavor(cfg.Engine)
	if err != nil {
		return nil, err
	}
	cfg.Engine = flavor.String()

	if cfg.Locale != "" {
		if _, err := language.Parse(cfg.Locale); err != nil {
			return nil, fmt.Errorf("invalid locale '%s': %w", cfg.Locale, err)
		}
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	return &cfg, nil
}

// flavor returns the validated engine flavor.
func (c *Config) flavor() engine.Flavor {
	f, _ := engine.ParseFlavor(c.Engine)
	return f
}

// locale returns the validated render locale, language.Und when unset.
func (c *Config) locale() language.Tag {
	if c.Locale == "" {
		return language.Und
	}
	return language.Make(c.Locale)
}
