package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
)

const (
	DefaultPort   = 8357
	DefaultRoot   = "assets"
	DefaultMarker = "PlayStation Vita 3.60"
	DefaultLang   = "en"
)

type Config struct {
	Port         int
	Root         string
	ClientMarker string
	Language     string
}

// Load builds a Config from defaults, then HENKAKU_* environment variables,
// then command-line flags. getenv is usually os.Getenv.
func Load(args []string, getenv func(string) string) (*Config, error) {
	c := &Config{
		Port:         DefaultPort,
		Root:         DefaultRoot,
		ClientMarker: DefaultMarker,
		Language:     DefaultLang,
	}

	if v := getenv("HENKAKU_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HENKAKU_PORT %q: %w", v, err)
		}
		c.Port = p
	}
	if v := getenv("HENKAKU_ROOT"); v != "" {
		c.Root = v
	}
	if v := getenv("HENKAKU_CLIENT_MARKER"); v != "" {
		c.ClientMarker = v
	}
	if v := getenv("HENKAKU_LANG"); v != "" {
		c.Language = v
	}

	fs := flag.NewFlagSet("henkakuserver", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&c.Port, "port", c.Port, "TCP port to listen on")
	fs.StringVar(&c.Root, "root", c.Root, "directory holding the assets to serve")
	fs.StringVar(&c.ClientMarker, "marker", c.ClientMarker, "User-Agent substring identifying supported clients")
	fs.StringVar(&c.Language, "lang", c.Language, "language of the unsupported-client page")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ClientMarker == "" {
		return errors.New("client marker must not be empty")
	}
	fi, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("asset root: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("asset root %s is not a directory", c.Root)
	}
	return nil
}
