package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/pqbot/core/config"
	coredatabase "github.com/m3rciful/pqbot/core/database"
	"github.com/m3rciful/pqbot/internal/requestlog"
)

// Config is the full configuration of the past questions bot.
type Config struct {
	Core coreconfig.Config `yaml:",inline"`

	Catalog  CatalogConfig       `yaml:"catalog"`
	Requests RequestsConfig      `yaml:"requests"`
	Session  SessionConfig       `yaml:"session"`
	Assets   AssetsConfig        `yaml:"assets"`
	Database coredatabase.Config `yaml:"database"`
}

// CatalogConfig locates the document list and the files it names.
type CatalogConfig struct {
	// File is a YAML or TOML document list; empty uses the built-in catalog.
	File         string `yaml:"file" envconfig:"CATALOG_FILE"`
	DocumentsDir string `yaml:"documents_dir" envconfig:"DOCUMENTS_DIR"`
}

// RequestsConfig sets where free-text requests are appended.
type RequestsConfig struct {
	File string `yaml:"file" envconfig:"REQUESTS_FILE"`
}

// SessionConfig tunes the session store.
type SessionConfig struct {
	// IdleTTL drops sessions without activity back to idle; 0 keeps them.
	IdleTTL time.Duration `yaml:"idle_ttl" envconfig:"SESSION_IDLE_TTL"`
}

// AssetsConfig holds static files sent by the bot.
type AssetsConfig struct {
	// StartImage is sent with the welcome message; "-" disables it.
	StartImage string `yaml:"start_image" envconfig:"START_IMAGE"`
}

const (
	defaultDocumentsDir = "."
	defaultRequestsFile = requestlog.DefaultFile
	defaultStartImage   = "./images/start.png"
)

// LoadConfig reads path, applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Core); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	if c.Session.IdleTTL < 0 {
		return fmt.Errorf("session.idle_ttl must be >= 0")
	}

	c.Catalog.File = strings.TrimSpace(c.Catalog.File)
	if strings.TrimSpace(c.Catalog.DocumentsDir) == "" {
		c.Catalog.DocumentsDir = defaultDocumentsDir
	}
	if strings.TrimSpace(c.Requests.File) == "" {
		c.Requests.File = defaultRequestsFile
	}
	switch strings.TrimSpace(c.Assets.StartImage) {
	case "":
		c.Assets.StartImage = defaultStartImage
	case "-":
		c.Assets.StartImage = ""
	}
	return nil
}

// CoreConfig exposes the shared core settings.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Core
}
