// Package config loads the server's YAML configuration and exposes it
// behind a reader/writer lock, grounded in the teacher's server.yaml /
// gopkg.in/yaml.v3 loader in main.go.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config is the complete set of knobs the embedder can set for a run of
// the server, decoded once from YAML at process start (spec §3).
type Config struct {
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"`

	LogLevel string `yaml:"log_level"`

	Hidden          bool `yaml:"hidden"`
	MaxPlayers      int  `yaml:"max_players"`
	HidePlayerCount bool `yaml:"hide_player_count"`

	MOTD        string `yaml:"motd"`
	ServerName  string `yaml:"server_name"`
	FaviconPath string `yaml:"favicon_path"`

	CompressionThreshold int32 `yaml:"compression_threshold"`
	ProtocolVersion      int32 `yaml:"protocol_version"`

	OnlineMode bool `yaml:"online_mode"`
}

// applyDefaults fills zero-valued fields the way the teacher's main.go
// does after decode, so a minimal YAML file still produces a runnable
// configuration.
func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 25565
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = 20
	}
	if c.ServerName == "" {
		c.ServerName = "limbo"
	}
	if c.ProtocolVersion == 0 {
		c.ProtocolVersion = 757 // 1.18.1-family, per spec §4.2
	}
	if c.CompressionThreshold == 0 {
		c.CompressionThreshold = 256
	}
}

// Load reads and decodes the YAML file at path, applying defaults for
// any zero-valued field afterward.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	var c Config
	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	c.applyDefaults()
	return &c, nil
}

// Handle wraps a *Config behind a reader/writer lock. The core takes a
// read lock only for the short critical section needed to copy out the
// fields a given packet handler needs, never across blocking I/O (spec
// §4.7/§5).
type Handle struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewHandle wraps cfg for concurrent access.
func NewHandle(cfg *Config) *Handle {
	return &Handle{cfg: cfg}
}

// Snapshot returns a copy of the current configuration, safe to read
// without holding any lock.
func (h *Handle) Snapshot() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return *h.cfg
}

// Replace installs a new configuration, for a future reload path.
func (h *Handle) Replace(cfg *Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = cfg
}
