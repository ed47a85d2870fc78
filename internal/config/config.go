package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration file (server.yaml).
type Config struct {
	World     WorldSpec     `yaml:"world"`
	Materials MaterialsSpec `yaml:"materials"`
	Builds    BuildsSpec    `yaml:"builds"`
	Storage   StorageSpec   `yaml:"storage"`
	MCP       MCPSpec       `yaml:"mcp"`
	Observer  ObserverSpec  `yaml:"observer"`
}

type WorldSpec struct {
	ID        string `yaml:"id"`
	BoundaryR int    `yaml:"boundary_r"`
	MinY      int    `yaml:"min_y"`
	MaxY      int    `yaml:"max_y"`
	QueueSize int    `yaml:"queue_size"`
}

type MaterialsSpec struct {
	// File is a local palettes YAML; Source is a go-getter URL fetched into
	// the data dir at startup. Source wins when both are set.
	File   string `yaml:"file"`
	Source string `yaml:"source"`
}

type BuildsSpec struct {
	MaxBlocks          int      `yaml:"max_blocks"`
	FlatWorldMaxBlocks int      `yaml:"flat_world_max_blocks"`
	ExecTimeoutMs      int      `yaml:"exec_timeout_ms"`
	DisabledStructures []string `yaml:"disabled_structures,omitempty"`
}

type StorageSpec struct {
	DataDir     string `yaml:"data_dir"`
	DisableDB   bool   `yaml:"disable_db"`
	IngestURL   string `yaml:"ingest_url"`
	IngestToken string `yaml:"ingest_token"`
}

type MCPSpec struct {
	Listen           string `yaml:"listen"`
	HMACSecret       string `yaml:"hmac_secret"`
	AllowNonLoopback bool   `yaml:"allow_non_loopback"`
	MaxBodyBytes     int64  `yaml:"max_body_bytes"`
	ReplayWindowSec  int    `yaml:"replay_window_sec"`
	ReplayCacheSize  int    `yaml:"replay_cache_size"`
}

type ObserverSpec struct {
	Listen           string `yaml:"listen"`
	AllowNonLoopback bool   `yaml:"allow_non_loopback"`
	SendBuffer       int    `yaml:"send_buffer"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("server.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("server.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		World: WorldSpec{
			ID:        "OVERWORLD",
			BoundaryR: 4000,
			MinY:      -64,
			MaxY:      319,
			QueueSize: 64,
		},
		Builds: BuildsSpec{
			MaxBlocks:          250000,
			FlatWorldMaxBlocks: 4000000,
			ExecTimeoutMs:      10000,
		},
		Storage: StorageSpec{
			DataDir: "./data",
		},
		MCP: MCPSpec{
			Listen:          "127.0.0.1:8090",
			MaxBodyBytes:    1 << 20,
			ReplayWindowSec: 300,
			ReplayCacheSize: 10000,
		},
		Observer: ObserverSpec{
			Listen:     "127.0.0.1:8091",
			SendBuffer: 64,
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.World.ID = strings.TrimSpace(c.World.ID)
	if c.World.ID == "" {
		c.World.ID = "OVERWORLD"
	}
	if c.World.QueueSize <= 0 {
		c.World.QueueSize = 64
	}
	c.MCP.Listen = strings.TrimSpace(c.MCP.Listen)
	if c.MCP.Listen == "" {
		c.MCP.Listen = "127.0.0.1:8090"
	}
	c.Observer.Listen = strings.TrimSpace(c.Observer.Listen)
	if c.MCP.MaxBodyBytes <= 0 {
		c.MCP.MaxBodyBytes = 1 << 20
	}
	if c.MCP.ReplayWindowSec <= 0 {
		c.MCP.ReplayWindowSec = 300
	}
	if c.MCP.ReplayCacheSize <= 0 {
		c.MCP.ReplayCacheSize = 10000
	}
	if c.Observer.SendBuffer <= 0 {
		c.Observer.SendBuffer = 64
	}
	c.Materials.File = strings.TrimSpace(c.Materials.File)
	c.Materials.Source = strings.TrimSpace(c.Materials.Source)
	c.Storage.IngestURL = strings.TrimSpace(c.Storage.IngestURL)

	seen := map[string]bool{}
	out := c.Builds.DisabledStructures[:0]
	for _, s := range c.Builds.DisabledStructures {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	c.Builds.DisabledStructures = out
}

func (c Config) Validate() error {
	if c.World.BoundaryR < 0 {
		return fmt.Errorf("world.boundary_r must be >= 0")
	}
	if c.World.MinY > c.World.MaxY {
		return fmt.Errorf("world.min_y (%d) must be <= world.max_y (%d)", c.World.MinY, c.World.MaxY)
	}
	if c.Builds.MaxBlocks < 0 {
		return fmt.Errorf("builds.max_blocks must be >= 0")
	}
	if c.Builds.FlatWorldMaxBlocks < 0 {
		return fmt.Errorf("builds.flat_world_max_blocks must be >= 0")
	}
	if c.Builds.ExecTimeoutMs < 0 {
		return fmt.Errorf("builds.exec_timeout_ms must be >= 0")
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return fmt.Errorf("storage.data_dir must not be empty")
	}
	if c.Storage.IngestURL != "" && !strings.HasPrefix(c.Storage.IngestURL, "http://") && !strings.HasPrefix(c.Storage.IngestURL, "https://") {
		return fmt.Errorf("storage.ingest_url must be an http(s) url")
	}
	return nil
}

func (c Config) ExecTimeout() time.Duration {
	return time.Duration(c.Builds.ExecTimeoutMs) * time.Millisecond
}

func (c Config) ReplayWindow() time.Duration {
	return time.Duration(c.MCP.ReplayWindowSec) * time.Second
}
