// Package config carries node settings, loadable from a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"floodcast/internal/dedup"
)

const defaultPollInterval = 25 * time.Millisecond

// Config is the full set of node settings.
type Config struct {
	// ListenAddr is the TCP address inbound peers dial.
	ListenAddr string `json:"listenAddr"`
	// PeerAddrs are dialed at startup, before the first loop iteration.
	PeerAddrs []string `json:"peerAddrs"`
	// NodeID labels this process in logs.
	NodeID string `json:"nodeId"`
	// CacheSize bounds the dedup cache. Zero means dedup.DefaultCapacity.
	CacheSize int `json:"cacheSize"`
	// PollIntervalMS bounds how long an idle event loop iteration waits
	// before sweeping the peers again. Zero means 25ms.
	PollIntervalMS int `json:"pollIntervalMs"`
	// Debug enables debug logging.
	Debug bool `json:"debug"`
}

// GetDefaultConfig returns a config usable without any file.
func GetDefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":4000",
		PeerAddrs:      make([]string, 0),
		NodeID:         uuid.NewString(),
		CacheSize:      dedup.DefaultCapacity,
		PollIntervalMS: int(defaultPollInterval / time.Millisecond),
	}
}

// ParseConfig loads and validates a JSON config file. Fields left unset in
// the file keep their defaults.
func ParseConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := GetDefaultConfig()
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the node cannot run with.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("config: listenAddr must not be empty")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("config: cacheSize must not be negative")
	}
	if c.PollIntervalMS < 0 {
		return fmt.Errorf("config: pollIntervalMs must not be negative")
	}
	return nil
}

// PollInterval returns the idle wait as a duration.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return defaultPollInterval
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
