// Package config loads matterd's startup configuration from a gcfg-format
// ini file (spec.md's ambient config surface; the node's own data model —
// endpoints, clusters — is wired up in code, not configured).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/gcfg.v1"
)

const maxConfigSize int64 = 1024 * 1024 // 1MB is already generous for this file

var (
	ErrMissingListenAddr  = errors.New("config: Listen-Addr is required")
	ErrInvalidMaxSessions = errors.New("config: Max-Sessions must be positive")
	ErrInvalidRxBufBytes  = errors.New("config: Rx-Buf-Bytes must be positive")
	ErrFileTooLarge       = errors.New("config: config file too large")
)

// Global holds the transport and session-table tuning knobs (spec.md §4.4, §5).
type Global struct {
	Listen_Addr            string
	Node_ID                uint64
	Max_Sessions           int
	Mrp_Initial_Backoff_Ms int
	Mrp_Max_Retries        int
	Rx_Buf_Bytes           int
}

// Fabric holds the on-disk location of the fabric table (spec.md §6).
type Fabric struct {
	Store_Path string
}

// Log holds logging sink configuration.
type Log struct {
	Level     string
	File_Path string
}

// Config is the top-level structure gcfg decodes an ini file into.
type Config struct {
	Global Global
	Fabric Fabric
	Log    Log
}

// defaults mirrors the knobs spec.md §4.4/§5 call out as needing a sane
// out-of-box value.
func defaults() Config {
	return Config{
		Global: Global{
			Node_ID:                1,
			Max_Sessions:           16,
			Mrp_Initial_Backoff_Ms: 300,
			Mrp_Max_Retries:        3,
			Rx_Buf_Bytes:           1 << 20,
		},
		Log: Log{Level: "INFO"},
	}
}

// Load reads and validates the ini file at path.
func Load(path string) (*Config, error) {
	fin, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fin.Close()

	fi, err := fin.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() > maxConfigSize {
		return nil, ErrFileTooLarge
	}
	content := make([]byte, fi.Size())
	if _, err := fin.Read(content); err != nil {
		return nil, err
	}

	c := defaults()
	if err := gcfg.ReadStringInto(&c, string(content)); err != nil {
		return nil, err
	}
	if err := c.verify(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) verify() error {
	if c.Global.Listen_Addr == "" {
		return ErrMissingListenAddr
	}
	if c.Global.Max_Sessions <= 0 {
		return ErrInvalidMaxSessions
	}
	if c.Global.Rx_Buf_Bytes <= 0 {
		return ErrInvalidRxBufBytes
	}
	if c.Global.Mrp_Initial_Backoff_Ms <= 0 {
		return fmt.Errorf("config: Mrp-Initial-Backoff-Ms must be positive")
	}
	if c.Global.Mrp_Max_Retries <= 0 {
		return fmt.Errorf("config: Mrp-Max-Retries must be positive")
	}
	return nil
}

// MrpInitialBackoff is the config's retry backoff as a time.Duration.
func (c *Config) MrpInitialBackoff() time.Duration {
	return time.Duration(c.Global.Mrp_Initial_Backoff_Ms) * time.Millisecond
}
