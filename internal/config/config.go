// Package config loads service configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Mounts    MountConfig
	Sandbox   SandboxConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8700"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StorageConfig holds the physical roots behind the three canonical
// mounts. WorkspaceRoot and TicketRoot are parent directories keyed by
// thread and ticket id; SkillsRoot is the shared skills pool.
type StorageConfig struct {
	WorkspaceRoot string `envconfig:"WORKSPACE_ROOT" default:"/mnt/agentfs/workspaces"`
	TicketRoot    string `envconfig:"TICKET_ROOT" default:"/mnt/agentfs/tickets"`
	SkillsRoot    string `envconfig:"SKILLS_ROOT" default:"/mnt/agentfs/skills"`
}

// MountConfig holds mount readiness polling configuration.
type MountConfig struct {
	ReadyAttempts int           `envconfig:"MOUNT_READY_ATTEMPTS" default:"6"`
	ReadyDelay    time.Duration `envconfig:"MOUNT_READY_DELAY" default:"2s"`
}

// SandboxConfig holds command executor configuration.
type SandboxConfig struct {
	BwrapPath      string        `envconfig:"SANDBOX_BWRAP_PATH" default:"bwrap"`
	DefaultTimeout time.Duration `envconfig:"SANDBOX_DEFAULT_TIMEOUT" default:"120s"`
	MaxOutputBytes int           `envconfig:"SANDBOX_MAX_OUTPUT_BYTES" default:"1048576"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
