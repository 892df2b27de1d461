package app

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/lecturebot/core/config"
	coredatabase "github.com/m3rciful/lecturebot/core/database"
	"github.com/m3rciful/lecturebot/core/telegram/state"
	"github.com/m3rciful/lecturebot/internal/ai"
	"github.com/m3rciful/lecturebot/internal/filehost"
)

// Conversation store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type ConversationConfig struct {
	Backend string        `yaml:"backend" envconfig:"CONVERSATION_BACKEND"`
	TTL     time.Duration `yaml:"ttl" envconfig:"CONVERSATION_TTL"`
	// Sweep is the cron spec of the memory store expiry pass.
	Sweep string `yaml:"sweep"`
}

type RedisConfig struct {
	URL string `yaml:"url" envconfig:"REDIS_URL"`
}

type MetricsConfig struct {
	// Listen is the /metrics address; empty disables the endpoint.
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

type TimeoutsConfig struct {
	Store  time.Duration `yaml:"store"`
	Upload time.Duration `yaml:"upload"`
	AI     time.Duration `yaml:"ai"`
}

type BotConfig struct {
	Signature string `yaml:"signature" envconfig:"BOT_SIGNATURE"`
	// ListLimit caps the lecture list command.
	ListLimit int `yaml:"list_limit"`
}

// Config is the full application configuration: the core sections inline
// plus the lecture bot's own.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database     coredatabase.Config `yaml:"database"`
	Conversation ConversationConfig  `yaml:"conversation"`
	Redis        RedisConfig         `yaml:"redis"`
	GitHub       filehost.Config     `yaml:"github"`
	AI           ai.Config           `yaml:"ai"`
	Metrics      MetricsConfig       `yaml:"metrics"`
	Timeouts     TimeoutsConfig      `yaml:"timeouts"`
	Bot          BotConfig           `yaml:"bot"`
}

// Load reads path, the optional .env file and the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	c.Database.Normalize()

	c.Conversation.Backend = strings.ToLower(strings.TrimSpace(c.Conversation.Backend))
	switch c.Conversation.Backend {
	case "":
		c.Conversation.Backend = BackendMemory
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.Redis.URL) == "" {
			return fmt.Errorf("redis.url is required when conversation.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid conversation.backend %q; allowed: memory, redis", c.Conversation.Backend)
	}
	if c.Conversation.TTL <= 0 {
		c.Conversation.TTL = state.DefaultTTL
	}
	if c.Conversation.Sweep == "" {
		c.Conversation.Sweep = state.DefaultSweepSpec
	}

	c.GitHub.Normalize()
	c.AI.Normalize()

	if c.Timeouts.Store <= 0 {
		c.Timeouts.Store = 5 * time.Second
	}
	if c.Timeouts.Upload <= 0 {
		c.Timeouts.Upload = 2 * time.Minute
	}
	if c.Timeouts.AI <= 0 {
		c.Timeouts.AI = 60 * time.Second
	}
	if c.Bot.ListLimit <= 0 {
		c.Bot.ListLimit = 30
	}
	return nil
}
