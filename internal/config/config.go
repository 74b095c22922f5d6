package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
}

// ServerConfig configures the HTTP and WebSocket listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RedisConfig configures the room mirror.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig configures room lifecycle behavior.
type GameConfig struct {
	RoomGracePeriod int `yaml:"room_grace_period"` // empty room cleanup delay (seconds)
	JoinGracePeriod int `yaml:"join_grace_period"` // time a connection may idle before joining (seconds)
	RoomCodeLength  int `yaml:"room_code_length"`
}

// RoomGraceDuration returns the empty room cleanup delay.
func (c *GameConfig) RoomGraceDuration() time.Duration {
	return time.Duration(c.RoomGracePeriod) * time.Second
}

// JoinGraceDuration returns the ghost connection timeout.
func (c *GameConfig) JoinGraceDuration() time.Duration {
	return time.Duration(c.JoinGracePeriod) * time.Second
}

// Load reads a config file and backfills defaults for missing values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Game.RoomGracePeriod == 0 {
		cfg.Game.RoomGracePeriod = 30
	}
	if cfg.Game.JoinGracePeriod == 0 {
		cfg.Game.JoinGracePeriod = 30
	}
	if cfg.Game.RoomCodeLength == 0 {
		cfg.Game.RoomCodeLength = 5
	}

	return &cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			RoomGracePeriod: 30,
			JoinGracePeriod: 30,
			RoomCodeLength:  5,
		},
	}
}
