package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Web       WebConfig       `yaml:"web"`
	Messaging MessagingConfig `yaml:"messaging"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Debug     bool            `yaml:"debug"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig controls the cross-instance group backplane. When disabled,
// groups only span the local process.
type RedisConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Address       string `yaml:"address"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	SessionSecret  string   `yaml:"session_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MessagingConfig selects the bus the ordering application publishes order
// changes on. An empty backend disables the consumer.
type MessagingConfig struct {
	Backend     string      `yaml:"backend"` // "kafka", "mqtt" or ""
	Kafka       KafkaConfig `yaml:"kafka"`
	MQTT        MQTTConfig  `yaml:"mqtt"`
	OrdersTopic string      `yaml:"orders_topic"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

type SessionsConfig struct {
	SendBuffer     int           `yaml:"send_buffer"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	PongTimeout    time.Duration `yaml:"pong_timeout"`
	MaxMessageSize int64         `yaml:"max_message_size"`
}

func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "ordercast.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "ordercast",
				User:     "ordercast",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Enabled:       false,
			Address:       "localhost:6379",
			Password:      "",
			DB:            0,
			ChannelPrefix: "ordercast:group:",
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8000,
			SessionSecret: "change-me-in-production",
		},
		Messaging: MessagingConfig{
			Backend: "",
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "ordercast",
			},
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "ordercast",
			},
			OrdersTopic: "ordering.orders",
		},
		Sessions: SessionsConfig{
			SendBuffer:     64,
			WriteTimeout:   10 * time.Second,
			PongTimeout:    60 * time.Second,
			MaxMessageSize: 512 * 1024,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
