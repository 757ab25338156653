package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database       DatabaseConfigs  `toml:"database"`
	ApiServer      APIServerConfigs `toml:"api_server"`
	RealtimeServer RealtimeConfigs  `toml:"realtime_server"`
	Auth           AuthConfigs      `toml:"auth"`
	Session        SessionConfigs   `toml:"session"`
	Storage        S3Configs        `toml:"storage"`
	File           FileConfigs      `toml:"file"`
	Room           RoomConfigs      `toml:"room"`
	Rules          RulesConfigs     `toml:"rules"`
	Badge          BadgeConfigs     `toml:"badge"`
	PubSub         PubSubConfigs    `toml:"pubsub"`
	Redis          RedisConfigs     `toml:"redis"`
	Kafka          KafkaConfigs     `toml:"kafka"`
	Scylla         ScyllaConfigs    `toml:"scylla"`
	Client         ClientConfigs    `toml:"client"`
}

type DatabaseConfigs struct {
	// Driver is either "mysql" or "sqlite".
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	LogLevel string `toml:"log_level"`

	SqlitePath string `toml:"sqlite_path"`
}

func (d DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.SqlitePath
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host           string   `toml:"host"`
	Port           string   `toml:"port"`
	Cert           string   `toml:"cert"`
	Key            string   `toml:"key"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs `toml:"server"`

	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`
}

type RealtimeConfigs struct {
	ServerConfigs `toml:"server"`

	// CompressFrames sends feed frames as zlib compressed binary messages.
	CompressFrames bool `toml:"compress_frames"`
}

type SessionConfigs struct {
	Secret string `toml:"secret"`
	Name   string `toml:"name"`
}

type AuthConfigs struct {
	TokenSecret       string       `toml:"token_secret"`
	AccessToken       TokenConfigs `toml:"access_token"`
	RefreshToken      TokenConfigs `toml:"refresh_token"`
	MinPasswordLength int          `toml:"min_password_length"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type S3Configs struct {
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"`
	PublicEndpoint string `toml:"public_endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	SSLDisabled    bool   `toml:"ssl_disabled"`
}

type FileConfigs struct {
	MaxMemory int64 `toml:"max_memory"`

	// MapBucket holds the broadcast map images of rooms.
	MapBucket  string `toml:"map_bucket"`
	MapMaxEdge int    `toml:"map_max_edge"`
}

type RoomConfigs struct {
	LogLimit    int `toml:"log_limit"`
	CodeRetries int `toml:"code_retries"`
}

type RulesConfigs struct {
	// CatalogPath replaces the embedded catalog when set.
	CatalogPath string `toml:"catalog_path"`
}

type BadgeConfigs struct {
	// AllowDuplicateAwards lets a DM award the same badge to the same
	// character more than once.
	AllowDuplicateAwards bool `toml:"allow_duplicate_awards"`
}

type PubSubConfigs struct {
	// Broker is one of "memory", "redis" or "kafka".
	Broker      string `toml:"broker"`
	ChangeTopic string `toml:"change_topic"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr    string `toml:"addr"`
	GroupID string `toml:"group_id"`
}

type ScyllaConfigs struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	KeySpace string `toml:"keyspace"`
}

type ClientConfigs struct {
	Endpoint         string `toml:"endpoint"`
	RealtimeEndpoint string `toml:"realtime_endpoint"`

	// TicketStore is one of "file", "redis" or "memory".
	TicketStore string `toml:"ticket_store"`
	TicketDir   string `toml:"ticket_dir"`
}
