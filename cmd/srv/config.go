package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tavern-lab/backend/config"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

func defaultConfigs() config.Configs {
	return config.Configs{
		Env:      "local",
		LogLevel: "info",
		Database: config.DatabaseConfigs{
			Driver:     "sqlite",
			Host:       "localhost",
			Port:       "3306",
			Database:   "tavern",
			User:       "tavern",
			LogLevel:   "error",
			SqlitePath: "tavern.db",
		},
		ApiServer: config.APIServerConfigs{
			ServerConfigs: config.ServerConfigs{
				Port:           "8080",
				AllowedOrigins: []string{"*"},
			},
			MaxLimit:     50,
			DefaultLimit: 30,
		},
		RealtimeServer: config.RealtimeConfigs{
			ServerConfigs: config.ServerConfigs{
				Port:           "8081",
				AllowedOrigins: []string{"*"},
			},
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: 5 * time.Minute,
			},
			RefreshToken: config.TokenConfigs{
				Name:       "refresh_token",
				Expiration: 30 * 24 * time.Hour,
			},
			MinPasswordLength: 8,
		},
		Session: config.SessionConfigs{
			Name: "tavern_session",
		},
		Storage: config.S3Configs{
			Region: "auto",
		},
		File: config.FileConfigs{
			MaxMemory:  2 * 1024 * 1024,
			MapBucket:  "maps",
			MapMaxEdge: 1920,
		},
		Room: config.RoomConfigs{
			LogLimit:    50,
			CodeRetries: 5,
		},
		Badge: config.BadgeConfigs{
			AllowDuplicateAwards: true,
		},
		PubSub: config.PubSubConfigs{
			Broker:      "memory",
			ChangeTopic: "tavern.changes",
		},
		Redis: config.RedisConfigs{
			Addr: "localhost:6379",
		},
		Kafka: config.KafkaConfigs{
			Addr:    "localhost:9092",
			GroupID: "tavern-realtime",
		},
		Scylla: config.ScyllaConfigs{
			Addr:     "localhost:9042",
			KeySpace: "tavern",
		},
		Client: config.ClientConfigs{
			Endpoint:    "http://localhost:8080",
			TicketStore: "file",
			TicketDir:   ".tavern",
		},
	}
}

// loadConfig reads the defaults, then the toml file at path if any, then the
// environment.
func (s *srv) loadConfig(path string) error {
	cfg := defaultConfigs()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return err
		}
	}

	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("MYSQL_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("MYSQL_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("MYSQL_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("MYSQL_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("MYSQL_DATABASE", cfg.Database.Database)
	cfg.Database.LogLevel = getEnv("DATABASE_LOG_LEVEL", cfg.Database.LogLevel)
	cfg.Database.SqlitePath = getEnv("SQLITE_PATH", cfg.Database.SqlitePath)

	cfg.ApiServer.Host = getEnv("API_HOST", cfg.ApiServer.Host)
	cfg.ApiServer.Port = getEnv("API_PORT", cfg.ApiServer.Port)
	cfg.ApiServer.Cert = getEnv("SERVER_CERT", cfg.ApiServer.Cert)
	cfg.ApiServer.Key = getEnv("SERVER_KEY", cfg.ApiServer.Key)
	cfg.ApiServer.AllowedOrigins = getEnvList("API_ALLOWED_ORIGINS", cfg.ApiServer.AllowedOrigins)
	cfg.ApiServer.MaxLimit = parseInt(getEnv("API_MAX_LIMIT", ""), cfg.ApiServer.MaxLimit)
	cfg.ApiServer.DefaultLimit = parseInt(getEnv("API_DEFAULT_LIMIT", ""), cfg.ApiServer.DefaultLimit)

	cfg.RealtimeServer.Host = getEnv("REALTIME_HOST", cfg.RealtimeServer.Host)
	cfg.RealtimeServer.Port = getEnv("REALTIME_PORT", cfg.RealtimeServer.Port)
	cfg.RealtimeServer.AllowedOrigins = getEnvList("REALTIME_ALLOWED_ORIGINS", cfg.RealtimeServer.AllowedOrigins)
	cfg.RealtimeServer.CompressFrames = parseBool(getEnv("REALTIME_COMPRESS_FRAMES", ""), cfg.RealtimeServer.CompressFrames)

	cfg.Auth.TokenSecret = getEnv("TOKEN_SECRET", cfg.Auth.TokenSecret)
	cfg.Auth.AccessToken.Expiration = parseDuration(getEnv("ACCESS_TOKEN_DURATION", ""), cfg.Auth.AccessToken.Expiration)
	cfg.Auth.RefreshToken.Expiration = parseDuration(getEnv("REFRESH_TOKEN_DURATION", ""), cfg.Auth.RefreshToken.Expiration)
	cfg.Auth.MinPasswordLength = parseInt(getEnv("MIN_PASSWORD_LENGTH", ""), cfg.Auth.MinPasswordLength)

	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)
	cfg.Session.Name = getEnv("SESSION_NAME", cfg.Session.Name)

	cfg.Storage.Region = getEnv("STORAGE_REGION", cfg.Storage.Region)
	cfg.Storage.Endpoint = getEnv("STORAGE_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.PublicEndpoint = getEnv("STORAGE_PUBLIC_ENDPOINT", cfg.Storage.PublicEndpoint)
	cfg.Storage.AccessKey = getEnv("STORAGE_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("STORAGE_SECRET_KEY", cfg.Storage.SecretKey)
	cfg.Storage.SSLDisabled = parseBool(getEnv("STORAGE_SSL_DISABLED", ""), cfg.Storage.SSLDisabled)

	cfg.File.MapBucket = getEnv("MAP_BUCKET", cfg.File.MapBucket)
	cfg.File.MapMaxEdge = parseInt(getEnv("MAP_MAX_EDGE", ""), cfg.File.MapMaxEdge)

	cfg.Room.LogLimit = parseInt(getEnv("ROOM_LOG_LIMIT", ""), cfg.Room.LogLimit)
	cfg.Rules.CatalogPath = getEnv("RULES_CATALOG_PATH", cfg.Rules.CatalogPath)
	cfg.Badge.AllowDuplicateAwards = parseBool(getEnv("BADGE_ALLOW_DUPLICATE_AWARDS", ""), cfg.Badge.AllowDuplicateAwards)

	cfg.PubSub.Broker = getEnv("PUBSUB_BROKER", cfg.PubSub.Broker)
	cfg.PubSub.ChangeTopic = getEnv("PUBSUB_CHANGE_TOPIC", cfg.PubSub.ChangeTopic)
	cfg.Redis.Addr = getEnv("REDIS_ADDRESS", cfg.Redis.Addr)
	cfg.Kafka.Addr = getEnv("KAFKA_ADDRESS", cfg.Kafka.Addr)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	cfg.Scylla.Enabled = parseBool(getEnv("SCYLLA_ENABLED", ""), cfg.Scylla.Enabled)
	cfg.Scylla.Addr = getEnv("SCYLLA_ADDRESS", cfg.Scylla.Addr)
	cfg.Scylla.KeySpace = getEnv("SCYLLA_KEYSPACE", cfg.Scylla.KeySpace)

	cfg.Client.Endpoint = getEnv("CLIENT_ENDPOINT", cfg.Client.Endpoint)
	cfg.Client.RealtimeEndpoint = getEnv("CLIENT_REALTIME_ENDPOINT", cfg.Client.RealtimeEndpoint)
	cfg.Client.TicketStore = getEnv("CLIENT_TICKET_STORE", cfg.Client.TicketStore)
	cfg.Client.TicketDir = getEnv("CLIENT_TICKET_DIR", cfg.Client.TicketDir)

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}

	return duration
}

func parseInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		panic(err)
	}

	return i
}

func parseBool(s string, fallback bool) bool {
	if s == "" {
		return fallback
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		panic(err)
	}

	return b
}
