package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/sessions"
	"github.com/tavern-lab/backend/config"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/authenticator"
	"github.com/tavern-lab/backend/pkg/logger"
	"github.com/tavern-lab/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 30,
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
			RefreshToken: config.TokenConfigs{
				Name:       "refresh_token",
				Expiration: time.Minute,
			},
			MinPasswordLength: 6,
		},
		Session: config.SessionConfigs{
			Secret: "session-secret",
			Name:   "tavern_session",
		},
		File: config.FileConfigs{
			MaxMemory:  2 * 1024 * 1024,
			MapBucket:  "maps",
			MapMaxEdge: 64,
		},
		Room: config.RoomConfigs{
			LogLimit:    30,
			CodeRetries: 5,
		},
		Badge: config.BadgeConfigs{
			AllowDuplicateAwards: true,
		},
		PubSub: config.PubSubConfigs{
			Broker:      "memory",
			ChangeTopic: "changes",
		},
	}
}

// MockContext returns a context carrying configs, a silent logger, the
// token engine, a cookie session store and a fresh in-memory database with
// every table migrated.
func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every connection of an in-memory sqlite database is a new database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := MockConfigs()

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithSessionStore(ctx, sessions.NewCookieStore([]byte(cfg.Session.Secret)))
	ctx = xcontext.WithDB(ctx, db)

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	ctx = xcontext.WithSnowFlake(ctx, node)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

// WithUser switches the requester of an existing mock context.
func WithUser(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
