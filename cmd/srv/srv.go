package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/sessions"
	"github.com/scylladb/gocqlx/v2"
	"github.com/tavern-lab/backend/internal/common"
	"github.com/tavern-lab/backend/internal/domain"
	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/domain/rules"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/migration"
	"github.com/tavern-lab/backend/pkg/authenticator"
	"github.com/tavern-lab/backend/pkg/cqlutil"
	"github.com/tavern-lab/backend/pkg/kafka"
	"github.com/tavern-lab/backend/pkg/logger"
	"github.com/tavern-lab/backend/pkg/pubsub"
	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/storage"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"github.com/tavern-lab/backend/pkg/xredis"

	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	ctx context.Context
	app *cli.App

	userRepo                repository.UserRepository
	refreshTokenRepo        repository.RefreshTokenRepository
	characterRepo           repository.CharacterRepository
	itemRepo                repository.ItemRepository
	campaignRepo            repository.CampaignRepository
	campaignParticipantRepo repository.CampaignParticipantRepository
	encounterEnemyRepo      repository.EncounterEnemyRepository
	roomRepo                repository.RoomRepository
	roomParticipantRepo     repository.RoomParticipantRepository
	roomLogRepo             repository.RoomLogRepository
	badgeRepo               repository.BadgeRepository
	characterBadgeRepo      repository.CharacterBadgeRepository

	characterVerifier *common.CharacterVerifier

	authDomain      domain.AuthDomain
	characterDomain domain.CharacterDomain
	itemDomain      domain.ItemDomain
	campaignDomain  domain.CampaignDomain
	roomDomain      domain.RoomDomain
	badgeDomain     domain.BadgeDomain
	catalogDomain   domain.CatalogDomain
	realtimeDomain  domain.RealtimeDomain

	catalog     *rules.Catalog
	storage     storage.Storage
	redisClient xredis.Client
	cqlSession  *gocqlx.Session

	memoryBroker *pubsub.MemoryBroker
	publisher    pubsub.Publisher
	emitter      changefeed.Emitter
	hub          *changefeed.Hub

	router *router.Router
}

func (s *srv) loadLogger(service string) {
	cfg := xcontext.Configs(s.ctx)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewNamedLogger(service, logger.ParseLevel(cfg.LogLevel), os.Stderr))
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	default:
		panic(fmt.Sprintf("invalid database driver %s", cfg.Driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(parseDBLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	return db
}

func parseDBLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "warn", "warning":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Error
	}
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadAuth() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Auth.TokenSecret == "" {
		panic("TOKEN_SECRET must be set")
	}

	s.ctx = xcontext.WithTokenEngine(s.ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	s.ctx = xcontext.WithSessionStore(s.ctx, sessions.NewCookieStore([]byte(cfg.Session.Secret)))
}

func (s *srv) loadSnowflake() {
	nodeID := parseInt(os.Getenv("SNOWFLAKE_NODE"), 1)
	node, err := snowflake.NewNode(int64(nodeID))
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
}

func (s *srv) loadStorage() {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Storage.Endpoint == "" {
		xcontext.Logger(s.ctx).Warnf("Storage endpoint is not set, uploads will fail")
	}

	var err error
	s.storage, err = storage.NewS3Storage(cfg.Storage)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadCatalog() {
	path := xcontext.Configs(s.ctx).Rules.CatalogPath
	if path == "" {
		s.catalog = rules.DefaultCatalog()
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	s.catalog, err = rules.ParseCatalog(string(b))
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx, xcontext.Configs(s.ctx).Redis)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadScylla() {
	cfg := xcontext.Configs(s.ctx).Scylla
	if !cfg.Enabled {
		return
	}

	cluster := cqlutil.CreateCluster(cfg.KeySpace, strings.Split(cfg.Addr, ",")...)
	session, err := gocqlx.WrapSession(cluster.CreateSession())
	if err != nil {
		panic(err)
	}

	if err := migration.MigrateCQL(session); err != nil {
		panic(err)
	}

	s.cqlSession = &session
	xcontext.Logger(s.ctx).Infof("Connected scylla db at %s", cfg.Addr)
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx)

	switch cfg.PubSub.Broker {
	case "memory":
		s.memoryBroker = pubsub.NewMemoryBroker()
		s.publisher = s.memoryBroker
	case "redis":
		if s.redisClient == nil {
			s.loadRedisClient()
		}
		s.publisher = xredis.NewPublisher(s.redisClient)
	case "kafka":
		publisher, err := kafka.NewPublisher(fmt.Sprintf("tavern-%d", time.Now().UnixNano()),
			strings.Split(cfg.Kafka.Addr, ","))
		if err != nil {
			panic(err)
		}
		s.publisher = publisher
	default:
		panic(fmt.Sprintf("invalid broker %s", cfg.PubSub.Broker))
	}

	s.emitter = changefeed.NewEmitter(s.publisher, cfg.PubSub.ChangeTopic)
}

// newChangeSubscriber feeds the hub with the change events of the broker.
func (s *srv) newChangeSubscriber() pubsub.Subscriber {
	cfg := xcontext.Configs(s.ctx)
	topics := []string{cfg.PubSub.ChangeTopic}

	switch cfg.PubSub.Broker {
	case "memory":
		if s.memoryBroker == nil {
			panic("memory broker only works inside the api process")
		}
		return s.memoryBroker.NewSubscriber(topics, s.hub.SubscribeHandler)
	case "redis":
		if s.redisClient == nil {
			s.loadRedisClient()
		}
		return xredis.NewSubscriber(s.redisClient, topics, s.hub.SubscribeHandler)
	case "kafka":
		subscriber, err := kafka.NewSubscriber(cfg.Kafka.GroupID, strings.Split(cfg.Kafka.Addr, ","),
			topics, s.hub.SubscribeHandler)
		if err != nil {
			panic(err)
		}
		return subscriber
	default:
		panic(fmt.Sprintf("invalid broker %s", cfg.PubSub.Broker))
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.refreshTokenRepo = repository.NewRefreshTokenRepository()
	s.characterRepo = repository.NewCharacterRepository()
	s.itemRepo = repository.NewItemRepository()
	s.campaignRepo = repository.NewCampaignRepository()
	s.campaignParticipantRepo = repository.NewCampaignParticipantRepository()
	s.encounterEnemyRepo = repository.NewEncounterEnemyRepository()
	s.roomRepo = repository.NewRoomRepository()
	s.roomParticipantRepo = repository.NewRoomParticipantRepository()
	s.badgeRepo = repository.NewBadgeRepository()
	s.characterBadgeRepo = repository.NewCharacterBadgeRepository()

	if s.cqlSession != nil {
		s.roomLogRepo = repository.NewRoomLogCQLRepository(*s.cqlSession)
	} else {
		s.roomLogRepo = repository.NewRoomLogRepository()
	}

	s.characterVerifier = common.NewCharacterVerifier(s.characterRepo, s.campaignRepo, s.roomRepo, s.userRepo)
}

func (s *srv) loadDomains() {
	characterVerifier := s.characterVerifier
	hasher := authenticator.NewBcryptHasher(0)

	s.authDomain = domain.NewAuthDomain(s.userRepo, s.refreshTokenRepo, hasher)
	s.characterDomain = domain.NewCharacterDomain(s.characterRepo, s.itemRepo, s.characterBadgeRepo,
		s.campaignParticipantRepo, s.roomParticipantRepo, characterVerifier, s.catalog, s.emitter, s.storage)
	s.itemDomain = domain.NewItemDomain(s.itemRepo, s.characterRepo, s.roomParticipantRepo,
		s.roomLogRepo, characterVerifier, s.emitter)
	s.campaignDomain = domain.NewCampaignDomain(s.campaignRepo, s.campaignParticipantRepo,
		s.encounterEnemyRepo, s.userRepo, characterVerifier, s.emitter)
	s.roomDomain = domain.NewRoomDomain(s.roomRepo, s.roomParticipantRepo, s.roomLogRepo,
		s.characterRepo, s.userRepo, characterVerifier, s.catalog, rules.NewRandomDice(), s.emitter, s.storage)
	s.badgeDomain = domain.NewBadgeDomain(s.badgeRepo, s.characterBadgeRepo, s.characterRepo,
		s.userRepo, characterVerifier, s.emitter)
	s.catalogDomain = domain.NewCatalogDomain(s.catalog)
}

func (s *srv) loadHub() {
	s.hub = changefeed.NewHub(changefeed.NewHPPolicy(s.characterVerifier))
	s.realtimeDomain = domain.NewRealtimeDomain(s.hub)
}

// close releases the connections opened by the loaders.
func (s *srv) close() {
	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close publisher: %v", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close redis client: %v", err)
		}
	}

	if s.cqlSession != nil {
		s.cqlSession.Close()
	}
}
