package main

import (
	"net/http"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/middleware"
	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadLogger("api")
	defer s.close()
	s.loadDatabase()
	s.migrateDB()
	s.loadAuth()
	s.loadSnowflake()
	s.loadStorage()
	s.loadCatalog()
	s.loadScylla()
	s.loadPublisher()
	s.loadRepos()
	s.loadDomains()
	s.loadHub()
	s.loadRouter()

	subscriber := s.newChangeSubscriber()
	subscriber.Subscribe(s.ctx)
	defer subscriber.Stop(s.ctx)

	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(cfg.ApiServer.ServerConfigs),
	}

	xcontext.Logger(s.ctx).Infof("Starting api server on port: %s", cfg.ApiServer.Port)
	if cfg.ApiServer.Cert != "" && cfg.ApiServer.Key != "" {
		return httpSrv.ListenAndServeTLS(cfg.ApiServer.Cert, cfg.ApiServer.Key)
	}

	return httpSrv.ListenAndServe()
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger(cfg.Env))

	// Auth API
	authRouter := s.router.Branch()
	authRouter.After(middleware.HandleSaveSession())
	authRouter.After(middleware.HandleSetAccessToken())
	authRouter.After(middleware.HandleClearSession())
	authRouter.After(middleware.HandleClearAccessToken())
	{
		router.POST(authRouter, "/register", s.authDomain.Register)
		router.POST(authRouter, "/login", s.authDomain.Login)
		router.POST(authRouter, "/refresh", s.authDomain.Refresh)
		router.POST(authRouter, "/logout", s.authDomain.Logout)
	}

	// These following APIs need authentication with an access token or the
	// login session.
	authVerifier := middleware.NewAuthVerifier().WithAccessToken().WithSession()
	privateRouter := s.router.Branch()
	privateRouter.Before(authVerifier.Middleware())
	{
		// User API
		router.GET(privateRouter, "/getMe", s.authDomain.GetMe)

		// Character API
		router.POST(privateRouter, "/createCharacter", s.characterDomain.Create)
		router.GET(privateRouter, "/getMyCharacters", s.characterDomain.GetMine)
		router.GET(privateRouter, "/getCharacter", s.characterDomain.Get)
		router.POST(privateRouter, "/updateCharacter", s.characterDomain.Update)
		router.POST(privateRouter, "/deleteCharacter", s.characterDomain.Delete)
		router.POST(privateRouter, "/adjustHP", s.characterDomain.AdjustHP)
		router.POST(privateRouter, "/setStat", s.characterDomain.SetStat)
		router.POST(privateRouter, "/saveAbility", s.characterDomain.SaveAbility)
		router.POST(privateRouter, "/deleteAbility", s.characterDomain.DeleteAbility)
		router.POST(privateRouter, "/uploadCharacterImage", s.characterDomain.UploadImage)

		// Item API
		router.POST(privateRouter, "/createItem", s.itemDomain.Create)
		router.POST(privateRouter, "/updateItem", s.itemDomain.Update)
		router.POST(privateRouter, "/deleteItem", s.itemDomain.Delete)
		router.GET(privateRouter, "/getInventory", s.itemDomain.GetInventory)
		router.POST(privateRouter, "/transferItem", s.itemDomain.Transfer)

		// Campaign API
		router.POST(privateRouter, "/createCampaign", s.campaignDomain.Create)
		router.GET(privateRouter, "/getMyCampaigns", s.campaignDomain.GetMine)
		router.GET(privateRouter, "/getCampaign", s.campaignDomain.Get)
		router.POST(privateRouter, "/joinCampaign", s.campaignDomain.Join)
		router.POST(privateRouter, "/leaveCampaign", s.campaignDomain.Leave)
		router.POST(privateRouter, "/updateCampaign", s.campaignDomain.Update)
		router.POST(privateRouter, "/addEnemy", s.campaignDomain.AddEnemy)
		router.POST(privateRouter, "/adjustEnemyHP", s.campaignDomain.AdjustEnemyHP)
		router.POST(privateRouter, "/removeEnemy", s.campaignDomain.RemoveEnemy)
		router.POST(privateRouter, "/clearEnemies", s.campaignDomain.ClearEnemies)

		// Room API
		router.POST(privateRouter, "/createRoom", s.roomDomain.Create)
		router.GET(privateRouter, "/getRoom", s.roomDomain.Get)
		router.POST(privateRouter, "/joinRoom", s.roomDomain.Join)
		router.POST(privateRouter, "/leaveRoom", s.roomDomain.Leave)
		router.GET(privateRouter, "/getRoomParticipants", s.roomDomain.GetParticipants)
		router.GET(privateRouter, "/getRoomLogs", s.roomDomain.GetLogs)
		router.POST(privateRouter, "/rollDice", s.roomDomain.RollDice)
		router.POST(privateRouter, "/rollInitiative", s.roomDomain.RollInitiative)
		router.POST(privateRouter, "/resetInitiative", s.roomDomain.ResetInitiative)
		router.POST(privateRouter, "/createRoomEnemy", s.roomDomain.CreateEnemy)
		router.POST(privateRouter, "/uploadMap", s.roomDomain.UploadMap)
		router.POST(privateRouter, "/clearMap", s.roomDomain.ClearMap)

		// Badge API
		router.POST(privateRouter, "/createBadge", s.badgeDomain.Create)
		router.GET(privateRouter, "/getBadges", s.badgeDomain.GetList)
		router.POST(privateRouter, "/deleteBadge", s.badgeDomain.Delete)
		router.POST(privateRouter, "/awardBadge", s.badgeDomain.Award)
		router.GET(privateRouter, "/getCharacterBadges", s.badgeDomain.GetCharacterBadges)

		// Realtime feed
		router.Websocket(privateRouter, "/realtime", s.realtimeDomain.ServeRealtime)
	}

	// Admin API
	adminRouter := s.router.Branch()
	adminRouter.Before(authVerifier.Middleware())
	adminRouter.Before(middleware.NewRequireRole(s.userRepo, entity.RoleAdmin).Middleware())
	{
		router.POST(adminRouter, "/assignRole", s.authDomain.AssignRole)
	}

	// Public API
	router.GET(s.router, "/getCatalog", s.catalogDomain.GetCatalog)
}
