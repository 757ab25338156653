package main

import (
	"errors"
	"net/http"

	"github.com/tavern-lab/backend/internal/middleware"
	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startRealtime(*cli.Context) error {
	s.loadLogger("realtime")
	defer s.close()
	s.loadDatabase()
	s.loadAuth()
	s.loadRepos()
	s.loadHub()

	cfg := xcontext.Configs(s.ctx)
	if cfg.PubSub.Broker == "memory" {
		return errors.New("the realtime service needs the redis or kafka broker")
	}

	subscriber := s.newChangeSubscriber()
	subscriber.Subscribe(s.ctx)
	defer subscriber.Stop(s.ctx)

	defaultRouter := router.New(s.ctx)
	defaultRouter.AddCloser(middleware.Logger(cfg.Env))
	defaultRouter.Before(middleware.NewAuthVerifier().WithAccessToken().Middleware())
	router.Websocket(defaultRouter, "/realtime", s.realtimeDomain.ServeRealtime)

	httpSrv := &http.Server{
		Addr:    cfg.RealtimeServer.Address(),
		Handler: defaultRouter.Handler(cfg.RealtimeServer.ServerConfigs),
	}

	xcontext.Logger(s.ctx).Infof("Starting realtime server on port: %s", cfg.RealtimeServer.Port)
	return httpSrv.ListenAndServe()
}
