package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/client"
	"github.com/tavern-lab/backend/pkg/liveview"
	"github.com/tavern-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startWatch(cctx *cli.Context) error {
	s.loadLogger("watch")
	defer s.close()
	cfg := xcontext.Configs(s.ctx)

	api := client.New(cfg.Client.Endpoint, &http.Client{Timeout: 10 * time.Second})
	login, err := api.Login(s.ctx, &model.LoginRequest{
		Email:    cctx.String("email"),
		Password: cctx.String("password"),
	})
	if err != nil {
		return err
	}

	realtimeEndpoint := cfg.Client.RealtimeEndpoint
	if realtimeEndpoint == "" {
		realtimeEndpoint = client.RealtimeEndpoint(cfg.Client.Endpoint)
	}

	feed, err := client.DialFeed(s.ctx, realtimeEndpoint, api.AccessToken())
	if err != nil {
		return err
	}
	defer feed.Close()

	tickets, err := s.newTicketStore(login.User.ID)
	if err != nil {
		return err
	}

	loader := liveview.NewRoomLoader(api, tickets, liveview.NewFeedSubscriber(feed)).
		WithLogLimit(cfg.Room.LogLimit)
	view, err := loader.Load(s.ctx, cctx.String("room"))
	if err != nil {
		return err
	}
	defer view.Close()

	if characterID := cctx.String("character"); characterID != "" && !view.Rejoined && !view.IsDM {
		if _, err := view.Join(s.ctx, characterID); err != nil {
			return err
		}
	}

	printed := map[string]bool{}
	for _, log := range view.Logs.Snapshot() {
		printed[log.ID] = true
	}

	view.Logs.OnChange(func(logs []model.RoomLog) {
		// Logs are newest first.
		for i := len(logs) - 1; i >= 0; i-- {
			if printed[logs[i].ID] {
				continue
			}
			printed[logs[i].ID] = true
			fmt.Printf("[%s] %s: %s\n", logs[i].CreatedAt, logs[i].Author, logs[i].Content)
		}
	})

	view.Participants.OnChange(func(participants []model.RoomParticipant) {
		fmt.Printf("-- %d participants\n", len(participants))
	})

	view.Characters.OnChange(func(characters []model.Character) {
		for _, c := range characters {
			if c.HPHidden {
				fmt.Printf("   %s: hp hidden\n", c.Name)
				continue
			}
			fmt.Printf("   %s: %d/%d hp (+%d), initiative %d\n", c.Name, c.HPCurrent, c.HPMax, c.HPTemp, c.Initiative)
		}
	})

	view.Room.OnChange(func(rooms []model.Room) {
		for _, room := range rooms {
			fmt.Printf("-- map: %s\n", room.BroadcastImageURL)
		}
	})

	fmt.Printf("Watching room %s, press Ctrl+C to stop\n", cctx.String("room"))

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case <-signals:
	case <-feed.Done():
		xcontext.Logger(s.ctx).Warnf("Realtime feed is closed")
	}

	return nil
}

func (s *srv) newTicketStore(userID string) (liveview.TicketStore, error) {
	cfg := xcontext.Configs(s.ctx).Client

	switch cfg.TicketStore {
	case "redis":
		s.loadRedisClient()
		return liveview.NewRedisTicketStore(s.redisClient, userID, 7*24*time.Hour), nil
	case "memory":
		return liveview.NewMemoryTicketStore(), nil
	default:
		return liveview.NewFileTicketStore(cfg.TicketDir, userID)
	}
}
