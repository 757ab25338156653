package main

import "github.com/urfave/cli/v2"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "path of a toml config file",
	EnvVars: []string{"CONFIG_FILE"},
}

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Tavern"
	s.app.Usage = "Tabletop session backend"
	s.app.Flags = []cli.Flag{configFlag}
	s.app.Before = func(cctx *cli.Context) error {
		return s.loadConfig(cctx.String(configFlag.Name))
	}
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves every api and the realtime feed in the same process.`,
		},
		{
			Action:      s.startRealtime,
			Name:        "realtime",
			Usage:       "Start service realtime",
			Category:    "Websocket",
			Description: `Serves the realtime feed from the change events of the broker.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Value: "auto",
					Usage: "migration version to apply",
				},
			},
			Description: `Creates every table, then applies the given version once.`,
		},
		{
			Action:   s.startWatch,
			Name:     "watch",
			Usage:    "Watch a room",
			Category: "Client",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"TAVERN_PASSWORD"}},
				&cli.StringFlag{Name: "room", Required: true, Usage: "room code"},
				&cli.StringFlag{Name: "character", Usage: "character id used to join the room"},
			},
			Description: `Logs in, loads a room and prints its live changes.`,
		},
	}
}
