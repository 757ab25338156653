package main

import (
	"github.com/tavern-lab/backend/migration"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.loadLogger("migrate")
	s.loadDatabase()
	s.migrateDB()
	s.loadScylla()

	version := cctx.String("version")
	if err := migration.Run(s.ctx, version); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrate %s successfully", version)
	return nil
}
