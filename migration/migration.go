package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type Migrator func(context.Context) error

// Migrators lists the versions accepted by `srv migrate --version`.
var Migrators = map[string]Migrator{
	"auto":         migrateSchema,
	"legacy_stats": migrateLegacyStats,
}

// migrateSchema brings every table to the shape of the entities.
func migrateSchema(ctx context.Context) error {
	if err := entity.MigrateTable(ctx); err != nil {
		return err
	}

	return xcontext.DB(ctx).AutoMigrate(&Migration{})
}

// Migration records a version which has been applied once.
type Migration struct {
	Version   string `gorm:"primarykey"`
	AppliedAt time.Time
}

func Versions() []string {
	versions := make([]string, 0, len(Migrators))
	for v := range Migrators {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// Run applies a version at most once. The auto version is not recorded and
// may run on every start.
func Run(ctx context.Context, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	if version == "auto" {
		return migrator(ctx)
	}

	db := xcontext.DB(ctx)
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return err
	}

	err := db.First(&Migration{}, "version=?", version).Error
	if err == nil {
		xcontext.Logger(ctx).Infof("Migration %s has already been applied", version)
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := migrator(ctx); err != nil {
		return err
	}

	return db.Create(&Migration{Version: version, AppliedAt: time.Now()}).Error
}
