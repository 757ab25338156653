package migration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type legacyStat struct {
	key string

	// columns is ordered by precedence, canonical name first.
	columns []string
}

var legacyStats = []legacyStat{
	{key: entity.StatStrength, columns: []string{"strength", "fuerza"}},
	{key: entity.StatDexterity, columns: []string{"dexterity", "destreza"}},
	{key: entity.StatConstitution, columns: []string{"constitution", "constitucion"}},
	{key: entity.StatIntelligence, columns: []string{"intelligence", "inteligencia"}},
	{key: entity.StatWisdom, columns: []string{"wisdom", "sabiduria"}},
	{key: entity.StatCharisma, columns: []string{"charisma", "carisma"}},
}

// migrateLegacyStats folds the per-ability columns of old character rows into
// the stats column and drops them. A score already present in stats is kept.
func migrateLegacyStats(ctx context.Context) error {
	db := xcontext.DB(ctx)
	migrator := db.Migrator()

	var columns []string
	for _, stat := range legacyStats {
		for _, col := range stat.columns {
			if migrator.HasColumn(&entity.Character{}, col) {
				columns = append(columns, col)
			}
		}
	}

	if len(columns) == 0 {
		xcontext.Logger(ctx).Infof("No legacy stat column found")
		return nil
	}

	var rows []map[string]any
	err := db.Table("characters").
		Select(append([]string{"id", "stats"}, columns...)).
		Find(&rows).Error
	if err != nil {
		return err
	}

	for _, row := range rows {
		stats, err := foldLegacyStats(row)
		if err != nil {
			return fmt.Errorf("character %v: %w", row["id"], err)
		}

		err = db.Table("characters").Where("id=?", row["id"]).Update("stats", stats).Error
		if err != nil {
			return err
		}
	}

	for _, col := range columns {
		if err := dropCharacterColumn(db, col); err != nil {
			return err
		}

		if migrator.HasColumn(&entity.Character{}, col) {
			return fmt.Errorf("column %s is still present after the drop", col)
		}
	}

	xcontext.Logger(ctx).Infof("Folded %d legacy stat columns of %d characters", len(columns), len(rows))
	return nil
}

// dropCharacterColumn drops one legacy column. The sqlite migrator of gorm
// rebuilds the table from its DDL and silently keeps columns that were
// declared unquoted, so sqlite gets a plain DROP COLUMN instead.
func dropCharacterColumn(db *gorm.DB, col string) error {
	if db.Dialector.Name() == "sqlite" {
		return db.Exec(fmt.Sprintf("ALTER TABLE characters DROP COLUMN %q", col)).Error
	}

	return db.Migrator().DropColumn(&entity.Character{}, col)
}

func foldLegacyStats(row map[string]any) (entity.AbilityScores, error) {
	current := map[string]int{}
	switch t := row["stats"].(type) {
	case string:
		if t != "" {
			if err := json.Unmarshal([]byte(t), &current); err != nil {
				return entity.AbilityScores{}, err
			}
		}
	case []byte:
		if len(t) > 0 {
			if err := json.Unmarshal(t, &current); err != nil {
				return entity.AbilityScores{}, err
			}
		}
	}

	stats := entity.DefaultAbilityScores()
	for _, stat := range legacyStats {
		if score, ok := current[stat.key]; ok {
			stats.Set(stat.key, score)
			continue
		}

		for _, col := range stat.columns {
			if score, ok := toInt(row[col]); ok {
				stats.Set(stat.key, score)
				break
			}
		}
	}

	return stats, nil
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case []byte:
		var i int
		if _, err := fmt.Sscan(string(t), &i); err == nil {
			return i, true
		}
	case string:
		var i int
		if _, err := fmt.Sscan(t, &i); err == nil {
			return i, true
		}
	}

	return 0, false
}
