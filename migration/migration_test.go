package migration

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/testutil"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

func Test_migrateLegacyStats(t *testing.T) {
	ctx := testutil.MockContext()
	db := xcontext.DB(ctx)

	for _, col := range []string{"strength", "fuerza", "destreza", "carisma"} {
		require.NoError(t, db.Exec("ALTER TABLE characters ADD COLUMN "+col+" integer").Error)
	}

	legacy, err := testutil.SampleCharacter(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, db.Exec(
		"UPDATE characters SET stats=NULL, strength=18, fuerza=16, destreza=14, carisma=NULL WHERE id=?",
		legacy.ID,
	).Error)

	// Rows written after the canonical stats column existed keep their scores.
	current, err := testutil.SampleCharacter(ctx, &entity.Character{
		Stats: entity.AbilityScores{Str: 8, Dex: 17, Con: 11, Int: 12, Wis: 13, Cha: 15},
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec("UPDATE characters SET destreza=3 WHERE id=?", current.ID).Error)

	require.NoError(t, Run(ctx, "legacy_stats"))

	characterRepo := repository.NewCharacterRepository()
	got, err := characterRepo.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	require.Equal(t, entity.AbilityScores{Str: 18, Dex: 14, Con: 10, Int: 10, Wis: 10, Cha: 10}, got.Stats)

	got, err = characterRepo.GetByID(ctx, current.ID)
	require.NoError(t, err)
	require.Equal(t, current.Stats, got.Stats)

	for _, col := range []string{"strength", "fuerza", "destreza", "carisma"} {
		require.False(t, db.Migrator().HasColumn(&entity.Character{}, col), col)
	}

	// A second run is a no-op.
	require.NoError(t, Run(ctx, "legacy_stats"))
	var count int64
	require.NoError(t, db.Model(&Migration{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func Test_dropCharacterColumn_Unquoted(t *testing.T) {
	ctx := testutil.MockContext()
	db := xcontext.DB(ctx)
	require.NoError(t, db.Exec("ALTER TABLE characters ADD COLUMN sabiduria integer").Error)
	require.NoError(t, db.Exec("ALTER TABLE characters ADD COLUMN `inteligencia` integer").Error)

	for _, col := range []string{"sabiduria", "inteligencia"} {
		require.NoError(t, dropCharacterColumn(db, col))
		require.False(t, db.Migrator().HasColumn(&entity.Character{}, col), col)
	}

	// Other columns survive the drop.
	require.True(t, db.Migrator().HasColumn(&entity.Character{}, "stats"))
}

func Test_migrateLegacyStats_NoColumn(t *testing.T) {
	ctx := testutil.MockContext()
	require.NoError(t, migrateLegacyStats(ctx))
}

func Test_Run_UnknownVersion(t *testing.T) {
	ctx := testutil.MockContext()
	require.Error(t, Run(ctx, "0042"))
	require.Equal(t, []string{"auto", "legacy_stats"}, Versions())
}
