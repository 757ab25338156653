package entity

import (
	"context"

	"github.com/tavern-lab/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&RefreshToken{},
		&Character{},
		&Item{},
		&Campaign{},
		&CampaignParticipant{},
		&EncounterEnemy{},
		&Room{},
		&RoomParticipant{},
		&RoomLog{},
		&Badge{},
		&CharacterBadge{},
	)
}
