package testutil

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

func create[T any](ctx context.Context, sample *T, init *T) (T, error) {
	if init != nil {
		overwriteFields(sample, *init)
	}

	if err := xcontext.DB(ctx).Create(sample).Error; err != nil {
		return *sample, err
	}
	return *sample, nil
}

// SampleUser creates a player with a random email. Non-zero fields of init
// overwrite the sample.
func SampleUser(ctx context.Context, init *entity.User) (entity.User, error) {
	id := uuid.NewString()
	return create(ctx, &entity.User{
		Base:  entity.Base{ID: id},
		Email: id + "@tavern.test",
		Name:  "user-" + id[:8],
		Role:  entity.RolePlayer,
	}, init)
}

func SampleCharacter(ctx context.Context, init *entity.Character) (entity.Character, error) {
	return create(ctx, &entity.Character{
		Base:       entity.Base{ID: uuid.NewString()},
		UserID:     uuid.NewString(),
		Name:       "Aria",
		Race:       "elf",
		Class:      "rogue",
		Level:      1,
		HPCurrent:  10,
		HPMax:      10,
		ArmorClass: 12,
		Speed:      "30 ft",
		Stats:      entity.AbilityScores{Str: 10, Dex: 14, Con: 12, Int: 10, Wis: 10, Cha: 8},
	}, init)
}

func SampleItem(ctx context.Context, init *entity.Item) (entity.Item, error) {
	return create(ctx, &entity.Item{
		Base:        entity.Base{ID: uuid.NewString()},
		CharacterID: uuid.NewString(),
		Name:        "Rope",
		Type:        entity.ItemGear,
		Quantity:    1,
		Weight:      10,
	}, init)
}

func SampleCampaign(ctx context.Context, init *entity.Campaign) (entity.Campaign, error) {
	return create(ctx, &entity.Campaign{
		Base:     entity.Base{ID: uuid.NewString()},
		Name:     "The Lost Mine",
		DMID:     uuid.NewString(),
		JoinCode: strings.ToUpper(uuid.NewString()[:4]),
		IsActive: true,
	}, init)
}

func SampleRoom(ctx context.Context, init *entity.Room) (entity.Room, error) {
	return create(ctx, &entity.Room{
		Base: entity.Base{ID: uuid.NewString()},
		Name: "Tavern",
		Code: strings.ToUpper(uuid.NewString()[:2]) + "-42",
		DMID: uuid.NewString(),
	}, init)
}

func SampleRoomParticipant(ctx context.Context, init *entity.RoomParticipant) (entity.RoomParticipant, error) {
	return create(ctx, &entity.RoomParticipant{JoinedAt: time.Now()}, init)
}

func overwriteFields[T any](origin *T, overwrite T) {
	originValue := reflect.ValueOf(origin).Elem()
	overwriteValue := reflect.ValueOf(overwrite)

	for i := 0; i < overwriteValue.NumField(); i++ {
		overwriteField := overwriteValue.Field(i)
		if !overwriteField.IsZero() {
			originValue.Field(i).Set(overwriteField)
		}
	}
}
