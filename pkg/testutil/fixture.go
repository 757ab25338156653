package testutil

import (
	"context"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

// Fixture is a small table: a dm running a room and a campaign, two players
// each owning one character, and the first player sitting in the room.
type Fixture struct {
	DM      entity.User
	Player1 entity.User
	Player2 entity.User
	Admin   entity.User

	Character1 entity.Character
	Character2 entity.Character

	Room     entity.Room
	Campaign entity.Campaign
}

func CreateFixtureDb(ctx context.Context) *Fixture {
	f := &Fixture{}
	var err error

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	f.DM, err = SampleUser(ctx, &entity.User{Name: "dm", Role: entity.RoleDM})
	must(err)
	f.Player1, err = SampleUser(ctx, &entity.User{Name: "player1"})
	must(err)
	f.Player2, err = SampleUser(ctx, &entity.User{Name: "player2"})
	must(err)
	f.Admin, err = SampleUser(ctx, &entity.User{Name: "admin", Role: entity.RoleAdmin})
	must(err)

	f.Character1, err = SampleCharacter(ctx, &entity.Character{UserID: f.Player1.ID, Name: "Aria"})
	must(err)
	f.Character2, err = SampleCharacter(ctx, &entity.Character{UserID: f.Player2.ID, Name: "Borin", Class: "barbarian"})
	must(err)

	f.Room, err = SampleRoom(ctx, &entity.Room{DMID: f.DM.ID, Code: "AB-12"})
	must(err)
	_, err = SampleRoomParticipant(ctx, &entity.RoomParticipant{
		RoomID:      f.Room.ID,
		CharacterID: f.Character1.ID,
		UserID:      f.Player1.ID,
	})
	must(err)

	f.Campaign, err = SampleCampaign(ctx, &entity.Campaign{DMID: f.DM.ID, JoinCode: "WXYZ"})
	must(err)
	dmParticipant := entity.CampaignParticipant{
		ID:         "dm-" + f.Campaign.ID,
		CampaignID: f.Campaign.ID,
		UserID:     f.DM.ID,
		Role:       entity.ParticipantDM,
	}
	must(xcontext.DB(ctx).Create(&dmParticipant).Error)

	return f
}
