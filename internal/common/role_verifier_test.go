package common

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/testutil"
)

func Test_CharacterVerifier_DMOfOtherUser(t *testing.T) {
	ctx := testutil.MockContext()

	dm, err := testutil.SampleUser(ctx, &entity.User{Role: entity.RoleDM})
	require.NoError(t, err)
	player, err := testutil.SampleUser(ctx, nil)
	require.NoError(t, err)
	admin, err := testutil.SampleUser(ctx, &entity.User{Role: entity.RoleAdmin})
	require.NoError(t, err)

	room, err := testutil.SampleRoom(ctx, &entity.Room{DMID: dm.ID})
	require.NoError(t, err)
	goblin, err := testutil.SampleCharacter(ctx, &entity.Character{UserID: dm.ID, IsEnemy: true})
	require.NoError(t, err)
	_, err = testutil.SampleRoomParticipant(ctx, &entity.RoomParticipant{
		RoomID: room.ID, CharacterID: goblin.ID, UserID: dm.ID,
	})
	require.NoError(t, err)

	campaign, err := testutil.SampleCampaign(ctx, &entity.Campaign{DMID: dm.ID})
	require.NoError(t, err)

	verifier := NewCharacterVerifier(
		repository.NewCharacterRepository(),
		repository.NewCampaignRepository(),
		repository.NewRoomRepository(),
		repository.NewUserRepository(),
	)

	tests := []struct {
		name         string
		userID       string
		wantCharDM   bool
		wantCampaign bool
	}{
		{name: "dm", userID: dm.ID, wantCharDM: true, wantCampaign: true},
		{name: "admin", userID: admin.ID, wantCharDM: true, wantCampaign: true},
		{name: "player", userID: player.ID},
		{name: "anonymous", userID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifier.IsCharacterDM(ctx, tt.userID, goblin.ID)
			require.NoError(t, err)
			require.Equal(t, tt.wantCharDM, got)

			got, err = verifier.IsCampaignDM(ctx, tt.userID, campaign.ID)
			require.NoError(t, err)
			require.Equal(t, tt.wantCampaign, got)
		})
	}

	got, err := verifier.IsCampaignDM(ctx, dm.ID, "missing")
	require.NoError(t, err)
	require.False(t, got)
}
