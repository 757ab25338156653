package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/testutil"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

func Test_badgeDomain_Create(t *testing.T) {
	ctx, f, d := setup()

	_, err := d.badge.Create(testutil.WithUser(ctx, f.Player1.ID), &model.CreateBadgeRequest{Name: "Dragonslayer"})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = d.badge.Create(testutil.WithUser(ctx, f.DM.ID), &model.CreateBadgeRequest{Name: "  "})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	resp, err := d.badge.Create(testutil.WithUser(ctx, f.DM.ID), &model.CreateBadgeRequest{
		Name: "Dragonslayer", Description: "Felled a dragon", IconKey: "dragon",
	})
	require.NoError(t, err)

	_, err = d.badge.Create(testutil.WithUser(ctx, f.Admin.ID), &model.CreateBadgeRequest{Name: "Founder"})
	require.NoError(t, err)

	mine, err := d.badge.GetList(testutil.WithUser(ctx, f.DM.ID), &model.GetListBadgeRequest{Mine: true})
	require.NoError(t, err)
	require.Len(t, mine.Badges, 1)
	require.Equal(t, resp.ID, mine.Badges[0].ID)

	all, err := d.badge.GetList(testutil.WithUser(ctx, f.Player1.ID), &model.GetListBadgeRequest{})
	require.NoError(t, err)
	require.Len(t, all.Badges, 2)
}

func Test_badgeDomain_Award(t *testing.T) {
	tests := []struct {
		name           string
		allowDuplicate bool
		wantErr        errorx.Code
		wantAwards     int
	}{
		{name: "duplicates stack", allowDuplicate: true, wantAwards: 2},
		{name: "duplicates rejected", allowDuplicate: false, wantErr: errorx.AlreadyExists, wantAwards: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, f, d := setup()

			cfg := xcontext.Configs(ctx)
			cfg.Badge.AllowDuplicateAwards = tt.allowDuplicate
			ctx = xcontext.WithConfigs(ctx, cfg)
			dmCtx := testutil.WithUser(ctx, f.DM.ID)

			badge, err := d.badge.Create(dmCtx, &model.CreateBadgeRequest{Name: "Lucky"})
			require.NoError(t, err)

			req := &model.AwardBadgeRequest{BadgeID: badge.ID, CharacterID: f.Character1.ID}
			_, err = d.badge.Award(dmCtx, req)
			require.NoError(t, err)

			_, err = d.badge.Award(dmCtx, req)
			if tt.wantErr != 0 {
				require.True(t, errorx.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
			}

			awards, err := d.badge.GetCharacterBadges(ctx, &model.GetCharacterBadgesRequest{CharacterID: f.Character1.ID})
			require.NoError(t, err)
			require.Len(t, awards.Badges, tt.wantAwards)
			require.Equal(t, "Lucky", awards.Badges[0].Badge.Name)
			require.Equal(t, f.DM.ID, awards.Badges[0].AwardedBy)
			require.Len(t, d.emitter.of(model.TableCharacterBadges, model.ChangeInsert), tt.wantAwards)
		})
	}
}

func Test_badgeDomain_AwardInvalid(t *testing.T) {
	ctx, f, d := setup()
	dmCtx := testutil.WithUser(ctx, f.DM.ID)

	badge, err := d.badge.Create(dmCtx, &model.CreateBadgeRequest{Name: "Lucky"})
	require.NoError(t, err)

	_, err = d.badge.Award(testutil.WithUser(ctx, f.Player1.ID), &model.AwardBadgeRequest{
		BadgeID: badge.ID, CharacterID: f.Character1.ID,
	})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = d.badge.Award(dmCtx, &model.AwardBadgeRequest{BadgeID: "missing", CharacterID: f.Character1.ID})
	require.True(t, errorx.Is(err, errorx.NotFound))

	_, err = d.badge.Award(dmCtx, &model.AwardBadgeRequest{BadgeID: badge.ID, CharacterID: "missing"})
	require.True(t, errorx.Is(err, errorx.NotFound))

	// Character2 plays in none of the games of the DM.
	_, err = d.badge.Award(dmCtx, &model.AwardBadgeRequest{BadgeID: badge.ID, CharacterID: f.Character2.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied), "got %v", err)

	_, err = d.badge.Award(testutil.WithUser(ctx, f.Admin.ID), &model.AwardBadgeRequest{
		BadgeID: badge.ID, CharacterID: f.Character2.ID,
	})
	require.NoError(t, err)
}

func Test_badgeDomain_Delete(t *testing.T) {
	ctx, f, d := setup()
	dmCtx := testutil.WithUser(ctx, f.DM.ID)

	first, err := d.badge.Create(dmCtx, &model.CreateBadgeRequest{Name: "Lucky"})
	require.NoError(t, err)
	second, err := d.badge.Create(dmCtx, &model.CreateBadgeRequest{Name: "Brave"})
	require.NoError(t, err)

	_, err = d.badge.Award(dmCtx, &model.AwardBadgeRequest{BadgeID: first.ID, CharacterID: f.Character1.ID})
	require.NoError(t, err)

	_, err = d.badge.Delete(testutil.WithUser(ctx, f.Player1.ID), &model.DeleteBadgeRequest{ID: first.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = d.badge.Delete(dmCtx, &model.DeleteBadgeRequest{ID: first.ID})
	require.NoError(t, err)

	// Awards of a deleted badge disappear with it.
	awards, err := d.badge.GetCharacterBadges(ctx, &model.GetCharacterBadgesRequest{CharacterID: f.Character1.ID})
	require.NoError(t, err)
	require.Empty(t, awards.Badges)

	_, err = d.badge.Delete(testutil.WithUser(ctx, f.Admin.ID), &model.DeleteBadgeRequest{ID: second.ID})
	require.NoError(t, err)

	_, err = d.badge.Delete(dmCtx, &model.DeleteBadgeRequest{ID: second.ID})
	require.True(t, errorx.Is(err, errorx.NotFound))
	require.Len(t, d.emitter.of(model.TableBadges, model.ChangeDelete), 2)
}
