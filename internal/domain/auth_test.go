package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/testutil"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

func Test_authDomain_Register(t *testing.T) {
	ctx, _, d := setup()

	tests := []struct {
		name    string
		req     *model.RegisterRequest
		wantErr errorx.Code
	}{
		{
			name: "happy case",
			req:  &model.RegisterRequest{Email: " Gandalf@Shire.test ", Password: "mellon", Name: "Gandalf"},
		},
		{
			name:    "duplicated email",
			req:     &model.RegisterRequest{Email: "gandalf@shire.test", Password: "mellon"},
			wantErr: errorx.AlreadyExists,
		},
		{
			name:    "invalid email",
			req:     &model.RegisterRequest{Email: "not-an-email", Password: "mellon"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "short password",
			req:     &model.RegisterRequest{Email: "frodo@shire.test", Password: "ring"},
			wantErr: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := d.auth.Register(ctx, tt.req)
			if tt.wantErr != 0 {
				require.True(t, errorx.Is(err, tt.wantErr), "got %v", err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, "gandalf@shire.test", resp.User.Email)
			require.Equal(t, string(entity.RolePlayer), resp.User.Role)
		})
	}
}

func Test_authDomain_LoginAndRefresh(t *testing.T) {
	ctx, _, d := setup()

	_, err := d.auth.Register(ctx, &model.RegisterRequest{Email: "sam@shire.test", Password: "potatoes"})
	require.NoError(t, err)

	_, err = d.auth.Login(ctx, &model.LoginRequest{Email: "sam@shire.test", Password: "wrong-password"})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	_, err = d.auth.Login(ctx, &model.LoginRequest{Email: "nobody@shire.test", Password: "potatoes"})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	login, err := d.auth.Login(ctx, &model.LoginRequest{Email: "SAM@shire.test", Password: "potatoes"})
	require.NoError(t, err)
	require.NotEmpty(t, login.AccessToken)

	var token model.AccessToken
	require.NoError(t, xcontext.TokenEngine(ctx).Verify(login.AccessToken, &token))
	require.Equal(t, login.User.ID, token.ID)

	refreshed, err := d.auth.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// Replaying the first token is detected and revokes the whole family.
	_, err = d.auth.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.True(t, errorx.Is(err, errorx.StolenDetected))

	_, err = d.auth.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: refreshed.RefreshToken})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}

func Test_authDomain_Logout(t *testing.T) {
	ctx, _, d := setup()

	_, err := d.auth.Register(ctx, &model.RegisterRequest{Email: "pippin@shire.test", Password: "second-breakfast"})
	require.NoError(t, err)

	login, err := d.auth.Login(ctx, &model.LoginRequest{Email: "pippin@shire.test", Password: "second-breakfast"})
	require.NoError(t, err)

	_, err = d.auth.Logout(ctx, &model.LogoutRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	_, err = d.auth.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}

func Test_authDomain_GetMeAndAssignRole(t *testing.T) {
	ctx, f, d := setup()

	me, err := d.auth.GetMe(testutil.WithUser(ctx, f.Player1.ID), &model.GetMeRequest{})
	require.NoError(t, err)
	require.Equal(t, f.Player1.ID, me.ID)

	_, err = d.auth.AssignRole(testutil.WithUser(ctx, f.DM.ID), &model.AssignRoleRequest{
		UserID: f.Player1.ID, Role: string(entity.RoleDM),
	})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	adminCtx := testutil.WithUser(ctx, f.Admin.ID)
	_, err = d.auth.AssignRole(adminCtx, &model.AssignRoleRequest{UserID: f.Player1.ID, Role: "wizard"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.auth.AssignRole(adminCtx, &model.AssignRoleRequest{UserID: f.Player1.ID, Role: string(entity.RoleDM)})
	require.NoError(t, err)

	me, err = d.auth.GetMe(testutil.WithUser(ctx, f.Player1.ID), &model.GetMeRequest{})
	require.NoError(t, err)
	require.Equal(t, string(entity.RoleDM), me.Role)
}

func Test_authDomain_LoginPrunesExpiredFamilies(t *testing.T) {
	ctx, _, d := setup()

	registered, err := d.auth.Register(ctx, &model.RegisterRequest{Email: "merry@shire.test", Password: "buckland"})
	require.NoError(t, err)

	repo := repository.NewRefreshTokenRepository()
	require.NoError(t, repo.Create(ctx, &entity.RefreshToken{
		UserID:     registered.User.ID,
		Family:     "stale-family",
		Expiration: time.Now().Add(-time.Hour),
	}))

	_, err = d.auth.Login(ctx, &model.LoginRequest{Email: "merry@shire.test", Password: "buckland"})
	require.NoError(t, err)

	_, err = repo.Get(ctx, "stale-family")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_refreshTokenRepository_RotateOnce(t *testing.T) {
	ctx, f, _ := setup()

	repo := repository.NewRefreshTokenRepository()
	require.NoError(t, repo.Create(ctx, &entity.RefreshToken{
		UserID:     f.Player1.ID,
		Family:     "family",
		Expiration: time.Now().Add(time.Hour),
	}))

	require.NoError(t, repo.Rotate(ctx, "family", 0))
	require.ErrorIs(t, repo.Rotate(ctx, "family", 0), gorm.ErrRecordNotFound)

	token, err := repo.Get(ctx, "family")
	require.NoError(t, err)
	require.Equal(t, uint64(1), token.Counter)
}
