package middleware

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/testutil"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

func Test_RequireRole(t *testing.T) {
	ctx := testutil.MockContext()
	f := testutil.CreateFixtureDb(ctx)
	middleware := NewRequireRole(repository.NewUserRepository(), entity.RoleDM, entity.RoleAdmin).Middleware()

	tests := []struct {
		name   string
		userID string
		wantOK bool
	}{
		{name: "dm", userID: f.DM.ID, wantOK: true},
		{name: "admin", userID: f.Admin.ID, wantOK: true},
		{name: "player", userID: f.Player1.ID},
		{name: "unknown user", userID: "ghost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := middleware(xcontext.WithRequestUserID(ctx, tt.userID))
			if tt.wantOK {
				require.NoError(t, err)
				return
			}

			require.True(t, errorx.Is(err, errorx.PermissionDenied), "got %v", err)
		})
	}
}
