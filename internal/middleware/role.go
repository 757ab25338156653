package middleware

import (
	"context"

	"github.com/tavern-lab/backend/internal/common"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/router"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

// RequireRole rejects requesters whose global role is not listed. It must run
// after the auth verifier.
type RequireRole struct {
	verifier *common.GlobalRoleVerifier
	roles    []entity.GlobalRole
}

func NewRequireRole(userRepo repository.UserRepository, roles ...entity.GlobalRole) *RequireRole {
	return &RequireRole{verifier: common.NewGlobalRoleVerifier(userRepo), roles: roles}
}

func (m *RequireRole) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if err := m.verifier.Verify(ctx, m.roles...); err != nil {
			xcontext.Logger(ctx).Debugf("User %s is rejected: %v", xcontext.RequestUserID(ctx), err)
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return nil, nil
	}
}
