package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tavern-lab/backend/internal/common"
	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

type BadgeDomain interface {
	Create(context.Context, *model.CreateBadgeRequest) (*model.CreateBadgeResponse, error)
	GetList(context.Context, *model.GetListBadgeRequest) (*model.GetListBadgeResponse, error)
	Delete(context.Context, *model.DeleteBadgeRequest) (*model.DeleteBadgeResponse, error)
	Award(context.Context, *model.AwardBadgeRequest) (*model.AwardBadgeResponse, error)
	GetCharacterBadges(context.Context, *model.GetCharacterBadgesRequest) (*model.GetCharacterBadgesResponse, error)
}

type badgeDomain struct {
	badgeRepo          repository.BadgeRepository
	characterBadgeRepo repository.CharacterBadgeRepository
	characterRepo      repository.CharacterRepository
	userRepo           repository.UserRepository
	globalRoleVerifier *common.GlobalRoleVerifier
	characterVerifier  *common.CharacterVerifier
	emitter            changefeed.Emitter
}

func NewBadgeDomain(
	badgeRepo repository.BadgeRepository,
	characterBadgeRepo repository.CharacterBadgeRepository,
	characterRepo repository.CharacterRepository,
	userRepo repository.UserRepository,
	characterVerifier *common.CharacterVerifier,
	emitter changefeed.Emitter,
) *badgeDomain {
	return &badgeDomain{
		badgeRepo:          badgeRepo,
		characterBadgeRepo: characterBadgeRepo,
		characterRepo:      characterRepo,
		userRepo:           userRepo,
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRepo),
		characterVerifier:  characterVerifier,
		emitter:            emitter,
	}
}

func (d *badgeDomain) Create(ctx context.Context, req *model.CreateBadgeRequest) (*model.CreateBadgeResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GameMasterRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only a DM can create badges")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Badge name is required")
	}

	badge := &entity.Badge{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        name,
		Description: req.Description,
		IconKey:     req.IconKey,
		CreatedBy:   xcontext.RequestUserID(ctx),
	}

	if err := d.badgeRepo.Create(ctx, badge); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create badge: %v", err)
		return nil, errorx.Unknown
	}

	d.emitter.Insert(ctx, model.TableBadges, model.ConvertBadge(badge))
	return &model.CreateBadgeResponse{ID: badge.ID}, nil
}

func (d *badgeDomain) GetList(ctx context.Context, req *model.GetListBadgeRequest) (*model.GetListBadgeResponse, error) {
	createdBy := ""
	if req.Mine {
		createdBy = xcontext.RequestUserID(ctx)
	}

	badges, err := d.badgeRepo.GetList(ctx, createdBy)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badges: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Badge{}
	for i := range badges {
		result = append(result, model.ConvertBadge(&badges[i]))
	}

	return &model.GetListBadgeResponse{Badges: result}, nil
}

func (d *badgeDomain) Delete(ctx context.Context, req *model.DeleteBadgeRequest) (*model.DeleteBadgeResponse, error) {
	badge, err := d.badgeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found badge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get badge: %v", err)
		return nil, errorx.Unknown
	}

	if badge.CreatedBy != xcontext.RequestUserID(ctx) {
		admin, err := isAdmin(ctx, d.userRepo)
		if err != nil {
			return nil, err
		}

		if !admin {
			return nil, errorx.New(errorx.PermissionDenied, "Only the creator can delete this badge")
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.characterBadgeRepo.DeleteByBadgeID(ctx, badge.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete awards of badge: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.badgeRepo.Delete(ctx, badge.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete badge: %v", err)
		return nil, errorx.Unknown
	}

	if err := commit(ctx); err != nil {
		return nil, err
	}

	d.emitter.Delete(ctx, model.TableBadges, model.ConvertBadge(badge))
	return &model.DeleteBadgeResponse{}, nil
}

func (d *badgeDomain) Award(ctx context.Context, req *model.AwardBadgeRequest) (*model.AwardBadgeResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GameMasterRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only a DM can award badges")
	}

	badge, err := d.badgeRepo.GetByID(ctx, req.BadgeID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found badge")
		}

		xcontext.Logger(ctx).Errorf("Cannot get badge: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.characterRepo.GetByID(ctx, req.CharacterID); err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found character")
		}

		xcontext.Logger(ctx).Errorf("Cannot get character: %v", err)
		return nil, errorx.Unknown
	}

	isDM, err := d.characterVerifier.IsDM(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	if !isDM {
		return nil, errorx.New(errorx.PermissionDenied, "Only the DM of the character can award badges")
	}

	if !xcontext.Configs(ctx).Badge.AllowDuplicateAwards {
		exists, err := d.characterBadgeRepo.Exists(ctx, badge.ID, req.CharacterID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check badge award: %v", err)
			return nil, errorx.Unknown
		}

		if exists {
			return nil, errorx.New(errorx.AlreadyExists, "The character already has this badge")
		}
	}

	award := &entity.CharacterBadge{
		Base:        entity.Base{ID: uuid.NewString()},
		CharacterID: req.CharacterID,
		BadgeID:     badge.ID,
		AwardedBy:   xcontext.RequestUserID(ctx),
		AwardedAt:   time.Now(),
	}

	if err := d.characterBadgeRepo.Create(ctx, award); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot award badge: %v", err)
		return nil, errorx.Unknown
	}

	award.Badge = *badge
	d.emitter.Insert(ctx, model.TableCharacterBadges, model.ConvertCharacterBadge(award))
	return &model.AwardBadgeResponse{ID: award.ID}, nil
}

func (d *badgeDomain) GetCharacterBadges(
	ctx context.Context, req *model.GetCharacterBadgesRequest,
) (*model.GetCharacterBadgesResponse, error) {
	awards, err := d.characterBadgeRepo.GetByCharacterID(ctx, req.CharacterID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get character badges: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.CharacterBadge{}
	for i := range awards {
		result = append(result, model.ConvertCharacterBadge(&awards[i]))
	}

	return &model.GetCharacterBadgesResponse{Badges: result}, nil
}
