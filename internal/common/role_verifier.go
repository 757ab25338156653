package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

func (verifier *GlobalRoleVerifier) Verify(ctx context.Context, requiredRoles ...entity.GlobalRole) error {
	userID := xcontext.RequestUserID(ctx)
	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if !slices.Contains(requiredRoles, u.Role) {
		return errors.New("user role does not have permission")
	}

	return nil
}

// CharacterVerifier loads a character and checks that the requester may act
// on it. A requester is the DM of a character when they run a campaign or a
// room the character takes part in. Admins are DM of every character.
type CharacterVerifier struct {
	characterRepo repository.CharacterRepository
	campaignRepo  repository.CampaignRepository
	roomRepo      repository.RoomRepository
	userRepo      repository.UserRepository
}

func NewCharacterVerifier(
	characterRepo repository.CharacterRepository,
	campaignRepo repository.CampaignRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
) *CharacterVerifier {
	return &CharacterVerifier{
		characterRepo: characterRepo,
		campaignRepo:  campaignRepo,
		roomRepo:      roomRepo,
		userRepo:      userRepo,
	}
}

func (v *CharacterVerifier) load(ctx context.Context, characterID string) (*entity.Character, error) {
	character, err := v.characterRepo.GetByID(ctx, characterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found character")
		}

		xcontext.Logger(ctx).Errorf("Cannot get character: %v", err)
		return nil, errorx.Unknown
	}

	return character, nil
}

func (v *CharacterVerifier) VerifyOwner(ctx context.Context, characterID string) (*entity.Character, error) {
	character, err := v.load(ctx, characterID)
	if err != nil {
		return nil, err
	}

	if character.UserID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the owner can modify this character")
	}

	return character, nil
}

func (v *CharacterVerifier) VerifyOwnerOrDM(ctx context.Context, characterID string) (*entity.Character, error) {
	character, err := v.load(ctx, characterID)
	if err != nil {
		return nil, err
	}

	if character.UserID == xcontext.RequestUserID(ctx) {
		return character, nil
	}

	isDM, err := v.IsDM(ctx, character.ID)
	if err != nil {
		return nil, err
	}

	if !isDM {
		return nil, errorx.New(errorx.PermissionDenied, "Only the owner or the DM can modify this character")
	}

	return character, nil
}

func (v *CharacterVerifier) IsDM(ctx context.Context, characterID string) (bool, error) {
	userID := xcontext.RequestUserID(ctx)
	user, err := v.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errorx.New(errorx.Unauthenticated, "User is not valid")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return false, errorx.Unknown
	}

	if user.Role == entity.RoleAdmin {
		return true, nil
	}

	isDM, err := v.campaignRepo.IsDMOfCharacter(ctx, userID, characterID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check campaign dm: %v", err)
		return false, errorx.Unknown
	}

	if isDM {
		return true, nil
	}

	isDM, err = v.roomRepo.IsDMOfCharacter(ctx, userID, characterID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check room dm: %v", err)
		return false, errorx.Unknown
	}

	return isDM, nil
}

// IsCharacterDM is IsDM for a user other than the requester.
func (v *CharacterVerifier) IsCharacterDM(ctx context.Context, userID, characterID string) (bool, error) {
	if userID == "" || characterID == "" {
		return false, nil
	}

	return v.IsDM(xcontext.WithRequestUserID(ctx, userID), characterID)
}

// IsCampaignDM reports whether the user runs the campaign. Admins run every
// campaign.
func (v *CharacterVerifier) IsCampaignDM(ctx context.Context, userID, campaignID string) (bool, error) {
	if userID == "" || campaignID == "" {
		return false, nil
	}

	user, err := v.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if user.Role == entity.RoleAdmin {
		return true, nil
	}

	campaign, err := v.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return campaign.DMID == userID, nil
}
