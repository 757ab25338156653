package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tavern-lab/backend/internal/common"
	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/domain/rules"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

const defaultCodeRetries = 5

type CampaignDomain interface {
	Create(context.Context, *model.CreateCampaignRequest) (*model.CreateCampaignResponse, error)
	GetMine(context.Context, *model.GetMyCampaignsRequest) (*model.GetMyCampaignsResponse, error)
	Get(context.Context, *model.GetCampaignRequest) (*model.GetCampaignResponse, error)
	Join(context.Context, *model.JoinCampaignRequest) (*model.JoinCampaignResponse, error)
	Leave(context.Context, *model.LeaveCampaignRequest) (*model.LeaveCampaignResponse, error)
	Update(context.Context, *model.UpdateCampaignRequest) (*model.UpdateCampaignResponse, error)
	AddEnemy(context.Context, *model.AddEnemyRequest) (*model.AddEnemyResponse, error)
	AdjustEnemyHP(context.Context, *model.AdjustEnemyHPRequest) (*model.AdjustEnemyHPResponse, error)
	RemoveEnemy(context.Context, *model.RemoveEnemyRequest) (*model.RemoveEnemyResponse, error)
	ClearEnemies(context.Context, *model.ClearEnemiesRequest) (*model.ClearEnemiesResponse, error)
}

type campaignDomain struct {
	campaignRepo            repository.CampaignRepository
	campaignParticipantRepo repository.CampaignParticipantRepository
	encounterEnemyRepo      repository.EncounterEnemyRepository
	userRepo                repository.UserRepository
	characterVerifier       *common.CharacterVerifier
	globalRoleVerifier      *common.GlobalRoleVerifier
	emitter                 changefeed.Emitter
}

func NewCampaignDomain(
	campaignRepo repository.CampaignRepository,
	campaignParticipantRepo repository.CampaignParticipantRepository,
	encounterEnemyRepo repository.EncounterEnemyRepository,
	userRepo repository.UserRepository,
	characterVerifier *common.CharacterVerifier,
	emitter changefeed.Emitter,
) *campaignDomain {
	return &campaignDomain{
		campaignRepo:            campaignRepo,
		campaignParticipantRepo: campaignParticipantRepo,
		encounterEnemyRepo:      encounterEnemyRepo,
		userRepo:                userRepo,
		characterVerifier:       characterVerifier,
		globalRoleVerifier:      common.NewGlobalRoleVerifier(userRepo),
		emitter:                 emitter,
	}
}

func (d *campaignDomain) Create(
	ctx context.Context, req *model.CreateCampaignRequest,
) (*model.CreateCampaignResponse, error) {
	if err := d.globalRoleVerifier.Verify(ctx, entity.GameMasterRoles...); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return nil, errorx.New(errorx.PermissionDenied, "Only a DM can create a campaign")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Campaign name is required")
	}

	userID := xcontext.RequestUserID(ctx)
	campaign := &entity.Campaign{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        name,
		Description: req.Description,
		DMID:        userID,
		IsActive:    true,
	}

	code, err := uniqueCode(ctx, common.GenerateJoinCode, func(code string) (bool, error) {
		_, err := d.campaignRepo.GetByJoinCode(ctx, code)
		if err != nil {
			if isRecordNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	campaign.JoinCode = code

	dmParticipant := &entity.CampaignParticipant{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		UserID:     userID,
		Role:       entity.ParticipantDM,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.campaignRepo.Create(ctx, campaign); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create campaign: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.campaignParticipantRepo.Create(ctx, dmParticipant); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create dm participant: %v", err)
		return nil, errorx.Unknown
	}

	if err := commit(ctx); err != nil {
		return nil, err
	}

	d.emitter.Insert(ctx, model.TableCampaigns, model.ConvertCampaign(campaign))
	d.emitter.Insert(ctx, model.TableCampaignParticipants, model.ConvertCampaignParticipant(dmParticipant))

	return &model.CreateCampaignResponse{ID: campaign.ID, JoinCode: campaign.JoinCode}, nil
}

func (d *campaignDomain) GetMine(
	ctx context.Context, req *model.GetMyCampaignsRequest,
) (*model.GetMyCampaignsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	running, err := d.campaignRepo.GetByDMID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get running campaigns: %v", err)
		return nil, errorx.Unknown
	}

	joined, err := d.campaignRepo.GetJoinedByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get joined campaigns: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetMyCampaignsResponse{Running: []model.Campaign{}, Joined: []model.Campaign{}}
	for i := range running {
		resp.Running = append(resp.Running, model.ConvertCampaign(&running[i]))
	}

	for i := range joined {
		resp.Joined = append(resp.Joined, model.ConvertCampaign(&joined[i]))
	}

	return resp, nil
}

func (d *campaignDomain) Get(ctx context.Context, req *model.GetCampaignRequest) (*model.GetCampaignResponse, error) {
	campaign, err := getCampaign(ctx, d.campaignRepo, req.ID)
	if err != nil {
		return nil, err
	}

	isDM, err := d.isDM(ctx, campaign)
	if err != nil {
		return nil, err
	}

	participants, err := d.campaignParticipantRepo.GetByCampaignID(ctx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get campaign participants: %v", err)
		return nil, errorx.Unknown
	}

	userID := xcontext.RequestUserID(ctx)
	isParticipant := isDM
	for _, p := range participants {
		if p.UserID == userID {
			isParticipant = true
			break
		}
	}

	if !isParticipant {
		return nil, errorx.New(errorx.PermissionDenied, "You are not a participant of this campaign")
	}

	enemies, err := d.encounterEnemyRepo.GetByCampaignID(ctx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get encounter enemies: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetCampaignResponse{
		Campaign:     model.ConvertCampaign(campaign),
		IsDM:         isDM,
		Participants: []model.CampaignParticipant{},
		Enemies:      []model.EncounterEnemy{},
	}

	for i := range participants {
		p := model.ConvertCampaignParticipant(&participants[i])
		if p.Character != nil {
			c := convertCharacterForViewer(&participants[i].Character, isDM)
			p.Character = &c
		}
		resp.Participants = append(resp.Participants, p)
	}

	for i := range enemies {
		resp.Enemies = append(resp.Enemies, convertEncounterEnemy(&enemies[i], isDM))
	}

	return resp, nil
}

func (d *campaignDomain) Join(ctx context.Context, req *model.JoinCampaignRequest) (*model.JoinCampaignResponse, error) {
	code := common.NormalizeCode(req.JoinCode)
	if code == "" {
		return nil, errorx.New(errorx.BadRequest, "Join code is required")
	}

	role := entity.ParticipantRole(strings.ToLower(req.Role))
	if role == "" {
		role = entity.ParticipantPlayer
	}

	if role != entity.ParticipantPlayer && role != entity.ParticipantSpectator {
		return nil, errorx.New(errorx.BadRequest, "Invalid role %s", req.Role)
	}

	campaign, err := d.campaignRepo.GetByJoinCode(ctx, code)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found campaign with code %s", code)
		}

		xcontext.Logger(ctx).Errorf("Cannot get campaign by code: %v", err)
		return nil, errorx.Unknown
	}

	character, err := d.characterVerifier.VerifyOwner(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	participant := &entity.CampaignParticipant{
		ID:          uuid.NewString(),
		CampaignID:  campaign.ID,
		UserID:      character.UserID,
		CharacterID: &character.ID,
		Role:        role,
	}

	inserted, err := d.campaignParticipantRepo.Create(ctx, participant)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot join campaign: %v", err)
		return nil, errorx.Unknown
	}

	if inserted {
		participant.Character = *character
		d.emitter.Insert(ctx, model.TableCampaignParticipants, model.ConvertCampaignParticipant(participant))
	}

	return &model.JoinCampaignResponse{CampaignID: campaign.ID, AlreadyJoined: !inserted}, nil
}

func (d *campaignDomain) Leave(
	ctx context.Context, req *model.LeaveCampaignRequest,
) (*model.LeaveCampaignResponse, error) {
	campaign, err := getCampaign(ctx, d.campaignRepo, req.CampaignID)
	if err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	if campaign.DMID == userID {
		return nil, errorx.New(errorx.BadRequest, "The DM cannot leave the campaign")
	}

	removed, err := d.campaignParticipantRepo.DeleteByCampaignAndUser(ctx, campaign.ID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot leave campaign: %v", err)
		return nil, errorx.Unknown
	}

	for i := range removed {
		d.emitter.Delete(ctx, model.TableCampaignParticipants, model.ConvertCampaignParticipant(&removed[i]))
	}

	return &model.LeaveCampaignResponse{}, nil
}

func (d *campaignDomain) Update(
	ctx context.Context, req *model.UpdateCampaignRequest,
) (*model.UpdateCampaignResponse, error) {
	campaign, err := d.verifyDM(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.New(errorx.BadRequest, "Campaign name is required")
		}
		fields["name"] = name
	}

	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	if len(fields) == 0 {
		return &model.UpdateCampaignResponse{}, nil
	}

	if err := d.campaignRepo.Update(ctx, campaign.ID, fields); err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found campaign")
		}

		xcontext.Logger(ctx).Errorf("Cannot update campaign: %v", err)
		return nil, errorx.Unknown
	}

	if updated, err := d.campaignRepo.GetByID(ctx, campaign.ID); err == nil {
		d.emitter.Update(ctx, model.TableCampaigns, model.ConvertCampaign(campaign), model.ConvertCampaign(updated))
	}

	return &model.UpdateCampaignResponse{}, nil
}

func (d *campaignDomain) AddEnemy(ctx context.Context, req *model.AddEnemyRequest) (*model.AddEnemyResponse, error) {
	campaign, err := d.verifyDM(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Enemy name is required")
	}

	if req.HPMax < 1 {
		return nil, errorx.New(errorx.BadRequest, "Maximum hit points must be at least 1")
	}

	enemy := &entity.EncounterEnemy{
		Base:       entity.Base{ID: uuid.NewString()},
		CampaignID: campaign.ID,
		Name:       name,
		HPCurrent:  req.HPMax,
		HPMax:      req.HPMax,
		ArmorClass: req.ArmorClass,
		Initiative: req.Initiative,
	}

	if err := d.encounterEnemyRepo.Create(ctx, enemy); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create enemy: %v", err)
		return nil, errorx.Unknown
	}

	d.emitter.Insert(ctx, model.TableEncounterEnemies, convertEncounterEnemy(enemy, true))
	return &model.AddEnemyResponse{ID: enemy.ID}, nil
}

func (d *campaignDomain) AdjustEnemyHP(
	ctx context.Context, req *model.AdjustEnemyHPRequest,
) (*model.AdjustEnemyHPResponse, error) {
	enemy, err := d.verifyEnemy(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	old := *enemy
	enemy.HPCurrent = rules.ClampHP(enemy.HPCurrent, enemy.HPMax, req.Delta)
	if err := d.encounterEnemyRepo.UpdateHP(ctx, enemy.ID, enemy.HPCurrent); err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found enemy")
		}

		xcontext.Logger(ctx).Errorf("Cannot update enemy hp: %v", err)
		return nil, errorx.Unknown
	}

	d.emitter.Update(ctx, model.TableEncounterEnemies,
		convertEncounterEnemy(&old, true), convertEncounterEnemy(enemy, true))

	return &model.AdjustEnemyHPResponse{
		HPCurrent: enemy.HPCurrent,
		HPPercent: rules.HPPercent(enemy.HPCurrent, enemy.HPMax),
	}, nil
}

func (d *campaignDomain) RemoveEnemy(
	ctx context.Context, req *model.RemoveEnemyRequest,
) (*model.RemoveEnemyResponse, error) {
	enemy, err := d.verifyEnemy(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := d.encounterEnemyRepo.Delete(ctx, enemy.ID); err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found enemy")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete enemy: %v", err)
		return nil, errorx.Unknown
	}

	d.emitter.Delete(ctx, model.TableEncounterEnemies, convertEncounterEnemy(enemy, true))
	return &model.RemoveEnemyResponse{}, nil
}

func (d *campaignDomain) ClearEnemies(
	ctx context.Context, req *model.ClearEnemiesRequest,
) (*model.ClearEnemiesResponse, error) {
	campaign, err := d.verifyDM(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}

	removed, err := d.encounterEnemyRepo.DeleteByCampaignID(ctx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot clear enemies: %v", err)
		return nil, errorx.Unknown
	}

	for i := range removed {
		d.emitter.Delete(ctx, model.TableEncounterEnemies, convertEncounterEnemy(&removed[i], true))
	}

	return &model.ClearEnemiesResponse{}, nil
}

func (d *campaignDomain) isDM(ctx context.Context, campaign *entity.Campaign) (bool, error) {
	if campaign.DMID == xcontext.RequestUserID(ctx) {
		return true, nil
	}

	return isAdmin(ctx, d.userRepo)
}

func (d *campaignDomain) verifyDM(ctx context.Context, campaignID string) (*entity.Campaign, error) {
	campaign, err := getCampaign(ctx, d.campaignRepo, campaignID)
	if err != nil {
		return nil, err
	}

	isDM, err := d.isDM(ctx, campaign)
	if err != nil {
		return nil, err
	}

	if !isDM {
		return nil, errorx.New(errorx.PermissionDenied, "Only the DM can manage this campaign")
	}

	return campaign, nil
}

func (d *campaignDomain) verifyEnemy(ctx context.Context, id string) (*entity.EncounterEnemy, error) {
	enemy, err := d.encounterEnemyRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found enemy")
		}

		xcontext.Logger(ctx).Errorf("Cannot get enemy: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.verifyDM(ctx, enemy.CampaignID); err != nil {
		return nil, err
	}

	return enemy, nil
}

// uniqueCode draws codes from generate until exists reports a free one.
func uniqueCode(
	ctx context.Context, generate func() string, exists func(string) (bool, error),
) (string, error) {
	retries := xcontext.Configs(ctx).Room.CodeRetries
	if retries <= 0 {
		retries = defaultCodeRetries
	}

	for i := 0; i < retries; i++ {
		code := generate()
		taken, err := exists(code)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check code: %v", err)
			return "", errorx.Unknown
		}

		if !taken {
			return code, nil
		}
	}

	xcontext.Logger(ctx).Warnf("Cannot find a free code after %d retries", retries)
	return "", errorx.New(errorx.Unavailable, "Cannot generate a unique code, please try again")
}
