package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
	mathUtil "github.com/pkg/math"
	"github.com/tavern-lab/backend/internal/common"
	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/domain/rules"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/enum"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/storage"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

const (
	defaultSpeed = "30 ft"

	StatFieldHPCurrent  = "hp_current"
	StatFieldHPMax      = "hp_max"
	StatFieldHPTemp     = "hp_temp"
	StatFieldArmorClass = "armor_class"
	StatFieldTempAC     = "temp_ac"
	StatFieldInitiative = "initiative"
)

type CharacterDomain interface {
	Create(context.Context, *model.CreateCharacterRequest) (*model.CreateCharacterResponse, error)
	GetMine(context.Context, *model.GetMyCharactersRequest) (*model.GetMyCharactersResponse, error)
	Get(context.Context, *model.GetCharacterRequest) (*model.GetCharacterResponse, error)
	Update(context.Context, *model.UpdateCharacterRequest) (*model.UpdateCharacterResponse, error)
	Delete(context.Context, *model.DeleteCharacterRequest) (*model.DeleteCharacterResponse, error)
	AdjustHP(context.Context, *model.AdjustHPRequest) (*model.AdjustHPResponse, error)
	SetStat(context.Context, *model.SetStatRequest) (*model.SetStatResponse, error)
	SaveAbility(context.Context, *model.SaveAbilityRequest) (*model.SaveAbilityResponse, error)
	DeleteAbility(context.Context, *model.DeleteAbilityRequest) (*model.DeleteAbilityResponse, error)
	UploadImage(context.Context, *model.UploadCharacterImageRequest) (*model.UploadCharacterImageResponse, error)
}

type characterDomain struct {
	characterRepo           repository.CharacterRepository
	itemRepo                repository.ItemRepository
	characterBadgeRepo      repository.CharacterBadgeRepository
	campaignParticipantRepo repository.CampaignParticipantRepository
	roomParticipantRepo     repository.RoomParticipantRepository
	characterVerifier       *common.CharacterVerifier
	catalog                 *rules.Catalog
	emitter                 changefeed.Emitter
	storage                 storage.Storage
}

func NewCharacterDomain(
	characterRepo repository.CharacterRepository,
	itemRepo repository.ItemRepository,
	characterBadgeRepo repository.CharacterBadgeRepository,
	campaignParticipantRepo repository.CampaignParticipantRepository,
	roomParticipantRepo repository.RoomParticipantRepository,
	characterVerifier *common.CharacterVerifier,
	catalog *rules.Catalog,
	emitter changefeed.Emitter,
	storage storage.Storage,
) *characterDomain {
	return &characterDomain{
		characterRepo:           characterRepo,
		itemRepo:                itemRepo,
		characterBadgeRepo:      characterBadgeRepo,
		campaignParticipantRepo: campaignParticipantRepo,
		roomParticipantRepo:     roomParticipantRepo,
		characterVerifier:       characterVerifier,
		catalog:                 catalog,
		emitter:                 emitter,
		storage:                 storage,
	}
}

func (d *characterDomain) Create(
	ctx context.Context, req *model.CreateCharacterRequest,
) (*model.CreateCharacterResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Character name is required")
	}

	if req.HPMax < 0 {
		return nil, errorx.New(errorx.BadRequest, "Maximum hit points must be positive")
	}

	stats := entity.DefaultAbilityScores()
	if req.Stats != nil {
		stats = entity.AbilityScores{
			Str: req.Stats.Str, Dex: req.Stats.Dex, Con: req.Stats.Con,
			Int: req.Stats.Int, Wis: req.Stats.Wis, Cha: req.Stats.Cha,
		}
	}

	level := req.Level
	if level == 0 {
		level = rules.MinLevel
	}
	level = rules.ClampLevel(level)

	hpMax := req.HPMax
	if hpMax == 0 {
		hpMax = d.defaultHPMax(req.Class, stats)
	}

	armorClass := req.ArmorClass
	if armorClass <= 0 {
		armorClass = rules.ArmorClass(d.catalog, req.Class, stats)
	}

	speed := strings.TrimSpace(req.Speed)
	if speed == "" {
		speed = defaultSpeed
		if race, ok := d.catalog.Race(req.Race); ok && race.Speed != "" {
			speed = race.Speed
		}
	}

	character := &entity.Character{
		Base:         entity.Base{ID: uuid.NewString()},
		UserID:       xcontext.RequestUserID(ctx),
		Name:         name,
		Race:         req.Race,
		Class:        req.Class,
		Background:   req.Background,
		Alignment:    req.Alignment,
		Level:        level,
		HPCurrent:    hpMax,
		HPMax:        hpMax,
		ArmorClass:   armorClass,
		Speed:        speed,
		Stats:        stats,
		Skills:       entity.Array[string](req.Skills),
		SavingThrows: entity.Array[string](req.SavingThrows),
		Abilities:    entity.Array[entity.Ability]{},
		Bio:          req.Bio,
		ImageURL:     req.ImageURL,
	}

	if err := d.characterRepo.Create(ctx, character); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create character: %v", err)
		return nil, errorx.Unknown
	}

	d.emitter.Insert(ctx, model.TableCharacters, model.ConvertCharacter(character))
	return &model.CreateCharacterResponse{ID: character.ID}, nil
}

// defaultHPMax is the hit die of the class plus the constitution modifier,
// never below 1.
func (d *characterDomain) defaultHPMax(class string, stats entity.AbilityScores) int {
	hitDie := 8
	if c, ok := d.catalog.Class(class); ok && c.HitDie > 0 {
		hitDie = c.HitDie
	}

	return mathUtil.MaxInt(hitDie+rules.Modifier(stats.Con), 1)
}

func (d *characterDomain) GetMine(
	ctx context.Context, req *model.GetMyCharactersRequest,
) (*model.GetMyCharactersResponse, error) {
	characters, err := d.characterRepo.GetByUserID(ctx, xcontext.RequestUserID(ctx), false)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get characters: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Character{}
	for i := range characters {
		result = append(result, convertCharacterWithDerived(d.catalog, &characters[i]))
	}

	return &model.GetMyCharactersResponse{Characters: result}, nil
}

func (d *characterDomain) Get(
	ctx context.Context, req *model.GetCharacterRequest,
) (*model.GetCharacterResponse, error) {
	character, err := d.characterRepo.GetByID(ctx, req.ID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found character")
		}

		xcontext.Logger(ctx).Errorf("Cannot get character: %v", err)
		return nil, errorx.Unknown
	}

	viewerIsDM := character.UserID == xcontext.RequestUserID(ctx)
	if character.IsEnemy && !viewerIsDM {
		viewerIsDM, err = d.characterVerifier.IsDM(ctx, character.ID)
		if err != nil {
			return nil, err
		}
	}

	result := convertCharacterForViewer(character, viewerIsDM)
	if !result.HPHidden {
		result.Derived = rules.Derive(d.catalog, character)
	}

	resp := model.GetCharacterResponse(result)
	return &resp, nil
}

func (d *characterDomain) Update(
	ctx context.Context, req *model.UpdateCharacterRequest,
) (*model.UpdateCharacterResponse, error) {
	character, err := d.characterVerifier.VerifyOwner(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorx.New(errorx.BadRequest, "Character name is required")
		}
		fields["name"] = name
	}

	setString := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}

	setString("race", req.Race)
	setString("class", req.Class)
	setString("background", req.Background)
	setString("alignment", req.Alignment)
	setString("speed", req.Speed)
	setString("bio", req.Bio)
	setString("image_url", req.ImageURL)

	if req.Level != nil {
		fields["level"] = rules.ClampLevel(*req.Level)
	}

	if req.Experience != nil {
		if *req.Experience < 0 {
			return nil, errorx.New(errorx.BadRequest, "Experience must not be negative")
		}
		fields["experience"] = *req.Experience
	}

	if req.Stats != nil {
		fields["stats"] = entity.AbilityScores{
			Str: req.Stats.Str, Dex: req.Stats.Dex, Con: req.Stats.Con,
			Int: req.Stats.Int, Wis: req.Stats.Wis, Cha: req.Stats.Cha,
		}
	}

	if req.Skills != nil {
		fields["skills"] = entity.Array[string](req.Skills)
	}

	if req.SavingThrows != nil {
		fields["saving_throws"] = entity.Array[string](req.SavingThrows)
	}

	if len(fields) == 0 {
		return &model.UpdateCharacterResponse{}, nil
	}

	if err := d.update(ctx, character, fields); err != nil {
		return nil, err
	}

	return &model.UpdateCharacterResponse{}, nil
}

func (d *characterDomain) Delete(
	ctx context.Context, req *model.DeleteCharacterRequest,
) (*model.DeleteCharacterResponse, error) {
	character, err := d.characterVerifier.VerifyOwner(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.itemRepo.DeleteByCharacterID(ctx, character.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete items of character: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.characterBadgeRepo.DeleteByCharacterID(ctx, character.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete badges of character: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.campaignParticipantRepo.DeleteByCharacterID(ctx, character.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete campaign participants: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.roomParticipantRepo.DeleteByCharacterID(ctx, character.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete room participants: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.characterRepo.Delete(ctx, character.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete character: %v", err)
		return nil, errorx.Unknown
	}

	if err := commit(ctx); err != nil {
		return nil, err
	}

	d.emitter.Delete(ctx, model.TableCharacters, model.ConvertCharacter(character))
	return &model.DeleteCharacterResponse{}, nil
}

func (d *characterDomain) AdjustHP(
	ctx context.Context, req *model.AdjustHPRequest,
) (*model.AdjustHPResponse, error) {
	character, err := d.characterVerifier.VerifyOwnerOrDM(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	delta := req.Delta
	hpTemp := character.HPTemp
	if delta < 0 && req.ConsumeTemp && hpTemp > 0 {
		absorbed := mathUtil.MinInt(hpTemp, -delta)
		hpTemp -= absorbed
		delta += absorbed
	}

	hpCurrent := rules.ClampHP(character.HPCurrent, character.HPMax, delta)
	err = d.update(ctx, character, map[string]any{
		"hp_current": hpCurrent,
		"hp_temp":    hpTemp,
	})
	if err != nil {
		return nil, err
	}

	return &model.AdjustHPResponse{HPCurrent: hpCurrent, HPTemp: hpTemp}, nil
}

func (d *characterDomain) SetStat(
	ctx context.Context, req *model.SetStatRequest,
) (*model.SetStatResponse, error) {
	character, err := d.characterVerifier.VerifyOwnerOrDM(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	next := *character
	switch req.Field {
	case StatFieldHPCurrent:
		next.HPCurrent = rules.ClampHP(req.Value, next.HPMax, 0)
	case StatFieldHPMax:
		if req.Value < 1 {
			return nil, errorx.New(errorx.BadRequest, "Maximum hit points must be at least 1")
		}
		next.HPMax = req.Value
		next.HPCurrent = rules.ClampHP(next.HPCurrent, next.HPMax, 0)
	case StatFieldHPTemp:
		next.HPTemp = mathUtil.MaxInt(req.Value, 0)
	case StatFieldArmorClass:
		next.ArmorClass = req.Value
	case StatFieldTempAC:
		next.TempAC = req.Value
	case StatFieldInitiative:
		next.Initiative = req.Value
	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid stat field %s", req.Field)
	}

	err = d.update(ctx, character, map[string]any{
		"hp_current":  next.HPCurrent,
		"hp_max":      next.HPMax,
		"hp_temp":     next.HPTemp,
		"armor_class": next.ArmorClass,
		"temp_ac":     next.TempAC,
		"initiative":  next.Initiative,
	})
	if err != nil {
		return nil, err
	}

	return &model.SetStatResponse{
		HPCurrent:  next.HPCurrent,
		HPMax:      next.HPMax,
		HPTemp:     next.HPTemp,
		ArmorClass: next.ArmorClass,
		TempAC:     next.TempAC,
		Initiative: next.Initiative,
	}, nil
}

func (d *characterDomain) SaveAbility(
	ctx context.Context, req *model.SaveAbilityRequest,
) (*model.SaveAbilityResponse, error) {
	character, err := d.characterVerifier.VerifyOwner(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errorx.New(errorx.BadRequest, "Ability title is required")
	}

	abilityType := entity.AbilityAction
	if req.Type != "" {
		var err error
		if abilityType, err = enum.ToEnum[entity.AbilityType](req.Type); err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid ability type %s", req.Type)
		}
	}

	ability := entity.Ability{Title: title, Description: req.Description, Type: abilityType}
	abilities := append(entity.Array[entity.Ability]{}, character.Abilities...)
	switch {
	case req.Index == -1:
		abilities = append(abilities, ability)
	case req.Index >= 0 && req.Index < len(abilities):
		abilities[req.Index] = ability
	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid ability index %d", req.Index)
	}

	if err := d.update(ctx, character, map[string]any{"abilities": abilities}); err != nil {
		return nil, err
	}

	return &model.SaveAbilityResponse{Abilities: convertAbilities(abilities)}, nil
}

func (d *characterDomain) DeleteAbility(
	ctx context.Context, req *model.DeleteAbilityRequest,
) (*model.DeleteAbilityResponse, error) {
	character, err := d.characterVerifier.VerifyOwner(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	if req.Index < 0 || req.Index >= len(character.Abilities) {
		return nil, errorx.New(errorx.BadRequest, "Invalid ability index %d", req.Index)
	}

	abilities := append(entity.Array[entity.Ability]{}, character.Abilities[:req.Index]...)
	abilities = append(abilities, character.Abilities[req.Index+1:]...)

	if err := d.update(ctx, character, map[string]any{"abilities": abilities}); err != nil {
		return nil, err
	}

	return &model.DeleteAbilityResponse{Abilities: convertAbilities(abilities)}, nil
}

func (d *characterDomain) UploadImage(
	ctx context.Context, req *model.UploadCharacterImageRequest,
) (*model.UploadCharacterImageResponse, error) {
	character, err := d.characterVerifier.VerifyOwner(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	images, err := common.ProcessPortrait(ctx, d.storage, "image")
	if err != nil {
		return nil, err
	}

	if len(images) == 0 {
		xcontext.Logger(ctx).Errorf("No portrait was uploaded")
		return nil, errorx.Unknown
	}

	url := images[0].URL
	if err := d.update(ctx, character, map[string]any{"image_url": url}); err != nil {
		return nil, err
	}

	return &model.UploadCharacterImageResponse{URL: url}, nil
}

// update writes fields and publishes the old and new rows.
func (d *characterDomain) update(ctx context.Context, old *entity.Character, fields map[string]any) error {
	if err := d.characterRepo.Update(ctx, old.ID, fields); err != nil {
		if isRecordNotFound(err) {
			return errorx.New(errorx.NotFound, "Not found character")
		}

		xcontext.Logger(ctx).Errorf("Cannot update character: %v", err)
		return errorx.Unknown
	}

	updated, err := d.characterRepo.GetByID(ctx, old.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get updated character: %v", err)
		return errorx.Unknown
	}

	d.emitter.Update(ctx, model.TableCharacters, model.ConvertCharacter(old), model.ConvertCharacter(updated))
	return nil
}

func convertAbilities(abilities []entity.Ability) []model.Ability {
	result := make([]model.Ability, 0, len(abilities))
	for _, a := range abilities {
		result = append(result, model.Ability{Title: a.Title, Description: a.Description, Type: string(a.Type)})
	}

	return result
}
